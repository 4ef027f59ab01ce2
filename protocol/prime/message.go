// File: protocol/prime/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request/response records and their JSON codec.

package prime

import (
	"bytes"
	"encoding/json"
	"errors"
)

// MethodIsPrime is the only method the service answers.
const MethodIsPrime = "isPrime"

// Request asks whether Number is prime.
type Request struct {
	Method string `json:"method"`
	Number uint64 `json:"number"`
}

// Response carries the verdict for a Request.
type Response struct {
	Method string `json:"method"`
	Prime  bool   `json:"prime"`
}

// DecodeRequest parses one JSON document into a Request.
//
// Field names match exactly and may appear once. Missing or null fields,
// duplicate keys, type mismatches, fractional, negative or out-of-range
// numbers, and trailing data yield *DecodeError. Unknown fields are ignored.
// A well-formed request with a method other than MethodIsPrime yields the
// decoded Request and *UnknownMethodError.
func DecodeRequest(data []byte) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Request{}, &DecodeError{Reason: describeJSONError(err), Err: err}
	}
	if key, dup := duplicateKey(data); dup {
		return Request{}, &DecodeError{Reason: "duplicate field \"" + key + "\""}
	}
	var req Request
	if err := decodeField(fields, "method", &req.Method); err != nil {
		return Request{}, err
	}
	if err := decodeField(fields, "number", &req.Number); err != nil {
		return Request{}, err
	}
	if req.Method != MethodIsPrime {
		return req, &UnknownMethodError{Method: req.Method}
	}
	return req, nil
}

// decodeField decodes the value stored under the exact key name into dst.
func decodeField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &DecodeError{Reason: "missing field \"" + name + "\""}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &DecodeError{Reason: "invalid type for field \"" + name + "\"", Err: err}
	}
	return nil
}

// duplicateKey walks the top-level object of a document that already
// decoded cleanly and reports the first key seen twice.
func duplicateKey(data []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", false
	}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		key, _ := tok.(string)
		if _, ok := seen[key]; ok {
			return key, true
		}
		seen[key] = struct{}{}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return "", false
		}
	}
	return "", false
}

func describeJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return "expected a JSON object"
	case errors.As(err, &syntaxErr):
		return "invalid JSON"
	default:
		return "invalid request"
	}
}

// Evaluate answers req.
func Evaluate(req Request) Response {
	return Response{Method: req.Method, Prime: IsPrime(req.Number)}
}

// EncodeResponse renders resp as compact JSON without a trailing newline.
func EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}
