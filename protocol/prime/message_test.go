package prime_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol/prime"
)

func TestDecodeRequestValid(t *testing.T) {
	cases := []struct {
		in   string
		want prime.Request
	}{
		{`{"method":"isPrime","number":7}`, prime.Request{Method: "isPrime", Number: 7}},
		{`{"number":1024,"method":"isPrime"}` + "\n", prime.Request{Method: "isPrime", Number: 1024}},
		{`{"method":"isPrime","number":0,"extra":[1,2,3]}`, prime.Request{Method: "isPrime", Number: 0}},
		{`{"method":"isPrime","number":18446744073709551615}`, prime.Request{Method: "isPrime", Number: 1<<64 - 1}},
	}
	for _, tc := range cases {
		got, err := prime.DecodeRequest([]byte(tc.in))
		if err != nil {
			t.Errorf("DecodeRequest(%s): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("DecodeRequest(%s) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	cases := []string{
		``,
		`not json`,
		`{"number":7}`,
		`{"method":"isPrime"}`,
		`{"method":null,"number":7}`,
		`{"method":"isPrime","number":null}`,
		`{"method":"isPrime","number":"7"}`,
		`{"method":"isPrime","number":7.5}`,
		`{"method":"isPrime","number":-3}`,
		`{"method":"isPrime","number":18446744073709551616}`,
		`{"method":7,"number":7}`,
		`[{"method":"isPrime","number":7}]`,
		`{"method":"isPrime","number":7}{"method":"isPrime","number":7}`,
		`{"method":"isPrime","number":7`,
		`{"method":"isComposite","number":7.5}`,
		`{"Method":"isPrime","number":7}`,
		`{"METHOD":"isPrime","NUMBER":7}`,
		`{"method":"isPrime","Number":7}`,
		`{"method":"isPrime","number":7,"number":8}`,
		`{"method":"isPrime","method":"isPrime","number":7}`,
		`"isPrime"`,
	}
	for _, in := range cases {
		_, err := prime.DecodeRequest([]byte(in))
		if !errors.Is(err, api.ErrDecode) {
			t.Errorf("DecodeRequest(%q): got %v, want decode failure", in, err)
		}
		var de *prime.DecodeError
		if !errors.As(err, &de) || de.Reason == "" {
			t.Errorf("DecodeRequest(%q): missing DecodeError reason", in)
		}
	}
}

func TestDecodeRequestReasons(t *testing.T) {
	cases := []struct {
		in, reason string
	}{
		{`{"METHOD":"isPrime","number":7}`, `missing field "method"`},
		{`{"method":"isPrime","NUMBER":7}`, `missing field "number"`},
		{`{"method":"isPrime","number":7,"number":8}`, `duplicate field "number"`},
		{`{"method":"isPrime","number":-3}`, `invalid type for field "number"`},
		{`{"method":true,"number":3}`, `invalid type for field "method"`},
		{`[1,2]`, `expected a JSON object`},
		{`{"method"`, `invalid JSON`},
	}
	for _, tc := range cases {
		_, err := prime.DecodeRequest([]byte(tc.in))
		var de *prime.DecodeError
		if !errors.As(err, &de) {
			t.Errorf("DecodeRequest(%s): got %v, want DecodeError", tc.in, err)
			continue
		}
		if de.Reason != tc.reason {
			t.Errorf("DecodeRequest(%s): reason %q, want %q", tc.in, de.Reason, tc.reason)
		}
	}
}

func TestDecodeRequestNestedDuplicatesIgnored(t *testing.T) {
	in := `{"method":"isPrime","number":5,"extra":{"a":1,"a":2}}`
	got, err := prime.DecodeRequest([]byte(in))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.Number != 5 {
		t.Fatalf("decoded %+v", got)
	}
}

func TestDecodeRequestUnknownMethod(t *testing.T) {
	req, err := prime.DecodeRequest([]byte(`{"method":"isComposite","number":7}`))
	if !errors.Is(err, api.ErrUnknownMethod) {
		t.Fatalf("got %v, want unknown method", err)
	}
	if errors.Is(err, api.ErrDecode) {
		t.Fatal("unknown method must not be reported as a decode failure")
	}
	var um *prime.UnknownMethodError
	if !errors.As(err, &um) || um.Method != "isComposite" {
		t.Fatalf("unexpected error %#v", err)
	}
	if req.Method != "isComposite" || req.Number != 7 {
		t.Fatalf("decoded request %+v", req)
	}
	if got := err.Error(); got != `unknown method "isComposite"` {
		t.Fatalf("error text %q", got)
	}
}

func TestEvaluateAndEncode(t *testing.T) {
	cases := []struct {
		number uint64
		want   string
	}{
		{7, `{"method":"isPrime","prime":true}`},
		{1024, `{"method":"isPrime","prime":false}`},
		{1, `{"method":"isPrime","prime":false}`},
	}
	for _, tc := range cases {
		resp := prime.Evaluate(prime.Request{Method: prime.MethodIsPrime, Number: tc.number})
		out, err := prime.EncodeResponse(resp)
		if err != nil {
			t.Fatalf("EncodeResponse: %v", err)
		}
		if string(out) != tc.want {
			t.Errorf("number %d: got %s, want %s", tc.number, out, tc.want)
		}
	}
}
