// File: protocol/prime/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package prime

import (
	"fmt"

	"github.com/momentics/hioload-tcp/api"
)

// DecodeError reports bytes that do not form a valid Request.
// It matches api.ErrDecode under errors.Is.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", api.ErrDecode, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", api.ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == api.ErrDecode }

// UnknownMethodError reports a well-formed Request naming an unsupported method.
// It matches api.ErrUnknownMethod under errors.Is.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("%s %q", api.ErrUnknownMethod, e.Method)
}

func (e *UnknownMethodError) Is(target error) bool { return target == api.ErrUnknownMethod }
