// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"errors"
	"fmt"
)

// Error is a fatal authorization fault. Calls failing with an *Error leave
// the registry unchanged.
type Error struct {
	Code    int32
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("auth error %d: %s", e.Code, e.Message)
}

var (
	ErrMalformedProof     = &Error{Code: 1, Message: "malformed proof"}
	ErrMalformedParams    = &Error{Code: 2, Message: "malformed operator params"}
	ErrInvalidOperators   = &Error{Code: 3, Message: "invalid operators"}
	ErrInvalidWeights     = &Error{Code: 4, Message: "invalid weights"}
	ErrInvalidThreshold   = &Error{Code: 5, Message: "invalid threshold"}
	ErrDuplicateOperators = &Error{Code: 6, Message: "duplicate operators"}
	ErrNotOwner           = &Error{Code: 7, Message: "caller is not the owner"}
	ErrUnmatchedSigner    = &Error{Code: 8, Message: "malformed signers"}
	ErrInsufficientWeight = &Error{Code: 9, Message: "total weight is less than threshold"}
	ErrZeroOwner          = &Error{Code: 10, Message: "owner is the zero address"}
)

// IsFault reports whether err is, or wraps, an authorization fault.
func IsFault(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
