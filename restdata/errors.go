// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-rulesweb/rules"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrNotAcceptable is returned if the Accept: header does not mention
// any media type the server can produce.
type ErrNotAcceptable struct{}

func (e ErrNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

// HTTPStatus returns a fixed 406 Not Acceptable HTTP status code.
func (e ErrNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// ErrMissingParameter is the error document for a request that lacks
// a required parameter.  Name is the first missing parameter in the
// operation's declared order.
type ErrMissingParameter struct {
	Name string
}

func (e ErrMissingParameter) Error() string {
	return fmt.Sprintf("Missing parameter %q", e.Name)
}

// ErrMethodNotSupported is the error document for a request using an
// HTTP method with no operation on its path.
type ErrMethodNotSupported struct {
	Method string
}

func (e ErrMethodNotSupported) Error() string {
	return fmt.Sprintf("Method %v not supported", e.Method)
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known errors to specific
// e.Error codes.
func (e *ErrorResponse) FromError(err error) {
	e.Error = "error"
	e.Message = err.Error()
	switch err {
	case rules.ErrBadRule:
		e.Error = "ErrBadRule"
	case rules.ErrEmptyLabel:
		e.Error = "ErrEmptyLabel"
	case rules.ErrEmptyPattern:
		e.Error = "ErrEmptyPattern"
	case rules.ErrSeparatorInLabel:
		e.Error = "ErrSeparatorInLabel"
	case rules.ErrBadModel:
		e.Error = "ErrBadModel"
	}
	switch et := err.(type) {
	case ErrMissingParameter:
		e.Error = "ErrMissingParameter"
		e.Value = et.Name
	case ErrMethodNotSupported:
		e.Error = "ErrMethodNotSupported"
		e.Value = et.Method
	case rules.ErrNotSaved:
		e.Error = "ErrNotSaved"
		e.Value = et.Err.Error()
	case ErrNotAcceptable:
		e.Error = "ErrNotAcceptable"
	case ErrBadRequest:
		e.FromError(et.Err)
	}
}

// ToError converts e back to a Go error, if that is possible.  If
// not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	switch e.Error {
	case "ErrBadRule":
		return rules.ErrBadRule
	case "ErrEmptyLabel":
		return rules.ErrEmptyLabel
	case "ErrEmptyPattern":
		return rules.ErrEmptyPattern
	case "ErrSeparatorInLabel":
		return rules.ErrSeparatorInLabel
	case "ErrBadModel":
		return rules.ErrBadModel
	case "ErrMissingParameter":
		return ErrMissingParameter{Name: e.Value}
	case "ErrMethodNotSupported":
		return ErrMethodNotSupported{Method: e.Value}
	case "ErrNotSaved":
		return rules.ErrNotSaved{Err: errors.New(e.Value)}
	case "ErrNotAcceptable":
		return ErrNotAcceptable{}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//	defer func() {
//	    if obj := recover(); obj != nil {
//	        resp := restdata.ErrorResponse{}
//	        resp.FromPanic(obj)
//	        // write resp out as makes sense
//	    }
//	}()
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	n := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:n])
}
