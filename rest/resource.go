// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"html/template"
	"reflect"
)

// Renderable is the result of an operation.  Each operation's result
// type implements both methods; each must depend only on the result
// value, so the two representations can be produced independently.
type Renderable interface {
	// HTML renders the result as a page fragment.
	HTML() template.HTML

	// JSON returns the document to encode as the JSON
	// representation of the result.
	JSON() interface{}
}

// Outcome is the result of handling one request.  Exactly one of
// Missing and Result is set.
type Outcome struct {
	// Missing is the first missing parameter, if validation failed.
	Missing *ParameterSpec

	// Result is the operation's result, if it ran.
	Result Renderable
}

// Handler is the untyped view of a Resource that a Registry holds.
type Handler interface {
	// Descriptor returns the operation's form descriptor.
	Descriptor() *FormDescriptor

	// IsReentrant returns true if the operation may run
	// concurrently with other operations on the same state.
	IsReentrant() bool

	// Handle validates values and, if they are complete, runs
	// the operation.
	Handle(values Values) Outcome
}

// Resource binds one typed operation to its form.  P is the
// parameter struct and R the result type.
type Resource[P any, R Renderable] struct {
	form      *FormDescriptor
	reentrant bool
	fn        func(P) R
}

// NewResource creates a resource.  P must be a struct with one
// string or []byte field per parameter of form, tagged
// `param:"name"`; this is checked here, so a mismatch is a startup
// error rather than a request-time one.  A reentrant resource only
// reads shared state.
func NewResource[P any, R Renderable](form *FormDescriptor, reentrant bool, fn func(P) R) (*Resource[P, R], error) {
	var params P
	if err := checkParamStruct(reflect.TypeOf(params), form); err != nil {
		return nil, err
	}
	return &Resource[P, R]{form: form, reentrant: reentrant, fn: fn}, nil
}

// MustResource is NewResource, but panics on error.  It is intended
// for package-level wiring that cannot fail in a correct program.
func MustResource[P any, R Renderable](form *FormDescriptor, reentrant bool, fn func(P) R) *Resource[P, R] {
	r, err := NewResource(form, reentrant, fn)
	if err != nil {
		panic(err)
	}
	return r
}

// Descriptor returns the resource's form.
func (r *Resource[P, R]) Descriptor() *FormDescriptor {
	return r.form
}

// IsReentrant returns whether the resource only reads shared state.
func (r *Resource[P, R]) IsReentrant() bool {
	return r.reentrant
}

// Handle validates values and runs the operation exactly once if
// every parameter is present.  If one is missing, the operation is
// not called.
func (r *Resource[P, R]) Handle(values Values) Outcome {
	validation := r.form.Validate(values)
	if !validation.OK() {
		return Outcome{Missing: validation.Missing}
	}
	var params P
	if err := bind(r.form, validation.Values, &params); err != nil {
		// checkParamStruct makes this unreachable
		panic(err)
	}
	return Outcome{Result: r.fn(params)}
}
