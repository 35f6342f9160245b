// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package rest binds untyped HTTP parameters to typed operations and
// renders their results as HTML pages or JSON documents.
//
// # Forms
//
// A FormDescriptor lists the named parameters one operation takes,
// in order.  Validation looks each one up in the raw request
// parameters and stops at the first one that is absent; otherwise it
// produces one string per parameter, the first value sent for it.
// File parameters are validated like text parameters, and their value
// is the uploaded file's contents.
//
// # Resources
//
// A Resource pairs a FormDescriptor with a function taking a
// parameter struct, whose fields are tagged with the parameter names:
//
//	type addRule struct {
//	    Label   string `param:"label"`
//	    Pattern string `param:"pattern"`
//	}
//
// The function returns a Renderable, which knows how to show itself
// as an HTML fragment and as a JSON document.  A resource's function
// is never called if validation fails, and is called exactly once
// otherwise.
//
// # Registries
//
// A Registry holds the resources for one URL path, one per HTTP
// method.  Dispatch picks the resource for the method, runs it, and
// renders the outcome in the requested representation.  HTML
// responses are wrapped in a page Shell along with the input forms of
// the path's operations; JSON responses are the bare document.
// Missing parameters and unsupported methods are rendered outcomes,
// not errors, and are returned with a 200 OK status.
//
// Registries that share mutable state share a Guard.  A resource
// declared reentrant runs under the guard's read lock; any other
// resource runs under its write lock, so it never overlaps another
// operation on the same state.
//
// # HTTP
//
// A Registry is an http.Handler.  The handler collects parameters
// from the query string and request body, honors a "_method" form
// field on POST requests (HTML forms cannot send PUT), and picks the
// representation from a "format=json" or "format=html" query
// parameter or else the Accept: header.  HTML is the default.  A JSON
// document is sent with the JSON media type the client asked for, or
// with the versioned vendor type when the client named none.
//
// Dispatch metrics are labelled with the method only when the path
// has a resource for it; any other method is counted as "other".
package rest
