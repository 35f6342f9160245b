// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains helpers for building URLs from named routes.

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

type urlBuilder struct {
	Router *mux.Router
	Error  error
}

func buildURLs(router *mux.Router) *urlBuilder {
	return &urlBuilder{Router: router}
}

func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

// URL writes the URL of a named route to out.
func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	var r *mux.Route
	var url *url.URL
	if u.Error == nil {
		r = u.Route(route)
	}
	if u.Error == nil {
		url, u.Error = r.URL()
	}
	if u.Error == nil {
		*out = url.String()
	}
	return u
}

// Query writes an RFC 6570 template for a named route with query
// parameters params to out, e.g. "/match{?input}".
func (u *urlBuilder) Query(out *string, route string, params ...string) *urlBuilder {
	var base string
	u.URL(&base, route)
	if u.Error == nil {
		*out = base + "{?" + strings.Join(params, ",") + "}"
	}
	return u
}
