// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a rule model
// store based on command-line flags.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diffeo/go-rulesweb/store"
	"github.com/diffeo/go-rulesweb/store/memory"
	"github.com/diffeo/go-rulesweb/store/postgres"
)

// Backend describes user-visible parameters to store the rule model.
// This implements the flag.Value interface (and urfave/cli's Generic),
// and so a typical use is
//
//	func main() {
//	    backend := backend.Backend{Implementation: "memory"}
//	    flag.Var(&backend, "backend", "impl:address of model storage")
//	    flag.Parse()
//	    st, err := backend.Store()
//	}
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

// Store creates a new model store.  This generally should be only
// called once.  If b.Implementation is "memory", multiple calls to
// this will create multiple independent stores.
func (b *Backend) Store() (store.Store, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(b.Address)
	default:
		return nil, fmt.Errorf("unknown model backend %q", b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// Neither this nor Store() validates the address before a
// connection is attempted.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	if parts[0] == "" {
		return errors.New("must specify a backend type")
	}
	switch parts[0] {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown model backend %q", parts[0])
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	return nil
}
