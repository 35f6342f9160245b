// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package store defines persistence for the serialized rule model.
// The contents are opaque bytes; only the rules package interprets
// them.
package store

// Store keeps the most recent serialized rule model.
type Store interface {
	// Load returns the saved model, or nil with no error if
	// nothing has been saved yet.
	Load() ([]byte, error)

	// Save replaces the saved model.
	Save(blob []byte) error
}
