// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process store for the serialized
// rule model.  Nothing survives a restart; this is the default
// backend and the one tests use.
package memory

import (
	"sync"

	"github.com/diffeo/go-rulesweb/store"
)

type memStore struct {
	lock sync.Mutex
	blob []byte
}

// New creates a new, empty in-memory store.
func New() store.Store {
	return &memStore{}
}

func (s *memStore) Load() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), s.blob...), nil
}

func (s *memStore) Save(blob []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.blob = append([]byte{}, blob...)
	return nil
}
