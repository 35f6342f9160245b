// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rules

import (
	"fmt"
	"sync"

	"github.com/diffeo/go-rulesweb/store"
)

// ErrNotSaved is returned from Model methods that changed the
// in-memory model but could not write it to the backing store.  The
// change is kept.
type ErrNotSaved struct {
	Err error
}

func (e ErrNotSaved) Error() string {
	return fmt.Sprintf("Rule model changed but not saved: %v", e.Err)
}

// Model is the process-wide rule model.  It owns the current Matcher
// and optionally a store that receives a copy of the serialized model
// every time it changes.
//
// Model does not lock itself.  The embedded RWMutex is the guard
// shared by every REST registry that touches the model: readers
// (Match, Rules, Len, Generation, Serialize) need at least the read
// lock, writers (Add, Replace) need the write lock.  Restore is the
// one exception and takes the write lock itself.
type Model struct {
	sync.RWMutex
	matcher    *Matcher
	generation uint64
	store      store.Store
}

// NewModel creates an empty model.  st may be nil.
func NewModel(st store.Store) *Model {
	return &Model{
		matcher: &Matcher{},
		store:   st,
	}
}

// Restore replaces the model with the contents of its store, if the
// store has anything in it.
func (m *Model) Restore() error {
	m.Lock()
	defer m.Unlock()
	if m.store == nil {
		return nil
	}
	blob, err := m.store.Load()
	if err != nil || blob == nil {
		return err
	}
	matcher, err := Deserialize(blob)
	if err != nil {
		return err
	}
	m.swap(matcher)
	return nil
}

// Generation returns a counter that changes every time the model
// does.
func (m *Model) Generation() uint64 {
	return m.generation
}

// Len returns the number of rules in the model.
func (m *Model) Len() int {
	return m.matcher.Len()
}

// Rules returns a copy of the rules in the model.
func (m *Model) Rules() []Rule {
	return m.matcher.Rules()
}

// Match tokenizes text and returns the matching rules.
func (m *Model) Match(text string) []Rule {
	return m.matcher.Match(Tokenize(text))
}

// Serialize returns the binary form of the model.
func (m *Model) Serialize() ([]byte, error) {
	return m.matcher.Serialize()
}

// Add adds a single rule to the model.
func (m *Model) Add(rule Rule) error {
	next := m.matcher.Clone()
	if err := next.Add(rule); err != nil {
		return err
	}
	m.swap(next)
	return m.save()
}

// Replace parses blob as a serialized model and, only if that
// succeeds, makes it the current model.  On a parse failure the
// previous model and generation are untouched.
func (m *Model) Replace(blob []byte) error {
	next, err := Deserialize(blob)
	if err != nil {
		return err
	}
	m.swap(next)
	return m.save()
}

func (m *Model) swap(next *Matcher) {
	m.matcher = next
	m.generation++
}

func (m *Model) save() error {
	if m.store == nil {
		return nil
	}
	blob, err := m.matcher.Serialize()
	if err == nil {
		err = m.store.Save(blob)
	}
	if err != nil {
		return ErrNotSaved{Err: err}
	}
	return nil
}
