// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rules

import (
	"github.com/ugorji/go/codec"
)

// modelFormat tags serialized models so that arbitrary CBOR is not
// mistaken for a rule set.
const modelFormat = "rulesweb.bow.v1"

// Matcher is an ordered set of rules.  A Matcher is not safe for
// concurrent mutation; see Model.
type Matcher struct {
	rules []Rule
}

// serializedModel is the on-the-wire shape of a Matcher.
type serializedModel struct {
	Format string `codec:"format"`
	Rules  []Rule `codec:"rules"`
}

// NewMatcher creates a matcher holding rules, which are validated.
func NewMatcher(rules ...Rule) (*Matcher, error) {
	m := &Matcher{}
	for _, rule := range rules {
		if err := m.Add(rule); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add appends a rule to the matcher.
func (m *Matcher) Add(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	m.rules = append(m.rules, rule)
	return nil
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Rules returns a copy of the rules in insertion order.
func (m *Matcher) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}

// Match returns the rules matching tokens, in insertion order.  This
// only reads the matcher.
func (m *Matcher) Match(tokens []string) []Rule {
	words := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		words[token] = struct{}{}
	}
	var result []Rule
	for _, rule := range m.rules {
		if rule.Matches(words) {
			result = append(result, rule)
		}
	}
	return result
}

// Clone returns an independent copy of the matcher.
func (m *Matcher) Clone() *Matcher {
	return &Matcher{rules: m.Rules()}
}

// Serialize produces the binary form of the matcher.
func (m *Matcher) Serialize() ([]byte, error) {
	var out []byte
	cbor := &codec.CborHandle{}
	encoder := codec.NewEncoderBytes(&out, cbor)
	err := encoder.Encode(serializedModel{
		Format: modelFormat,
		Rules:  m.rules,
	})
	return out, err
}

// Deserialize reads a matcher produced by Serialize.  Any malformed
// input, including a blob holding an invalid rule, returns
// ErrBadModel.
func Deserialize(blob []byte) (*Matcher, error) {
	var model serializedModel
	cbor := &codec.CborHandle{}
	decoder := codec.NewDecoderBytes(blob, cbor)
	if err := decoder.Decode(&model); err != nil {
		return nil, ErrBadModel
	}
	if model.Format != modelFormat {
		return nil, ErrBadModel
	}
	m, err := NewMatcher(model.Rules...)
	if err != nil {
		return nil, ErrBadModel
	}
	return m, nil
}
