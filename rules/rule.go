// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package rules provides the bag-of-words rule matcher behind the
// rulesweb front-end.
//
// A rule pairs a label with a pattern, a list of words.  A rule
// matches some input text if every word of its pattern appears
// somewhere among the input's tokens, in any order.  Rules are
// written in text form as
//
//	label : word word word
//
// The Model type holds the process-wide matcher; see its
// documentation for the locking contract.
package rules

import (
	"errors"
	"strings"
)

// ErrBadRule is returned from ParseRule if its input has no " : "
// separator.
var ErrBadRule = errors.New("Rule must be of the form 'label : pattern'")

// ErrEmptyLabel is returned when adding a rule with no label.
var ErrEmptyLabel = errors.New("Rule label is empty")

// ErrSeparatorInLabel is returned when adding a rule whose label
// contains " : ", since its text form could not be parsed back.
var ErrSeparatorInLabel = errors.New("Rule label must not contain ' : '")

// ErrEmptyPattern is returned when adding a rule whose pattern has no
// words in it.
var ErrEmptyPattern = errors.New("Rule pattern is empty")

// ErrBadModel is returned from Deserialize if the serialized model
// cannot be read.
var ErrBadModel = errors.New("Invalid serialized rule model")

// ruleSeparator splits the label from the pattern in the text form
// of a rule.
const ruleSeparator = " : "

// Rule is a single labelled pattern.
type Rule struct {
	// Label is reported when the rule matches.
	Label string `codec:"label"`

	// Pattern holds the normalized words that must all be
	// present in the input.
	Pattern []string `codec:"pattern"`
}

// NewRule creates a rule from a label and a pattern in text form.
// The pattern is tokenized the same way match input is.
func NewRule(label, pattern string) (Rule, error) {
	rule := Rule{
		Label:   strings.TrimSpace(label),
		Pattern: Tokenize(pattern),
	}
	return rule, rule.Validate()
}

// ParseRule parses the "label : pattern" text form of a rule.  The
// label ends at the first separator.
func ParseRule(s string) (Rule, error) {
	parts := strings.SplitN(s, ruleSeparator, 2)
	if len(parts) != 2 {
		return Rule{}, ErrBadRule
	}
	return NewRule(parts[0], parts[1])
}

// Validate checks that the rule has a label and a pattern, and that
// String and ParseRule round-trip it.
func (r Rule) Validate() error {
	if r.Label == "" {
		return ErrEmptyLabel
	}
	// a trailing " :" would join the separator in the text form
	if strings.Contains(r.Label+" ", ruleSeparator) {
		return ErrSeparatorInLabel
	}
	if len(r.Pattern) == 0 {
		return ErrEmptyPattern
	}
	return nil
}

// PatternString returns the pattern words joined by spaces.
func (r Rule) PatternString() string {
	return strings.Join(r.Pattern, " ")
}

// String returns the text form of the rule.
func (r Rule) String() string {
	return r.Label + ruleSeparator + r.PatternString()
}

// Matches reports whether every pattern word is in words.
func (r Rule) Matches(words map[string]struct{}) bool {
	for _, w := range r.Pattern {
		if _, present := words[w]; !present {
			return false
		}
	}
	return len(r.Pattern) > 0
}

// Tokenize splits text on whitespace and lower-cases each token.
func Tokenize(text string) []string {
	tokens := strings.Fields(text)
	for i, token := range tokens {
		tokens[i] = strings.ToLower(token)
	}
	return tokens
}
