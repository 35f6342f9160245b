// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the JSON documents exchanged between the
// restserver and restclient packages.  JSON encodings of these are
// passed across the wire as the
// application/vnd.diffeo.rulesweb.v1+json MIME type.
//
// # API Usage
//
// HTTP GET the root document with a JSON Accept: header.  This
// returns a RootData object whose URL fields are RFC 6570 URI
// templates; for instance
//
//	{
//	    "match_url": "/match{?input}",
//	    "model_url": "/model",
//	    "rules_url": "/rules"
//	}
//
// Operation parameters are always sent as form values (query string,
// application/x-www-form-urlencoded or multipart/form-data), never as
// JSON bodies.  The parameter names are listed with each document
// below.
//
// # Errors
//
// Every operation answers 200 OK once the request reaches it.  A
// request that fails (a missing parameter, an unsupported method, a
// malformed model) returns an ErrorResponse document, whose "error"
// field is always non-empty.  Successful documents never have an
// "error" field.  Only failures that happen before an operation is
// selected, such as an unparseable Accept: header, use non-2xx
// statuses.
//
// The serialized rule model is binary; in JSON it is carried as a
// base64 string using the standard alphabet with padding.
package restdata

import (
	"time"
)

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.rulesweb.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.rulesweb+json"

// HTMLMediaType is the MIME type of browser pages.
const HTMLMediaType = "text/html; charset=utf-8"

// RootData is returned by the root path.
type RootData struct {
	// MatchURL is a URI template for matching text against the
	// rules.  It supports HTTP GET with a single parameter,
	// "input", and returns a MatchResult.
	MatchURL string `json:"match_url"`

	// ModelURL points at the serialized rule model.  HTTP GET
	// returns a ModelData; HTTP PUT with a "rules" parameter
	// holding a serialized model replaces the model and returns
	// ModelLoaded.
	ModelURL string `json:"model_url"`

	// RulesURL points at the rule list.  HTTP GET returns a
	// RuleList; HTTP POST with "label" and "pattern" parameters
	// adds a rule and returns RuleAdded.
	RulesURL string `json:"rules_url"`

	// Jobs lists the background jobs and their latest status.
	Jobs []Job `json:"jobs"`
}

// Job describes one background job.
type Job struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Runs    int       `json:"runs"`
	Updated time.Time `json:"updated"`
	Error   string    `json:"error,omitempty"`

	// Page holds the job's latest HTML snapshot.
	Page string `json:"page,omitempty"`
}

// Rule is one labelled pattern.
type Rule struct {
	Label   string `json:"label"`
	Pattern string `json:"pattern"`
}

// MatchResult is returned from the match operation.
type MatchResult struct {
	Input   string `json:"input"`
	Matches []Rule `json:"matches"`
}

// RuleList is returned from HTTP GET on the rules URL.
type RuleList struct {
	Rules      []Rule `json:"rules"`
	Generation uint64 `json:"generation"`
}

// RuleAdded is returned after a rule is added.
type RuleAdded struct {
	Result     string `json:"result"`
	Rule       Rule   `json:"rule"`
	Rules      []Rule `json:"rules"`
	Generation uint64 `json:"generation"`
}

// ModelData carries the serialized rule model.
type ModelData struct {
	Model      []byte `json:"model"`
	Rules      int    `json:"rules"`
	Generation uint64 `json:"generation"`
}

// ModelLoaded is returned after the rule model is replaced.
type ModelLoaded struct {
	Result     string `json:"result"`
	Rules      int    `json:"rules"`
	Generation uint64 `json:"generation"`
}

// ErrorResponse describes a failure.  Error holds a stable error
// code, Message a human-readable description, and Value a detail
// specific to the code (the missing parameter, the rejected method).
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Value   string `json:"value,omitempty"`
	Stack   string `json:"stack,omitempty"`
}
