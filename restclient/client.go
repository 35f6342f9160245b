// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an HTTP REST client that talks to the
// matching server in the "restserver" package.
//
// The server in github.com/diffeo/go-rulesweb/cmd/rulesweb runs a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//	c, err := restclient.New("http://localhost:5980/")
package restclient

import (
	"errors"
	"net/url"

	"github.com/diffeo/go-rulesweb/restdata"
)

// ErrNoBaseURL is returned from New if it is given an empty URL.
var ErrNoBaseURL = errors.New("No base URL for rulesweb server")

// Client talks to one rulesweb server.
type Client struct {
	resource
	Representation restdata.RootData
}

// New creates a client for the server at baseURL, and fetches its
// root document.
func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	url, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{resource: resource{URL: url}}
	if err = c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh fetches the root document again.
func (c *Client) Refresh() error {
	c.Representation = restdata.RootData{}
	return c.Get(&c.Representation)
}

// Jobs returns the server's background jobs.
func (c *Client) Jobs() ([]restdata.Job, error) {
	err := c.Refresh()
	return c.Representation.Jobs, err
}

// Match returns the rules that match input.
func (c *Client) Match(input string) (restdata.MatchResult, error) {
	var result restdata.MatchResult
	err := c.GetFrom(c.Representation.MatchURL, map[string]interface{}{"input": input}, &result)
	return result, err
}

// Rules returns every rule.
func (c *Client) Rules() (restdata.RuleList, error) {
	var result restdata.RuleList
	err := c.GetFrom(c.Representation.RulesURL, nil, &result)
	return result, err
}

// AddRule adds a rule with a label and a pattern.
func (c *Client) AddRule(label, pattern string) (restdata.RuleAdded, error) {
	var result restdata.RuleAdded
	err := c.SendTo("POST", c.Representation.RulesURL, url.Values{
		"label":   {label},
		"pattern": {pattern},
	}, &result)
	return result, err
}

// Model returns the serialized model.
func (c *Client) Model() (restdata.ModelData, error) {
	var result restdata.ModelData
	err := c.GetFrom(c.Representation.ModelURL, nil, &result)
	return result, err
}

// LoadModel replaces the server's model with a serialized one.
func (c *Client) LoadModel(blob []byte) (restdata.ModelLoaded, error) {
	var result restdata.ModelLoaded
	err := c.SendTo("PUT", c.Representation.ModelURL, url.Values{
		"rules": {string(blob)},
	}, &result)
	return result, err
}
