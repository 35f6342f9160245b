// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/jtacoma/uritemplates"
)

// resource is any object that has a URL.
type resource struct {
	URL    *url.URL
	Client *http.Client
}

// Template expands a URI template with vars, and returns the result
// relative to the resource's URL.
func (r *resource) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}
	return r.URL.Parse(expanded)
}

// Do performs some HTTP action.  If values is non-nil, it is sent
// form-encoded in the body of the request.  If out is non-nil, the
// response data is deserialized into this object, which must be of
// pointer type.  A response that is an error document is returned as
// the corresponding Go error, even if the HTTP status was 200.
func (r *resource) Do(method string, url *url.URL, values url.Values, out interface{}) (err error) {
	var body *strings.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	} else {
		body = strings.NewReader("")
	}

	// Create the request and set headers
	req, err := http.NewRequest(method, url.String(), body)
	if err != nil {
		return err
	}
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", restdata.V1JSONMediaType)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()

	// Always collect the entire body; it is decoded twice, once
	// looking for an error and once for the real result.
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err = checkHTTPStatus(resp, data); err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	var errResp restdata.ErrorResponse
	if err = restdata.Decode(contentType, bytes.NewReader(data), &errResp); err != nil {
		return err
	}
	if errResp.Error != "" {
		return errResp.ToError()
	}
	if out != nil {
		err = restdata.Decode(contentType, bytes.NewReader(data), out)
	}
	return err // may be nil
}

// Get retrieves the resource from its own URL.  The result is stored
// in out, which must be of pointer type.
func (r *resource) Get(out interface{}) error {
	return r.Do("GET", r.URL, nil, out)
}

// GetFrom retrieves a resource from some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.  The result is stored in
// out, which must be of pointer type.
func (r *resource) GetFrom(template string, vars map[string]interface{}, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do("GET", url, nil, out)
	}
	return err
}

// SendTo submits form values to some other URL with method.
// template is interpreted as in GetFrom.  The server response is
// stored in out, which must be of pointer type.
func (r *resource) SendTo(method, template string, values url.Values, out interface{}) error {
	url, err := r.Template(template, nil)
	if err == nil {
		err = r.Do(method, url, values, out)
	}
	return err
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string
}

func (e ErrorHTTP) Error() string {
	return e.Response.Status
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.
func checkHTTPStatus(resp *http.Response, body []byte) error {
	if len(resp.Status) > 0 && resp.Status[0] == '2' {
		return nil
	}

	// Take a shot at decoding it as a better error
	var errResp restdata.ErrorResponse
	contentType := resp.Header.Get("Content-Type")
	err := restdata.Decode(contentType, bytes.NewReader(body), &errResp)
	if err == nil && errResp.Error != "" {
		return errResp.ToError()
	}
	return ErrorHTTP{Response: resp, Body: string(body)}
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
