// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

// This file is the HTTP side of a Registry: it turns a request into
// raw parameters, a method and a representation, and writes the
// rendered result back.  Content type negotiation follows RFC 7231
// section 5.3.

import (
	"errors"
	"fmt"
	"io/ioutil"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/sirupsen/logrus"
)

// DefaultMaxUploadBytes is the request body limit if a registry does
// not set its own.
const DefaultMaxUploadBytes = 32 << 20

// formatParam is the query parameter that forces a representation.
const formatParam = "format"

var typeMap = map[string]Representation{
	"text/html":              HTML,
	"application/xhtml+xml":  HTML,
	"text/json":              JSON,
	"application/json":       JSON,
	restdata.JSONMediaType:   JSON,
	restdata.V1JSONMediaType: JSON,
}

// errBadAccept is returned from negotiate() if the Accept: header is
// malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errTooLarge is returned if an uploaded file exceeds the registry's
// upload limit.
var errTooLarge = errors.New("Uploaded file too large")

func (r *Registry) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			logrus.WithFields(logrus.Fields{
				"path":   r.Path,
				"method": req.Method,
				"panic":  response.Message,
			}).Error("Panic in dispatch")
			writeJSON(resp, http.StatusInternalServerError, response)
		}
	}()

	rep, jsonType, err := negotiate(req)
	if err != nil {
		writeError(resp, err)
		return
	}

	values, err := r.requestValues(resp, req)
	if err != nil {
		writeError(resp, restdata.ErrBadRequest{Err: err})
		return
	}
	method := requestMethod(req, values)

	rendered := r.Dispatch(method, values, rep)
	logrus.WithFields(logrus.Fields{
		"path":           r.Path,
		"method":         method,
		"representation": rep,
		"outcome":        rendered.Outcome,
	}).Debug("Dispatch")

	contentType := rendered.ContentType
	if rep == JSON {
		contentType = jsonType
	}
	resp.Header().Set("Content-Type", contentType)
	resp.Header().Set("Vary", "Accept")
	resp.WriteHeader(http.StatusOK)
	if req.Method != http.MethodHead {
		_, _ = resp.Write(rendered.Body)
	}
}

// requestMethod returns the method to dispatch: HEAD is treated as
// GET, and a POST may name another method in a "_method" field,
// which is then removed from values.
func requestMethod(req *http.Request, values Values) string {
	switch req.Method {
	case http.MethodHead:
		return http.MethodGet
	case http.MethodPost:
		override := values[methodOverride]
		delete(values, methodOverride)
		if len(override) > 0 && override[0] != "" {
			return strings.ToUpper(override[0])
		}
	}
	return req.Method
}

// requestValues collects the request's parameters.  Values from the
// body come before values from the query string, as in net/http.
// Uploaded files contribute their contents; a file input left empty
// contributes nothing.
func (r *Registry) requestValues(resp http.ResponseWriter, req *http.Request) (Values, error) {
	limit := r.MaxUploadBytes
	if limit == 0 {
		limit = DefaultMaxUploadBytes
	}
	values := make(Values)
	mediaType := ""
	if contentType := req.Header.Get("Content-Type"); contentType != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(contentType)
		if err != nil {
			return nil, err
		}
	}

	switch mediaType {
	case "multipart/form-data":
		req.Body = http.MaxBytesReader(resp, req.Body, limit)
		if err := req.ParseMultipartForm(limit); err != nil {
			return nil, err
		}
		for name, vs := range req.MultipartForm.Value {
			for _, v := range vs {
				// a browser sends an unused file input as an
				// empty part without a filename
				if v == "" && r.isFileParam(name) {
					continue
				}
				values[name] = append(values[name], v)
			}
		}
		for name, headers := range req.MultipartForm.File {
			for _, header := range headers {
				if header.Filename == "" && header.Size == 0 {
					continue
				}
				f, err := header.Open()
				if err != nil {
					return nil, err
				}
				contents, err := ioutil.ReadAll(f)
				_ = f.Close()
				if err != nil {
					return nil, err
				}
				if int64(len(contents)) > limit {
					return nil, errTooLarge
				}
				values[name] = append(values[name], string(contents))
			}
		}
	case "application/x-www-form-urlencoded":
		req.Body = http.MaxBytesReader(resp, req.Body, limit)
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		for name, vs := range req.PostForm {
			values[name] = append(values[name], vs...)
		}
	}

	for name, vs := range req.URL.Query() {
		values[name] = append(values[name], vs...)
	}
	return values, nil
}

// isFileParam returns true if any registered form has a file
// parameter called name.
func (r *Registry) isFileParam(name string) bool {
	for _, h := range r.resources {
		if param, ok := h.Descriptor().Field(name); ok && param.Kind == KindFile {
			return true
		}
	}
	return false
}

// negotiate picks the representation for a request.  An explicit
// "format" query parameter wins; otherwise the Accept: header is
// consulted, with HTML as the default for wildcards.  It also
// returns the media type to send a JSON document as: the JSON type
// the client asked for, or the versioned vendor type if the client
// did not name one.
func negotiate(req *http.Request) (Representation, string, error) {
	switch strings.ToLower(req.URL.Query().Get(formatParam)) {
	case "json":
		return JSON, restdata.V1JSONMediaType, nil
	case "html":
		return HTML, restdata.V1JSONMediaType, nil
	}

	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	for _, mediaRange := range strings.Split(accept, ",") {
		mediaRange = strings.TrimSpace(mediaRange)
		if mediaRange == "" {
			continue
		}
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return HTML, "", restdata.ErrBadRequest{Err: errBadAccept}
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil || q < 0.0 || q > 1.0 {
				return HTML, "", restdata.ErrBadRequest{Err: errBadAccept}
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if it's listed in the type
		// map; or it's one of a couple of specific wildcards.
		// Also need to handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if _, knownType := typeMap[mediaType]; knownType {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
	}
	if bestQ == 0.0 {
		return HTML, "", restdata.ErrNotAcceptable{}
	}
	switch bestType {
	case "*/*", "text/*":
		return HTML, restdata.V1JSONMediaType, nil
	case "application/*":
		return JSON, restdata.V1JSONMediaType, nil
	}
	rep := typeMap[bestType]
	if rep == JSON {
		return rep, bestType, nil
	}
	return rep, restdata.V1JSONMediaType, nil
}

// writeError sends a transport-level failure as a JSON error
// document with the error's HTTP status.
func writeError(resp http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errS, hasStatus := err.(restdata.ErrorStatus); hasStatus {
		status = errS.HTTPStatus()
	}
	response := restdata.ErrorResponse{}
	response.FromError(err)
	writeJSON(resp, status, response)
}

func writeJSON(resp http.ResponseWriter, status int, v interface{}) {
	resp.Header().Set("Content-Type", restdata.V1JSONMediaType)
	resp.WriteHeader(status)
	if err := restdata.Encode(resp, v); err != nil {
		logrus.WithError(err).Error(fmt.Sprintf("Could not write %d response", status))
	}
}
