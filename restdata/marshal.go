// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"

	"github.com/ugorji/go/codec"
)

// IsJSONMediaType reports whether mediaType (without parameters) names
// one of the JSON representations.
func IsJSONMediaType(mediaType string) bool {
	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		return true
	}
	return false
}

// Encode writes v as JSON.
func Encode(w io.Writer, v interface{}) error {
	json := &codec.JsonHandle{}
	encoder := codec.NewEncoder(w, json)
	return encoder.Encode(v)
}

// EncodeBytes returns the JSON encoding of v.
func EncodeBytes(v interface{}) ([]byte, error) {
	var out []byte
	json := &codec.JsonHandle{}
	encoder := codec.NewEncoderBytes(&out, json)
	err := encoder.Encode(v)
	return out, err
}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}
	if !IsJSONMediaType(mediaType) {
		return ErrUnsupportedMediaType{Type: mediaType}
	}

	json := &codec.JsonHandle{}
	decoder := codec.NewDecoder(r, json)
	return decoder.Decode(out)
}
