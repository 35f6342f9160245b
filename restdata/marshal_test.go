// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelDataBinary(t *testing.T) {
	in := ModelData{Model: []byte{0, 1, 2, 0xff}, Rules: 2, Generation: 7}
	buf, err := EncodeBytes(in)
	if !assert.NoError(t, err) {
		return
	}

	var out ModelData
	err = Decode(V1JSONMediaType, bytes.NewReader(buf), &out)
	if assert.NoError(t, err) {
		assert.Equal(t, in, out)
	}
}

func TestDecodeMediaTypes(t *testing.T) {
	var out Rule
	for _, ct := range []string{"application/json", "text/json; charset=utf-8", JSONMediaType} {
		err := Decode(ct, bytes.NewReader([]byte(`{"label":"cat","pattern":"fuzzy"}`)), &out)
		if assert.NoError(t, err, ct) {
			assert.Equal(t, Rule{Label: "cat", Pattern: "fuzzy"}, out)
		}
	}

	err := Decode("text/html", bytes.NewReader(nil), &out)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "text/html"}, err)
}
