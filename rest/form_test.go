// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var addForm = &FormDescriptor{
	Name:        "Add",
	Description: "Add rules",
	Path:        "/rules",
	Method:      "POST",
	Parameters: []ParameterSpec{
		{Name: "label", Kind: KindText, Label: "The label"},
		{Name: "pattern", Kind: KindText, Label: "The pattern"},
	},
}

var loadForm = &FormDescriptor{
	Name:        "Load",
	Description: "Load rules",
	Path:        "/model",
	Method:      "PUT",
	Parameters: []ParameterSpec{
		{Name: "rules", Kind: KindFile, Label: "A file containing rules"},
	},
}

func TestValidateComplete(t *testing.T) {
	v := addForm.Validate(Values{
		"pattern": {"fuzzy"},
		"label":   {"cat"},
		"extra":   {"ignored"},
	})
	if assert.True(t, v.OK()) {
		if diff := cmp.Diff([]string{"cat", "fuzzy"}, v.Values); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestValidateFirstMissing(t *testing.T) {
	for _, values := range []Values{
		{},
		{"pattern": {"fuzzy"}},
		{"label": {}, "pattern": {"fuzzy"}},
	} {
		v := addForm.Validate(values)
		if assert.False(t, v.OK(), "%v", values) {
			assert.Equal(t, "label", v.Missing.Name)
			assert.Nil(t, v.Values)
		}
	}

	v := addForm.Validate(Values{"label": {"cat"}})
	if assert.False(t, v.OK()) {
		assert.Equal(t, addForm.Parameters[1], *v.Missing)
	}
}

func TestValidateFirstValueWins(t *testing.T) {
	v := addForm.Validate(Values{"label": {"cat", "dog"}, "pattern": {"", "x"}})
	if assert.True(t, v.OK()) {
		assert.Equal(t, []string{"cat", ""}, v.Values)
	}
}

func TestValidateFileLikeText(t *testing.T) {
	v := loadForm.Validate(Values{"rules": {"\x00\x01binary"}})
	if assert.True(t, v.OK()) {
		assert.Equal(t, []string{"\x00\x01binary"}, v.Values)
	}
	assert.False(t, loadForm.Validate(Values{}).OK())
}

func TestValidateNoParameters(t *testing.T) {
	form := &FormDescriptor{Name: "Rules", Path: "/rules", Method: "GET"}
	v := form.Validate(nil)
	assert.True(t, v.OK())
	assert.Empty(t, v.Values)
}

func TestValidateConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				v := addForm.Validate(Values{"label": {"a"}, "pattern": {"b"}})
				assert.Equal(t, []string{"a", "b"}, v.Values)
			} else {
				v := addForm.Validate(Values{"label": {"a"}})
				assert.Equal(t, "pattern", v.Missing.Name)
			}
		}(i)
	}
	wg.Wait()
}

func TestField(t *testing.T) {
	p, ok := addForm.Field("pattern")
	assert.True(t, ok)
	assert.Equal(t, "The pattern", p.Label)
	_, ok = addForm.Field("nope")
	assert.False(t, ok)
}

func TestFormHTML(t *testing.T) {
	html := string(addForm.Form(""))
	assert.Contains(t, html, `action="/rules" method="post"`)
	assert.Contains(t, html, `name="label"`)
	assert.Contains(t, html, `name="pattern"`)
	assert.NotContains(t, html, "_method")
	assert.NotContains(t, html, "alert")
	assert.NotContains(t, html, "multipart")
}

func TestFormHTMLOverrideAndFile(t *testing.T) {
	html := string(loadForm.Form(""))
	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, `name="_method" value="PUT"`)
	assert.Contains(t, html, `type="file"`)
}

func TestFormHTMLMissing(t *testing.T) {
	html := string(addForm.Form("pattern"))
	assert.Contains(t, html, "Missing: The pattern")
	assert.Equal(t, 1, strings.Count(html, "has-error"))
}

func TestFormHTMLGet(t *testing.T) {
	form := &FormDescriptor{
		Name:       "Match",
		Path:       "/match",
		Method:     "GET",
		Parameters: []ParameterSpec{{Name: "input", Kind: KindText, Label: "Text to <match>"}},
	}
	html := string(form.Form(""))
	assert.Contains(t, html, `method="get"`)
	assert.Contains(t, html, "Text to &lt;match&gt;")
}
