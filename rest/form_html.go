// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"bytes"
	"html/template"
	"net/http"
)

// methodOverride is the form field a POST request can use to stand
// in for another method.
const methodOverride = "_method"

var formTemplate = template.Must(template.New("form").Parse(
	`<form action="{{.Path}}" method="{{.FormMethod}}"` +
		`{{if .Multipart}} enctype="multipart/form-data"{{end}}>` +
		`<h3>{{.Name}}</h3>` +
		`{{if .Description}}<p>{{.Description}}</p>{{end}}` +
		`{{if .Missing}}<p class="alert alert-warning">Missing: {{.Missing.Label}}</p>{{end}}` +
		`{{if .Override}}<input type="hidden" name="` + methodOverride + `" value="{{.Method}}">{{end}}` +
		`{{range .Fields}}` +
		`<div class="form-group{{if .Missing}} has-error{{end}}">` +
		`<label for="{{.ID}}">{{.Label}}</label>` +
		`<input type="{{.Kind}}" class="form-control" id="{{.ID}}" name="{{.Name}}">` +
		`</div>` +
		`{{end}}` +
		`<button type="submit" class="btn btn-default">{{.Name}}</button>` +
		`</form>`))

type formField struct {
	ParameterSpec
	ID      string
	Missing bool
}

type formData struct {
	*FormDescriptor
	FormMethod string
	Multipart  bool
	Override   bool
	Missing    *ParameterSpec
	Fields     []formField
}

// Form renders the descriptor as an HTML input form.  If missing is
// non-empty, the form flags the parameter with that name as missing.
// Methods other than GET and POST are submitted as POST with a
// "_method" field.
func (d *FormDescriptor) Form(missing string) template.HTML {
	data := formData{
		FormDescriptor: d,
		FormMethod:     "post",
		Multipart:      d.hasFile(),
	}
	switch d.Method {
	case http.MethodGet:
		data.FormMethod = "get"
	case http.MethodPost:
	default:
		data.Override = true
	}
	for _, param := range d.Parameters {
		field := formField{
			ParameterSpec: param,
			ID:            d.Name + "-" + param.Name,
			Missing:       missing != "" && param.Name == missing,
		}
		if field.Missing {
			spec := param
			data.Missing = &spec
		}
		data.Fields = append(data.Fields, field)
	}
	return mustExecute(formTemplate, data)
}

// mustExecute runs a template that is known to be good.  A failure
// here is a programming error and panics; the HTTP handler turns the
// panic into an error response.
func mustExecute(t *template.Template, data interface{}) template.HTML {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(err)
	}
	return template.HTML(buf.String())
}
