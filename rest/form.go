// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

// Kind is the type of a form parameter.
type Kind string

const (
	// KindText is a single-line text parameter.
	KindText Kind = "text"

	// KindFile is an uploaded file; its value is the file contents.
	KindFile Kind = "file"
)

// ParameterSpec describes one named input field.
type ParameterSpec struct {
	// Name is the request parameter name.
	Name string

	// Kind says how the field is entered.
	Kind Kind

	// Label is the human-readable description of the field.
	Label string
}

// FormDescriptor describes the inputs of one operation.  Descriptors
// are created at startup and never changed, so they may be shared
// freely between goroutines.
type FormDescriptor struct {
	// Name is a short name for the operation, used as the form
	// heading and its submit button.
	Name string

	// Description is a longer description of the operation.
	Description string

	// Path is the URL path the operation lives at.
	Path string

	// Method is the HTTP method that invokes the operation.
	Method string

	// Parameters lists the operation's inputs in order.
	Parameters []ParameterSpec
}

// Values holds raw request parameters, as produced by the transport.
type Values map[string][]string

// Validation is the result of checking Values against a
// FormDescriptor.
type Validation struct {
	// Missing, if non-nil, is the first parameter (in declared
	// order) absent from the request.
	Missing *ParameterSpec

	// Values holds one value per parameter in declared order.
	// It is nil if Missing is set.
	Values []string
}

// OK returns true if no parameter was missing.
func (v Validation) OK() bool {
	return v.Missing == nil
}

// Validate checks that every parameter has at least one value in
// values, stopping at the first one that does not.  Only the first
// value of a parameter is used.
func (d *FormDescriptor) Validate(values Values) Validation {
	result := make([]string, len(d.Parameters))
	for i, param := range d.Parameters {
		vs := values[param.Name]
		if len(vs) == 0 {
			missing := param
			return Validation{Missing: &missing}
		}
		result[i] = vs[0]
	}
	return Validation{Values: result}
}

// Field finds the parameter with a given name.
func (d *FormDescriptor) Field(name string) (ParameterSpec, bool) {
	for _, param := range d.Parameters {
		if param.Name == name {
			return param, true
		}
	}
	return ParameterSpec{}, false
}

// hasFile returns true if any parameter is a file upload.
func (d *FormDescriptor) hasFile() bool {
	for _, param := range d.Parameters {
		if param.Kind == KindFile {
			return true
		}
	}
	return false
}
