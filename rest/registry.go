// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"fmt"
	"html/template"
	"time"

	"github.com/diffeo/go-rulesweb/restdata"
)

// Representation is an output encoding of an operation's result.
type Representation int

const (
	// HTML is a complete web page.
	HTML Representation = iota

	// JSON is a bare JSON document.
	JSON
)

func (r Representation) String() string {
	switch r {
	case HTML:
		return "html"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Representation(%d)", int(r))
	}
}

// Outcome labels reported by Rendered.Outcome.
const (
	OutcomeOK          = "ok"
	OutcomeMissing     = "missing"
	OutcomeUnsupported = "unsupported"
)

// Guard serializes access to state shared between registries.  A
// *sync.RWMutex is a Guard.
type Guard interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// Rendered is a response body produced by Dispatch.
type Rendered struct {
	Body        []byte
	ContentType string

	// Outcome is one of OutcomeOK, OutcomeMissing or
	// OutcomeUnsupported.
	Outcome string
}

// Registry holds the resources for a single path.  Register every
// resource before the registry starts serving; after that it is only
// read and is safe for concurrent use.
type Registry struct {
	// Path is the URL path this registry serves.
	Path string

	// Shell wraps HTML responses.  If nil, a bare shell is used.
	Shell *Shell

	// Metrics, if non-nil, counts dispatches.
	Metrics *Metrics

	// MaxUploadBytes limits the size of a request body read by
	// ServeHTTP.  If zero, DefaultMaxUploadBytes applies.
	MaxUploadBytes int64

	guard     Guard
	resources map[string]Handler
	methods   []string
}

// NewRegistry creates an empty registry for path.  guard protects the
// state the registry's resources share with other registries; it may
// be nil if they share nothing.
func NewRegistry(path string, guard Guard) *Registry {
	return &Registry{
		Path:      path,
		guard:     guard,
		resources: make(map[string]Handler),
	}
}

// Register adds the resource for an HTTP method.  It is an error to
// register a second resource for the same method, or a resource whose
// form belongs to a different path or method.
func (r *Registry) Register(method string, h Handler) error {
	if _, present := r.resources[method]; present {
		return fmt.Errorf("%v: method %v already registered", r.Path, method)
	}
	form := h.Descriptor()
	if form.Path != r.Path || form.Method != method {
		return fmt.Errorf("%v: form %q is for %v %v", r.Path, form.Name, form.Method, form.Path)
	}
	r.resources[method] = h
	r.methods = append(r.methods, method)
	return nil
}

// MustRegister is Register, but panics on error.
func (r *Registry) MustRegister(method string, h Handler) *Registry {
	if err := r.Register(method, h); err != nil {
		panic(err)
	}
	return r
}

// Methods returns the registered methods in registration order.
func (r *Registry) Methods() []string {
	return append([]string(nil), r.methods...)
}

// Dispatch runs the resource registered for method and renders the
// outcome as rep.  If there is no such resource, it renders a fixed
// "method not supported" response without running anything.
func (r *Registry) Dispatch(method string, values Values, rep Representation) Rendered {
	start := time.Now()
	var rendered Rendered
	h := r.resources[method]
	if h == nil {
		rendered = r.renderUnsupported(method, rep)
	} else {
		outcome := r.invoke(h, values)
		if outcome.Missing != nil {
			rendered = r.renderMissing(h, outcome.Missing, rep)
		} else {
			rendered = r.renderResult(outcome.Result, rep)
		}
	}
	label := method
	if h == nil {
		label = otherMethod
	}
	r.Metrics.observe(r.Path, label, rendered.Outcome, rep, time.Since(start))
	return rendered
}

// invoke runs a handler under the guard.  Rendering happens after
// the guard is released, so results must not alias shared state.
func (r *Registry) invoke(h Handler, values Values) Outcome {
	if r.guard != nil {
		if h.IsReentrant() {
			r.guard.RLock()
			defer r.guard.RUnlock()
		} else {
			r.guard.Lock()
			defer r.guard.Unlock()
		}
	}
	return h.Handle(values)
}

func (r *Registry) renderUnsupported(method string, rep Representation) Rendered {
	if rep == JSON {
		return r.renderError(restdata.ErrMethodNotSupported{Method: method}, OutcomeUnsupported)
	}
	content := template.HTML("<p>no such method</p>") + r.forms(nil, "")
	return r.renderPage(content, OutcomeUnsupported)
}

func (r *Registry) renderMissing(h Handler, missing *ParameterSpec, rep Representation) Rendered {
	if rep == JSON {
		return r.renderError(restdata.ErrMissingParameter{Name: missing.Name}, OutcomeMissing)
	}
	return r.renderPage(r.forms(h.Descriptor(), missing.Name), OutcomeMissing)
}

func (r *Registry) renderResult(result Renderable, rep Representation) Rendered {
	if rep == JSON {
		return Rendered{
			Body:        mustEncode(result.JSON()),
			ContentType: restdata.V1JSONMediaType,
			Outcome:     OutcomeOK,
		}
	}
	return r.renderPage(result.HTML()+r.forms(nil, ""), OutcomeOK)
}

func (r *Registry) renderError(err error, outcome string) Rendered {
	resp := restdata.ErrorResponse{}
	resp.FromError(err)
	return Rendered{
		Body:        mustEncode(resp),
		ContentType: restdata.V1JSONMediaType,
		Outcome:     outcome,
	}
}

func (r *Registry) renderPage(content template.HTML, outcome string) Rendered {
	shell := r.Shell
	if shell == nil {
		shell = &Shell{}
	}
	return Rendered{
		Body:        shell.Page(content),
		ContentType: restdata.HTMLMediaType,
		Outcome:     outcome,
	}
}

// forms renders the input forms of every registered operation that
// takes parameters.  If failed is non-nil, its form is annotated with
// the missing parameter.
func (r *Registry) forms(failed *FormDescriptor, missing string) template.HTML {
	var html template.HTML
	for _, method := range r.methods {
		form := r.resources[method].Descriptor()
		if len(form.Parameters) == 0 {
			continue
		}
		if form == failed {
			html += form.Form(missing)
		} else {
			html += form.Form("")
		}
	}
	return html
}

// mustEncode produces a JSON document.  Result types are plain data,
// so an encoding failure is a programming error.
func mustEncode(v interface{}) []byte {
	body, err := restdata.EncodeBytes(v)
	if err != nil {
		panic(err)
	}
	return body
}
