// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package rest

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, body []byte) restdata.ErrorResponse {
	var resp restdata.ErrorResponse
	require.NoError(t, restdata.Decode(restdata.V1JSONMediaType, bytes.NewReader(body), &resp))
	return resp
}

func rulesRegistry(calls *[]addParams) *Registry {
	listForm := &FormDescriptor{Name: "Rules", Path: "/rules", Method: "GET"}
	reg := NewRegistry("/rules", &sync.RWMutex{})
	reg.MustRegister("GET", MustResource(listForm, true, func(struct{}) textResult {
		return textResult("all rules")
	}))
	reg.MustRegister("POST", MustResource(addForm, false, func(p addParams) textResult {
		*calls = append(*calls, p)
		return textResult("added " + p.Label)
	}))
	return reg
}

func TestDispatchOK(t *testing.T) {
	var calls []addParams
	reg := rulesRegistry(&calls)

	r := reg.Dispatch("POST", Values{"label": {"cat"}, "pattern": {"fuzzy"}}, JSON)
	assert.Equal(t, OutcomeOK, r.Outcome)
	assert.Equal(t, restdata.V1JSONMediaType, r.ContentType)
	assert.JSONEq(t, `{"result":"added cat"}`, string(r.Body))
	assert.Equal(t, []addParams{{"cat", "fuzzy"}}, calls)

	r = reg.Dispatch("POST", Values{"label": {"dog"}, "pattern": {"loud"}}, HTML)
	assert.Equal(t, OutcomeOK, r.Outcome)
	assert.Equal(t, restdata.HTMLMediaType, r.ContentType)
	assert.Contains(t, string(r.Body), "<p>added dog</p>")
	// forms for the parameterised operations follow the result
	assert.Contains(t, string(r.Body), `action="/rules" method="post"`)
	assert.Len(t, calls, 2)
}

func TestDispatchMissing(t *testing.T) {
	var calls []addParams
	reg := rulesRegistry(&calls)

	r := reg.Dispatch("POST", Values{"label": {"cat"}}, JSON)
	assert.Equal(t, OutcomeMissing, r.Outcome)
	resp := decodeError(t, r.Body)
	assert.Equal(t, "ErrMissingParameter", resp.Error)
	assert.Equal(t, "pattern", resp.Value)
	assert.Empty(t, calls)

	r = reg.Dispatch("POST", Values{}, HTML)
	assert.Equal(t, OutcomeMissing, r.Outcome)
	assert.Contains(t, string(r.Body), "Missing: The label")
	assert.Empty(t, calls)
}

func TestDispatchUnsupported(t *testing.T) {
	addOnly := NewRegistry("/rules", nil)
	calls := 0
	addOnly.MustRegister("POST", MustResource(addForm, false, func(p addParams) textResult {
		calls++
		return ""
	}))

	r := addOnly.Dispatch("GET", Values{"label": {"x"}, "pattern": {"y"}}, HTML)
	assert.Equal(t, OutcomeUnsupported, r.Outcome)
	assert.Contains(t, string(r.Body), "<p>no such method</p>")
	assert.Contains(t, string(r.Body), `name="pattern"`)

	r = addOnly.Dispatch("DELETE", nil, JSON)
	assert.Equal(t, OutcomeUnsupported, r.Outcome)
	resp := decodeError(t, r.Body)
	assert.Equal(t, "ErrMethodNotSupported", resp.Error)
	assert.Equal(t, "DELETE", resp.Value)
	assert.Equal(t, 0, calls)
}

func TestRegisterErrors(t *testing.T) {
	reg := NewRegistry("/rules", nil)
	res := MustResource(addForm, false, func(p addParams) textResult { return "" })
	assert.NoError(t, reg.Register("POST", res))
	assert.Error(t, reg.Register("POST", res))
	assert.Error(t, reg.Register("PUT", res))

	other := NewRegistry("/model", nil)
	assert.Error(t, other.Register("POST", res))
	assert.Panics(t, func() { other.MustRegister("POST", res) })

	assert.Equal(t, []string{"POST"}, reg.Methods())
}

func TestDispatchShell(t *testing.T) {
	reg := NewRegistry("/rules", nil)
	reg.MustRegister("POST", MustResource(addForm, false, func(p addParams) textResult {
		return textResult(p.Label)
	}))
	reg.Shell = &Shell{
		Title:   "Rules <web>",
		Nav:     []Link{{Label: "Home", URL: "/"}},
		Sidebar: func() template.HTML { return "<p>side</p>" },
	}
	r := reg.Dispatch("POST", Values{"label": {"a"}, "pattern": {"b"}}, HTML)
	body := string(r.Body)
	assert.Contains(t, body, "<title>Rules &lt;web&gt;</title>")
	assert.Contains(t, body, `<a href="/">Home</a>`)
	assert.Contains(t, body, "<p>side</p>")
	assert.Contains(t, body, "bootstrap.min.css")
}

func TestDispatchMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	var calls []addParams
	reg := rulesRegistry(&calls)
	reg.Metrics = metrics

	reg.Dispatch("POST", Values{"label": {"a"}, "pattern": {"b"}}, JSON)
	reg.Dispatch("POST", Values{}, JSON)
	reg.Dispatch("POST", Values{}, JSON)
	reg.Dispatch("PATCH", Values{}, HTML)

	count := func(method, rep, outcome string) float64 {
		return testutil.ToFloat64(metrics.dispatches.WithLabelValues("/rules", method, rep, outcome))
	}
	assert.Equal(t, 1.0, count("POST", "json", OutcomeOK))
	assert.Equal(t, 2.0, count("POST", "json", OutcomeMissing))
	assert.Equal(t, 1.0, count(otherMethod, "html", OutcomeUnsupported))
}

// TestDispatchMetricsUnknownMethods checks that methods with no
// resource share one label, however many distinct ones clients send.
func TestDispatchMetricsUnknownMethods(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	var calls []addParams
	reg := rulesRegistry(&calls)
	reg.Metrics = metrics

	for i := 0; i < 100; i++ {
		form := url.Values{methodOverride: {fmt.Sprintf("junk%d", i)}}
		req := httptest.NewRequest("POST", "/rules?format=json", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		reg.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	reg.Dispatch("GET", Values{}, JSON)

	assert.Equal(t, 2, testutil.CollectAndCount(metrics.dispatches))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.duration))
	assert.Equal(t, 100.0, testutil.ToFloat64(
		metrics.dispatches.WithLabelValues("/rules", otherMethod, "json", OutcomeUnsupported)))
	assert.Empty(t, calls)
}

// TestGuardExclusion runs many reentrant readers against a single
// non-reentrant writer sharing one guard.  Readers must be able to
// overlap each other; the writer must never overlap anything.
func TestGuardExclusion(t *testing.T) {
	guard := &sync.RWMutex{}
	var readers, writers, maxReaders int32
	var violations int32

	matchForm := &FormDescriptor{
		Name:       "Match",
		Path:       "/match",
		Method:     "GET",
		Parameters: []ParameterSpec{{Name: "input", Kind: KindText, Label: "Text to match"}},
	}
	type matchParams struct {
		Input string `param:"input"`
	}
	match := NewRegistry("/match", guard).MustRegister("GET",
		MustResource(matchForm, true, func(p matchParams) textResult {
			n := atomic.AddInt32(&readers, 1)
			for {
				m := atomic.LoadInt32(&maxReaders)
				if n <= m || atomic.CompareAndSwapInt32(&maxReaders, m, n) {
					break
				}
			}
			if atomic.LoadInt32(&writers) != 0 {
				atomic.AddInt32(&violations, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&readers, -1)
			return textResult(p.Input)
		}))
	add := NewRegistry("/rules", guard).MustRegister("POST",
		MustResource(addForm, false, func(p addParams) textResult {
			if atomic.AddInt32(&writers, 1) != 1 || atomic.LoadInt32(&readers) != 0 {
				atomic.AddInt32(&violations, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&writers, -1)
			return textResult(p.Label)
		}))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 10; j++ {
				match.Dispatch("GET", Values{"input": {"x"}}, JSON)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		for j := 0; j < 10; j++ {
			add.Dispatch("POST", Values{"label": {"a"}, "pattern": {"b"}}, JSON)
		}
	}()
	close(start)
	wg.Wait()

	assert.Equal(t, int32(0), violations)
	assert.True(t, maxReaders > 1, "readers never overlapped")
}
