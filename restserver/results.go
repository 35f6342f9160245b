// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"bytes"
	"encoding/base64"
	"html/template"

	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/diffeo/go-rulesweb/rules"
)

// Result types for the operations.  Each is plain data copied out of
// the model while the registry held its lock, so rendering needs no
// lock at all.

var resultTemplates = template.Must(template.New("results").Parse(`
{{define "error"}}<p class="alert alert-danger">{{.}}</p>{{end}}

{{define "rules"}}<h2>Rules</h2>
<table class="table"><tr><th>Label</th><th>Pattern</th></tr>
{{range .}}<tr><td>{{.Label}}</td><td>{{.Pattern}}</td></tr>{{end}}
</table>{{end}}

{{define "root"}}{{range .}}<div class="job"><h3>{{.Name}}</h3>
{{if .Error}}<p class="alert alert-warning">{{.Error}}</p>{{end}}
{{.Page}}</div>{{else}}<p>no jobs</p>{{end}}{{end}}

{{define "match"}}{{if .Matches}}<ul>{{range .Matches}}<li>{{.Label}} : {{.Pattern}}</li>{{end}}</ul>{{else}}<p>no match</p>{{end}}{{end}}

{{define "sidebar"}}<h4>Jobs</h4><ul class="list-unstyled">
{{range .}}<li>{{.Name}} ({{.Runs}}){{if .Err}} <span class="label label-warning">error</span>{{end}}</li>
{{else}}<li>none</li>{{end}}</ul>{{end}}

{{define "model"}}<a id="dl" download="bow_model.bin" href="{{.URL}}">Download Model</a>
<p>{{.Rules}} rules, generation {{.Generation}}</p>{{end}}
`))

func render(name string, data interface{}) template.HTML {
	var buf bytes.Buffer
	if err := resultTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		panic(err)
	}
	return template.HTML(buf.String())
}

// errorDocument is the JSON form of an operation that failed.
func errorDocument(err error) interface{} {
	resp := restdata.ErrorResponse{}
	resp.FromError(err)
	return resp
}

func ruleData(rule rules.Rule) restdata.Rule {
	return restdata.Rule{Label: rule.Label, Pattern: rule.PatternString()}
}

func ruleList(rs []rules.Rule) []restdata.Rule {
	result := make([]restdata.Rule, len(rs))
	for i, rule := range rs {
		result[i] = ruleData(rule)
	}
	return result
}

type rootResult struct {
	restdata.RootData
}

func (r rootResult) HTML() template.HTML {
	type jobView struct {
		restdata.Job
		Page template.HTML
	}
	jobs := make([]jobView, len(r.Jobs))
	for i, job := range r.Jobs {
		// job pages were sanitized when the job published them
		jobs[i] = jobView{Job: job, Page: template.HTML(job.Page)}
	}
	return render("root", jobs)
}

func (r rootResult) JSON() interface{} {
	return r.RootData
}

type matchResult struct {
	restdata.MatchResult
}

func (r matchResult) HTML() template.HTML {
	return render("match", r.MatchResult)
}

func (r matchResult) JSON() interface{} {
	return r.MatchResult
}

type ruleListResult struct {
	restdata.RuleList
}

func (r ruleListResult) HTML() template.HTML {
	return render("rules", r.Rules)
}

func (r ruleListResult) JSON() interface{} {
	return r.RuleList
}

// ruleAddedResult is the result of adding a rule.  If Err is set the
// rule was rejected, or it was added but not saved.
type ruleAddedResult struct {
	restdata.RuleAdded
	Err error
}

func (r ruleAddedResult) HTML() template.HTML {
	var html template.HTML
	if r.Err != nil {
		html = render("error", r.Err.Error())
	} else {
		html = template.HTML("<p>") + template.HTML(template.HTMLEscapeString(r.Result)) + "</p>"
	}
	return html + render("rules", r.Rules)
}

func (r ruleAddedResult) JSON() interface{} {
	if r.Err != nil {
		return errorDocument(r.Err)
	}
	return r.RuleAdded
}

type modelResult struct {
	restdata.ModelData
	Err error
}

func (r modelResult) HTML() template.HTML {
	if r.Err != nil {
		return render("error", r.Err.Error())
	}
	return render("model", struct {
		URL        template.URL
		Rules      int
		Generation uint64
	}{
		URL:        template.URL("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(r.Model)),
		Rules:      r.Rules,
		Generation: r.Generation,
	})
}

func (r modelResult) JSON() interface{} {
	if r.Err != nil {
		return errorDocument(r.Err)
	}
	return r.ModelData
}

type modelLoadedResult struct {
	restdata.ModelLoaded
	Err error
}

func (r modelLoadedResult) HTML() template.HTML {
	if r.Err != nil {
		return render("error", r.Err.Error())
	}
	return template.HTML("<p>") + template.HTML(template.HTMLEscapeString(r.Result)) + "</p>"
}

func (r modelLoadedResult) JSON() interface{} {
	if r.Err != nil {
		return errorDocument(r.Err)
	}
	return r.ModelLoaded
}
