// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/diffeo/go-rulesweb/rest"
	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/diffeo/go-rulesweb/rules"
	"github.com/sirupsen/logrus"
)

var rootForm = &rest.FormDescriptor{
	Name:        "Home",
	Description: "Background jobs and links to the other resources",
	Path:        "/",
	Method:      http.MethodGet,
}

var matchForm = &rest.FormDescriptor{
	Name:        "Match",
	Description: "Match the input against the rules",
	Path:        "/match",
	Method:      http.MethodGet,
	Parameters: []rest.ParameterSpec{
		{Name: "input", Kind: rest.KindText, Label: "Text to match"},
	},
}

var saveForm = &rest.FormDescriptor{
	Name:        "Save",
	Description: "Download the serialized model",
	Path:        "/model",
	Method:      http.MethodGet,
}

var loadForm = &rest.FormDescriptor{
	Name:        "Load",
	Description: "Load rules",
	Path:        "/model",
	Method:      http.MethodPut,
	Parameters: []rest.ParameterSpec{
		{Name: "rules", Kind: rest.KindFile, Label: "A file containing rules"},
	},
}

var listForm = &rest.FormDescriptor{
	Name:        "Rules",
	Description: "List the rules",
	Path:        "/rules",
	Method:      http.MethodGet,
}

var addForm = &rest.FormDescriptor{
	Name:        "Add",
	Description: "Add rules",
	Path:        "/rules",
	Method:      http.MethodPost,
	Parameters: []rest.ParameterSpec{
		{Name: "label", Kind: rest.KindText, Label: "The label"},
		{Name: "pattern", Kind: rest.KindText, Label: "The pattern"},
	},
}

type matchParams struct {
	Input string `param:"input"`
}

type loadParams struct {
	Rules []byte `param:"rules"`
}

type addParams struct {
	Label   string `param:"label"`
	Pattern string `param:"pattern"`
}

// RootRegistry serves "/".  It touches no model state, so it has no
// guard; job snapshots do their own locking.
func (api *restAPI) RootRegistry() *rest.Registry {
	return rest.NewRegistry(rootForm.Path, nil).
		MustRegister(http.MethodGet, rest.MustResource(rootForm, true, api.Root))
}

// MatchRegistry serves "/match".
func (api *restAPI) MatchRegistry() *rest.Registry {
	return rest.NewRegistry(matchForm.Path, api.Model).
		MustRegister(http.MethodGet, rest.MustResource(matchForm, true, api.Match))
}

// ModelRegistry serves "/model".
func (api *restAPI) ModelRegistry() *rest.Registry {
	return rest.NewRegistry(loadForm.Path, api.Model).
		MustRegister(http.MethodGet, rest.MustResource(saveForm, true, api.Save)).
		MustRegister(http.MethodPut, rest.MustResource(loadForm, false, api.Load))
}

// RulesRegistry serves "/rules".
func (api *restAPI) RulesRegistry() *rest.Registry {
	return rest.NewRegistry(addForm.Path, api.Model).
		MustRegister(http.MethodGet, rest.MustResource(listForm, true, api.List)).
		MustRegister(http.MethodPost, rest.MustResource(addForm, false, api.Add))
}

// Root describes the service: URL templates for the other resources
// and the latest status of every background job.
func (api *restAPI) Root(struct{}) rootResult {
	resp := rootResult{}
	err := buildURLs(api.Router).
		Query(&resp.MatchURL, "match", "input").
		URL(&resp.ModelURL, "model").
		URL(&resp.RulesURL, "rules").
		Error
	if err != nil {
		// Only possible if PopulateRouter was bypassed
		panic(err)
	}
	if api.Jobs != nil {
		for _, summary := range api.Jobs.Jobs() {
			job := restdata.Job{
				ID:      summary.ID,
				Name:    summary.Name,
				Runs:    summary.Runs,
				Updated: summary.Updated,
				Page:    string(summary.Page),
			}
			if summary.Err != nil {
				job.Error = summary.Err.Error()
			}
			resp.Jobs = append(resp.Jobs, job)
		}
	}
	return resp
}

// Match finds the rules matching some input text.  Runs under the
// model's read lock, so matches on a cache miss run concurrently with
// each other.
func (api *restAPI) Match(p matchParams) matchResult {
	key := matchKey(api.Model.Generation(), p.Input)
	matches, _ := api.Matches.Get(key, func(string) ([]restdata.Rule, error) {
		return ruleList(api.match(p.Input)), nil
	})
	return matchResult{restdata.MatchResult{Input: p.Input, Matches: matches}}
}

// Save returns the serialized model.  Runs under the model's read
// lock.
func (api *restAPI) Save(struct{}) modelResult {
	blob, err := api.Model.Serialize()
	return modelResult{
		ModelData: restdata.ModelData{
			Model:      blob,
			Rules:      api.Model.Len(),
			Generation: api.Model.Generation(),
		},
		Err: err,
	}
}

// Load replaces the model with an uploaded serialized model.  Runs
// under the model's write lock.
func (api *restAPI) Load(p loadParams) modelLoadedResult {
	err := api.Model.Replace(p.Rules)
	result := modelLoadedResult{
		ModelLoaded: restdata.ModelLoaded{
			Rules:      api.Model.Len(),
			Generation: api.Model.Generation(),
		},
		Err: err,
	}
	if err == nil {
		result.Result = "Model loaded"
	}
	logResult(logrus.WithFields(logrus.Fields{
		"rules":      result.Rules,
		"generation": result.Generation,
	}), err, "Load model")
	return result
}

// List returns every rule.  Runs under the model's read lock.
func (api *restAPI) List(struct{}) ruleListResult {
	return ruleListResult{restdata.RuleList{
		Rules:      ruleList(api.Model.Rules()),
		Generation: api.Model.Generation(),
	}}
}

// Add adds one rule built from a label and a pattern.  Runs under
// the model's write lock.
func (api *restAPI) Add(p addParams) ruleAddedResult {
	rule, err := rules.NewRule(p.Label, p.Pattern)
	if err == nil {
		err = api.Model.Add(rule)
	}
	result := ruleAddedResult{
		RuleAdded: restdata.RuleAdded{
			Rule:       ruleData(rule),
			Rules:      ruleList(api.Model.Rules()),
			Generation: api.Model.Generation(),
		},
		Err: err,
	}
	if err == nil {
		result.Result = "Added " + rule.String()
	}
	logResult(logrus.WithFields(logrus.Fields{
		"rule":       rule.String(),
		"generation": result.Generation,
	}), err, "Add rule")
	return result
}

// logResult logs the outcome of a model change.
func logResult(entry *logrus.Entry, err error, msg string) {
	if err != nil {
		entry.WithError(err).Warn(msg)
	} else {
		entry.Info(msg)
	}
}
