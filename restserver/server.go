// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/diffeo/go-rulesweb/cache"
	"github.com/diffeo/go-rulesweb/jobs"
	"github.com/diffeo/go-rulesweb/rest"
	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/diffeo/go-rulesweb/rules"
	"github.com/gorilla/mux"
)

// DefaultMatchCacheSize is the number of match results kept if
// Config.MatchCacheSize is unset.
const DefaultMatchCacheSize = 1024

// Config holds the collaborators of the web service.
type Config struct {
	// Model is the rule model.  Required.
	Model *rules.Model

	// Jobs, if non-nil, is shown on the root page and sidebar.
	Jobs *jobs.Pool

	// Metrics, if non-nil, counts dispatches.
	Metrics *rest.Metrics

	// MatchCacheSize is the number of match results to cache.  If
	// zero or negative, DefaultMatchCacheSize is used.
	MatchCacheSize int

	// MaxUploadBytes limits uploaded model files.
	MaxUploadBytes int64

	// Title is the HTML page title.
	Title string
}

// NewRouter creates a new HTTP handler that serves every rulesweb
// resource.  For more control over this setup, create a mux.Router
// and call PopulateRouter instead.
func NewRouter(config Config) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, config)
	return r
}

// PopulateRouter adds the rulesweb routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the interface under a subpath:
//
//	r := mux.NewRouter()
//	s := r.PathPrefix("/rules").Subrouter()
//	PopulateRouter(s, restserver.Config{Model: rules.NewModel(nil)})
func PopulateRouter(r *mux.Router, config Config) {
	api := newAPI(r, config)
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the REST API.
type restAPI struct {
	Config
	Router  *mux.Router
	Matches *cache.LRU[[]restdata.Rule]
	Shell   *rest.Shell

	// match finds the rules for some input; normally Model.Match.
	match func(string) []rules.Rule
}

func newAPI(r *mux.Router, config Config) *restAPI {
	if config.MatchCacheSize <= 0 {
		config.MatchCacheSize = DefaultMatchCacheSize
	}
	if config.Title == "" {
		config.Title = "rulesweb"
	}
	api := &restAPI{
		Config:  config,
		Router:  r,
		Matches: cache.NewLRU[[]restdata.Rule](config.MatchCacheSize),
		match:   config.Model.Match,
	}
	api.Shell = &rest.Shell{
		Title:   config.Title,
		Sidebar: api.Sidebar,
	}
	return api
}

// PopulateRouter adds all URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	registries := []struct {
		name     string
		registry *rest.Registry
	}{
		{"root", api.RootRegistry()},
		{"match", api.MatchRegistry()},
		{"model", api.ModelRegistry()},
		{"rules", api.RulesRegistry()},
	}
	for _, reg := range registries {
		reg.registry.Shell = api.Shell
		reg.registry.Metrics = api.Metrics
		reg.registry.MaxUploadBytes = api.MaxUploadBytes
		r.Path(reg.registry.Path).Name(reg.name).Handler(reg.registry)
	}
	for _, link := range []struct{ label, route string }{
		{"Home", "root"},
		{"Match", "match"},
		{"Rules", "rules"},
		{"Model", "model"},
	} {
		var url string
		if err := buildURLs(r).URL(&url, link.route).Error; err == nil {
			api.Shell.Nav = append(api.Shell.Nav, rest.Link{Label: link.label, URL: url})
		}
	}
}

// Sidebar lists the background jobs.
func (api *restAPI) Sidebar() template.HTML {
	var summaries []jobs.Summary
	if api.Jobs != nil {
		summaries = api.Jobs.Jobs()
	}
	return render("sidebar", summaries)
}

// matchKey is the cache key for match results.  Including the
// generation means a changed model never hits old entries.
func matchKey(generation uint64, input string) string {
	return fmt.Sprintf("%d\x00%s", generation, input)
}
