// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package jobs runs long-lived background jobs that periodically
// publish an HTML status fragment.  The web server's root page shows
// the latest fragment of each job.
package jobs

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/microcosm-cc/bluemonday"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Job is one background job.  Step is called once when the job
// starts and then once per pool interval, always from the same
// goroutine.
type Job interface {
	// Name is a short human-readable name for the job.
	Name() string

	// Step does one round of work and returns the job's new
	// status fragment.  If it returns an error, the previous
	// fragment stays published alongside the error.
	Step(now time.Time) (template.HTML, error)
}

// Snapshot is the published state of a job.
type Snapshot struct {
	// Page is the job's latest status fragment.
	Page template.HTML

	// Updated is the time of the latest step.
	Updated time.Time

	// Runs counts completed steps.
	Runs int

	// Err is the error from the latest step, if any.
	Err error
}

// Handle refers to a running job.
type Handle struct {
	// ID is the job's unique identifier.
	ID string

	// Name is the job's name.
	Name string

	lock     sync.RWMutex
	snapshot Snapshot
}

// Snapshot returns the job's latest published state.  It never waits
// for a step in progress.
func (h *Handle) Snapshot() Snapshot {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.snapshot
}

func (h *Handle) publish(page template.HTML, now time.Time, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if err == nil {
		h.snapshot.Page = page
	}
	h.snapshot.Updated = now
	h.snapshot.Runs++
	h.snapshot.Err = err
}

// Summary describes one job in a pool.
type Summary struct {
	ID   string
	Name string
	Snapshot
}

// Pool runs a set of jobs, each on its own goroutine.  The zero Pool
// is ready to use.
type Pool struct {
	// Interval is the time between steps of each job.  If unset,
	// defaults to 1 second.
	Interval time.Duration

	// ErrorHandler is called when a job step fails.  If unset,
	// the failure is logged.
	ErrorHandler func(id string, err error)

	// Clock defines a time source for the pool.  Only test code
	// should need to set this.  If unset, uses a time source
	// backed by real wall-clock time.
	Clock clock.Clock

	lock    sync.Mutex
	handles map[string]*Handle
	order   []string
	policy  *bluemonday.Policy
	wg      sync.WaitGroup
}

// setDefaults sets default values for any Pool fields that are
// uninitialized.  It runs under the pool lock.
func (p *Pool) setDefaults() {
	if p.Interval == time.Duration(0) {
		p.Interval = time.Duration(1) * time.Second
	}
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	if p.handles == nil {
		p.handles = make(map[string]*Handle)
	}
	if p.policy == nil {
		p.policy = bluemonday.UGCPolicy()
		p.policy.AllowAttrs("class").Globally()
	}
}

// Start runs job until ctx is cancelled.  The first step runs before
// Start returns, so the job always has a snapshot.  Returns the new
// job's ID.
func (p *Pool) Start(ctx context.Context, job Job) string {
	p.lock.Lock()
	p.setDefaults()
	h := &Handle{
		ID:   uuid.NewV4().String(),
		Name: job.Name(),
	}
	p.handles[h.ID] = h
	p.order = append(p.order, h.ID)
	ticker := p.Clock.Ticker(p.Interval)
	p.lock.Unlock()

	p.step(h, job, p.Clock.Now())
	p.wg.Add(1)
	go p.run(ctx, h, job, ticker)
	return h.ID
}

func (p *Pool) run(ctx context.Context, h *Handle, job Job, ticker *clock.Ticker) {
	defer p.wg.Done()
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.step(h, job, now)
		}
	}
}

// step runs one step of a job and publishes the result.
func (p *Pool) step(h *Handle, job Job, now time.Time) {
	page, err := job.Step(now)
	if err != nil {
		if p.ErrorHandler != nil {
			p.ErrorHandler(h.ID, err)
		} else {
			logrus.WithFields(logrus.Fields{
				"job": h.Name,
				"id":  h.ID,
			}).WithError(err).Warn("Job step failed")
		}
	} else {
		page = template.HTML(p.policy.Sanitize(string(page)))
	}
	h.publish(page, now, err)
}

// Get returns the job with a given ID, or nil if there is none.
func (p *Pool) Get(id string) *Handle {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.handles[id]
}

// Jobs returns summaries of every job in the order they were
// started.
func (p *Pool) Jobs() []Summary {
	p.lock.Lock()
	handles := make([]*Handle, len(p.order))
	for i, id := range p.order {
		handles[i] = p.handles[id]
	}
	p.lock.Unlock()

	result := make([]Summary, len(handles))
	for i, h := range handles {
		result[i] = Summary{ID: h.ID, Name: h.Name, Snapshot: h.Snapshot()}
	}
	return result
}

// Wait blocks until every job has stopped.  Jobs stop when the
// context passed to Start is cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}
