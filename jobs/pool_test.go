// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package jobs

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"gopkg.in/check.v1"
)

// counter is a job that reports how many times it has run.  Setting
// fail makes the next steps return an error.
type counter struct {
	lock  sync.Mutex
	steps int
	fail  error
	extra string
}

func (c *counter) Name() string {
	return "counter"
}

func (c *counter) Step(now time.Time) (template.HTML, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.fail != nil {
		return "", c.fail
	}
	c.steps++
	return template.HTML(fmt.Sprintf("<p class=\"count\">%d</p>%s", c.steps, c.extra)), nil
}

func (c *counter) setFail(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.fail = err
}

type Suite struct {
	Clock  *clock.Mock
	Pool   *Pool
	Ctx    context.Context
	Cancel func()
	Errors chan error
}

func init() {
	check.Suite(&Suite{})
}

func Test(t *testing.T) {
	check.TestingT(t)
}

func (s *Suite) SetUpTest(c *check.C) {
	s.Clock = clock.NewMock()
	s.Errors = make(chan error, 16)
	s.Pool = &Pool{
		Interval: time.Second,
		Clock:    s.Clock,
		ErrorHandler: func(id string, err error) {
			select {
			case s.Errors <- err:
			default:
			}
		},
	}
	s.Ctx, s.Cancel = context.WithCancel(context.Background())
}

func (s *Suite) TearDownTest(c *check.C) {
	s.Cancel()
	s.Pool.Wait()
}

// WaitForRuns advances the mock clock until the job has completed
// at least runs steps.
func (s *Suite) WaitForRuns(c *check.C, h *Handle, runs int) Snapshot {
	for i := 0; i < 1000; i++ {
		snap := h.Snapshot()
		if snap.Runs >= runs {
			return snap
		}
		if i%10 == 0 {
			s.Clock.Add(s.Pool.Interval)
		}
		time.Sleep(time.Millisecond)
	}
	c.Fatalf("job never reached %d runs", runs)
	return Snapshot{}
}

func (s *Suite) TestFirstStepImmediate(c *check.C) {
	job := &counter{}
	id := s.Pool.Start(s.Ctx, job)
	h := s.Pool.Get(id)
	c.Assert(h, check.NotNil)
	c.Check(h.Name, check.Equals, "counter")

	snap := h.Snapshot()
	c.Check(snap.Runs, check.Equals, 1)
	c.Check(snap.Err, check.IsNil)
	c.Check(snap.Updated.Equal(s.Clock.Now()), check.Equals, true)
	c.Check(string(snap.Page), check.Equals, `<p class="count">1</p>`)
}

func (s *Suite) TestTicks(c *check.C) {
	job := &counter{}
	h := s.Pool.Get(s.Pool.Start(s.Ctx, job))
	snap := s.WaitForRuns(c, h, 3)
	c.Check(strings.Contains(string(snap.Page), "count"), check.Equals, true)
	c.Check(snap.Updated.After(time.Unix(0, 0)), check.Equals, true)
}

func (s *Suite) TestStepError(c *check.C) {
	job := &counter{}
	h := s.Pool.Get(s.Pool.Start(s.Ctx, job))
	before := h.Snapshot()

	failure := errors.New("probe failed")
	job.setFail(failure)
	snap := s.WaitForRuns(c, h, 2)
	c.Check(snap.Err, check.Equals, failure)
	c.Check(snap.Page, check.Equals, before.Page)

	select {
	case err := <-s.Errors:
		c.Check(err, check.Equals, failure)
	case <-time.After(time.Second):
		c.Fatal("error handler not called")
	}

	job.setFail(nil)
	snap = s.WaitForRuns(c, h, snap.Runs+1)
	c.Check(snap.Err, check.IsNil)
	c.Check(string(snap.Page), check.Equals, `<p class="count">2</p>`)
}

func (s *Suite) TestSanitize(c *check.C) {
	job := &counter{extra: `<script>alert(1)</script><a href="javascript:x()">x</a>`}
	h := s.Pool.Get(s.Pool.Start(s.Ctx, job))
	page := string(h.Snapshot().Page)
	c.Check(strings.Contains(page, "<script>"), check.Equals, false)
	c.Check(strings.Contains(page, "javascript:"), check.Equals, false)
	c.Check(strings.Contains(page, `class="count"`), check.Equals, true)
}

func (s *Suite) TestJobsOrder(c *check.C) {
	first := s.Pool.Start(s.Ctx, &counter{})
	second := s.Pool.Start(s.Ctx, NewMonitor(s.Clock.Now()))
	jobs := s.Pool.Jobs()
	c.Assert(jobs, check.HasLen, 2)
	c.Check(jobs[0].ID, check.Equals, first)
	c.Check(jobs[1].ID, check.Equals, second)
	c.Check(jobs[1].Name, check.Equals, "monitor")
	c.Check(jobs[1].Runs, check.Equals, 1)
	c.Check(first, check.Not(check.Equals), second)
	c.Check(s.Pool.Get("no-such-job"), check.IsNil)
}

func (s *Suite) TestStop(c *check.C) {
	job := &counter{}
	h := s.Pool.Get(s.Pool.Start(s.Ctx, job))
	s.Cancel()
	s.Pool.Wait()
	runs := h.Snapshot().Runs
	s.Clock.Add(10 * s.Pool.Interval)
	c.Check(h.Snapshot().Runs, check.Equals, runs)
}

// TestSnapshotConsistent reads snapshots while the job publishes;
// the page and run count must always agree.
func (s *Suite) TestSnapshotConsistent(c *check.C) {
	job := &counter{}
	h := s.Pool.Get(s.Pool.Start(s.Ctx, job))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			s.Clock.Add(s.Pool.Interval)
		}
	}()
	for {
		snap := h.Snapshot()
		c.Assert(string(snap.Page), check.Equals, fmt.Sprintf(`<p class="count">%d</p>`, snap.Runs))
		select {
		case <-done:
			return
		default:
		}
	}
}

func (s *Suite) TestMonitor(c *check.C) {
	started := s.Clock.Now()
	s.Clock.Add(90 * time.Second)
	monitor := NewMonitor(started, Probe{Name: "Rules", Read: func() string { return "<3>" }})
	page, err := monitor.Step(s.Clock.Now())
	c.Assert(err, check.IsNil)
	c.Check(strings.Contains(string(page), "<th>Uptime</th><td>1m30s</td>"), check.Equals, true)
	c.Check(strings.Contains(string(page), "Goroutines"), check.Equals, true)
	c.Check(strings.Contains(string(page), "<th>Rules</th><td>&lt;3&gt;</td>"), check.Equals, true)
}
