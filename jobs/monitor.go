// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package jobs

import (
	"bytes"
	"fmt"
	"html/template"
	"runtime"
	"time"
)

// Probe reports one named value on the monitor page.  Read is called
// from the monitor's goroutine and must do its own locking.
type Probe struct {
	Name string
	Read func() string
}

// Monitor is a job that reports process health and a set of probes.
type Monitor struct {
	// Started is the time the process started.
	Started time.Time

	// Probes are extra values to report.
	Probes []Probe
}

// NewMonitor creates a monitor job.
func NewMonitor(started time.Time, probes ...Probe) *Monitor {
	return &Monitor{Started: started, Probes: probes}
}

var monitorTemplate = template.Must(template.New("monitor").Parse(
	`<table class="table table-condensed">` +
		`{{range .}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>{{end}}` +
		`</table>`))

type monitorRow struct {
	Name  string
	Value string
}

// Name returns "monitor".
func (m *Monitor) Name() string {
	return "monitor"
}

// Step renders the current process statistics.
func (m *Monitor) Step(now time.Time) (template.HTML, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	rows := []monitorRow{
		{"Uptime", now.Sub(m.Started).Truncate(time.Second).String()},
		{"Goroutines", fmt.Sprint(runtime.NumGoroutine())},
		{"Heap", fmt.Sprintf("%d KiB", mem.HeapAlloc/1024)},
		{"GC runs", fmt.Sprint(mem.NumGC)},
	}
	for _, probe := range m.Probes {
		rows = append(rows, monitorRow{probe.Name, probe.Read()})
	}
	var buf bytes.Buffer
	if err := monitorTemplate.Execute(&buf, rows); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
