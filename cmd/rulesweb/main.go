// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package rulesweb serves a bag-of-words rule model over HTTP.  Each
// resource answers browsers with an HTML page and its input forms,
// and programs with JSON.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diffeo/go-rulesweb/backend"
	"github.com/diffeo/go-rulesweb/jobs"
	"github.com/diffeo/go-rulesweb/rest"
	"github.com/diffeo/go-rulesweb/restserver"
	"github.com/diffeo/go-rulesweb/rules"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "rulesweb"
	app.Usage = "serve a rule model over HTTP"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "http",
			Value:  ":5980",
			Usage:  "[ip]:port for HTTP interface",
			EnvVar: "RULESWEB_HTTP",
		},
		cli.GenericFlag{
			Name:   "backend",
			Value:  &backend.Backend{Implementation: "memory"},
			Usage:  "impl[:address] of the model store",
			EnvVar: "RULESWEB_BACKEND",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "minimum level of log messages",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this file, rotated daily",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
		cli.DurationFlag{
			Name:  "monitor-interval",
			Value: 5 * time.Second,
			Usage: "time between monitoring job updates",
		},
		cli.IntFlag{
			Name:  "match-cache-size",
			Value: restserver.DefaultMatchCacheSize,
			Usage: "number of match results to cache",
		},
		cli.Int64Flag{
			Name:  "max-upload-bytes",
			Value: rest.DefaultMaxUploadBytes,
			Usage: "largest accepted model upload",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("rulesweb failed")
	}
}

// settings is the merged result of flags and the configuration file.
type settings struct {
	HTTP            string
	Backend         *backend.Backend
	LogLevel        string
	LogFile         string
	LogRequests     bool
	MonitorInterval time.Duration
	MatchCacheSize  int
	MaxUploadBytes  int64
	Title           string
}

// loadSettings reads the flags, using values from the configuration
// file for flags that were not given explicitly, and checks the
// result.
func loadSettings(c *cli.Context) (settings, error) {
	s := settings{
		HTTP:            c.String("http"),
		Backend:         c.Generic("backend").(*backend.Backend),
		LogLevel:        c.String("log-level"),
		LogFile:         c.String("log-file"),
		LogRequests:     c.Bool("log-requests"),
		MonitorInterval: c.Duration("monitor-interval"),
		MatchCacheSize:  c.Int("match-cache-size"),
		MaxUploadBytes:  c.Int64("max-upload-bytes"),
	}
	if c.String("config") == "" {
		return s, s.check()
	}
	file, err := loadConfigYaml(c.String("config"))
	if err != nil {
		return s, fmt.Errorf("%v: %v", c.String("config"), err)
	}
	if file.HTTP != "" && !c.IsSet("http") {
		s.HTTP = file.HTTP
	}
	if file.Backend != "" && !c.IsSet("backend") {
		if err = s.Backend.Set(file.Backend); err != nil {
			return s, err
		}
	}
	if file.LogLevel != "" && !c.IsSet("log-level") {
		s.LogLevel = file.LogLevel
	}
	if file.LogFile != "" && !c.IsSet("log-file") {
		s.LogFile = file.LogFile
	}
	if file.LogRequests && !c.IsSet("log-requests") {
		s.LogRequests = true
	}
	if file.MonitorInterval != 0 && !c.IsSet("monitor-interval") {
		s.MonitorInterval = file.MonitorInterval
	}
	if file.MatchCacheSize != 0 && !c.IsSet("match-cache-size") {
		s.MatchCacheSize = file.MatchCacheSize
	}
	if file.MaxUploadBytes != 0 && !c.IsSet("max-upload-bytes") {
		s.MaxUploadBytes = file.MaxUploadBytes
	}
	s.Title = file.Title
	return s, s.check()
}

// check rejects settings that cannot be used.
func (s settings) check() error {
	if s.MonitorInterval < 0 {
		return fmt.Errorf("monitor-interval must not be negative, got %v", s.MonitorInterval)
	}
	if s.MatchCacheSize < 0 {
		return fmt.Errorf("match-cache-size must not be negative, got %d", s.MatchCacheSize)
	}
	if s.MaxUploadBytes < 0 {
		return fmt.Errorf("max-upload-bytes must not be negative, got %d", s.MaxUploadBytes)
	}
	return nil
}

func run(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	if err = setupLogging(s.LogLevel, s.LogFile); err != nil {
		return err
	}

	st, err := s.Backend.Store()
	if err != nil {
		return err
	}
	model := rules.NewModel(st)
	if err = model.Restore(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := &jobs.Pool{Interval: s.MonitorInterval}
	pool.Start(ctx, jobs.NewMonitor(time.Now(), modelProbes(model)...))

	config := restserver.Config{
		Model:          model,
		Jobs:           pool,
		Metrics:        rest.NewMetrics(prometheus.DefaultRegisterer),
		MatchCacheSize: s.MatchCacheSize,
		MaxUploadBytes: s.MaxUploadBytes,
		Title:          s.Title,
	}
	var reqLogger *logrus.Logger
	if s.LogRequests {
		reqLogger = requestLogger()
	}
	logrus.WithFields(logrus.Fields{
		"backend": s.Backend.Implementation,
	}).Info("Starting rulesweb")

	err = serveHTTP(ctx, s.HTTP, newHandler(config, reqLogger))
	stop()
	pool.Wait()
	return err
}

// modelProbes reports the size of the model on the monitor page.
func modelProbes(model *rules.Model) []jobs.Probe {
	return []jobs.Probe{
		{Name: "Rules", Read: func() string {
			model.RLock()
			defer model.RUnlock()
			return fmt.Sprint(model.Len())
		}},
		{Name: "Generation", Read: func() string {
			model.RLock()
			defer model.RUnlock()
			return fmt.Sprint(model.Generation())
		}},
	}
}
