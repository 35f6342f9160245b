// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// setupLogging sets the global log level and, if filename is not
// empty, also writes every log entry to a file rotated daily.
func setupLogging(level, filename string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	if filename == "" {
		return nil
	}

	writer, err := rotatelogs.New(
		filename+".%Y%m%d",
		rotatelogs.WithLinkName(filename),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return err
	}
	logrus.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.JSONFormatter{}))
	return nil
}

// requestLogger returns a logger for HTTP requests that logs at debug
// level regardless of the global level.
func requestLogger() *logrus.Logger {
	stdlog := logrus.StandardLogger()
	return &logrus.Logger{
		Out:       stdlog.Out,
		Formatter: stdlog.Formatter,
		Hooks:     stdlog.Hooks,
		Level:     logrus.DebugLevel,
	}
}
