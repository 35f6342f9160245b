// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

// fileConfig is the YAML configuration file.  Every setting is
// optional, and an explicit command-line flag overrides it.
type fileConfig struct {
	HTTP            string        `yaml:"http"`
	Backend         string        `yaml:"backend"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`
	LogRequests     bool          `yaml:"log_requests"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	MatchCacheSize  int           `yaml:"match_cache_size"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	Title           string        `yaml:"title"`
}

func loadConfigYaml(filename string) (fileConfig, error) {
	var result fileConfig
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.UnmarshalStrict(bytes, &result)
	}
	return result, err
}
