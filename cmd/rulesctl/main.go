// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package rulesctl is a command-line client for a rulesweb server.
package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/diffeo/go-rulesweb/restclient"
	"github.com/diffeo/go-rulesweb/restdata"
	"github.com/diffeo/go-rulesweb/rules"
	"github.com/urfave/cli"
)

var client *restclient.Client

func printRules(w io.Writer, rs []restdata.Rule) {
	for _, rule := range rs {
		fmt.Fprintf(w, "%s : %s\n", rule.Label, rule.Pattern)
	}
}

var matchCmd = cli.Command{
	Name:      "match",
	Usage:     "print the rules matching some text",
	ArgsUsage: "text...",
	Action: func(c *cli.Context) error {
		result, err := client.Match(strings.Join(c.Args(), " "))
		if err != nil {
			return err
		}
		if len(result.Matches) == 0 {
			fmt.Fprintln(c.App.Writer, "no match")
		}
		printRules(c.App.Writer, result.Matches)
		return nil
	},
}

var addCmd = cli.Command{
	Name:      "add",
	Usage:     "add a rule",
	ArgsUsage: "label pattern... | 'label : pattern'",
	Action: func(c *cli.Context) error {
		var label, pattern string
		switch c.NArg() {
		case 0:
			return cli.NewExitError("need a label and a pattern", 2)
		case 1:
			rule, err := rules.ParseRule(c.Args().First())
			if err != nil {
				return err
			}
			label, pattern = rule.Label, rule.PatternString()
		default:
			label, pattern = c.Args().First(), strings.Join(c.Args().Tail(), " ")
		}
		result, err := client.AddRule(label, pattern)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, result.Result)
		return nil
	},
}

var rulesCmd = cli.Command{
	Name:  "rules",
	Usage: "list every rule",
	Action: func(c *cli.Context) error {
		result, err := client.Rules()
		if err != nil {
			return err
		}
		printRules(c.App.Writer, result.Rules)
		return nil
	},
}

var saveCmd = cli.Command{
	Name:      "save",
	Usage:     "download the serialized model",
	ArgsUsage: "file",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("need an output file", 2)
		}
		result, err := client.Model()
		if err == nil {
			err = ioutil.WriteFile(c.Args().First(), result.Model, 0644)
		}
		if err == nil {
			fmt.Fprintf(c.App.Writer, "saved %d rules\n", result.Rules)
		}
		return err
	},
}

var loadCmd = cli.Command{
	Name:      "load",
	Usage:     "replace the model with a serialized one",
	ArgsUsage: "file",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("need an input file", 2)
		}
		blob, err := ioutil.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		result, err := client.LoadModel(blob)
		if err == nil {
			fmt.Fprintf(c.App.Writer, "%s: %d rules\n", result.Result, result.Rules)
		}
		return err
	},
}

var jobsCmd = cli.Command{
	Name:  "jobs",
	Usage: "list the server's background jobs",
	Action: func(c *cli.Context) error {
		jobs, err := client.Jobs()
		if err != nil {
			return err
		}
		for _, job := range jobs {
			status := "ok"
			if job.Error != "" {
				status = job.Error
			}
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%d runs\t%s\n", job.ID, job.Name, job.Runs, status)
		}
		return nil
	},
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rulesctl"
	app.Usage = "talk to a rulesweb server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url",
			Value:  "http://localhost:5980/",
			Usage:  "base URL of the rulesweb server",
			EnvVar: "RULESWEB_URL",
		},
	}
	app.Commands = []cli.Command{
		matchCmd,
		addCmd,
		rulesCmd,
		saveCmd,
		loadCmd,
		jobsCmd,
		benchCmd,
	}
	app.Before = func(c *cli.Context) (err error) {
		client, err = restclient.New(c.String("url"))
		return
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
