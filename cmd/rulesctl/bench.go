// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/satori/go.uuid"
	"github.com/urfave/cli"
)

// bench runs runner on concurrency goroutines and waits for them all.
func bench(concurrency int, runner func()) {
	wg := sync.WaitGroup{}
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
}

var benchCmd = cli.Command{
	Name:  "bench",
	Usage: "generate load: add many rules while matching",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of rules to add",
		},
		cli.IntFlag{
			Name:  "matches",
			Value: 10,
			Usage: "number of match requests per rule added",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many clients in parallel",
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		matches := c.Int("matches")
		numbers := make(chan int)
		go func() {
			for i := 1; i <= count; i++ {
				numbers <- i
			}
			close(numbers)
		}()

		var requests, failures int64
		start := time.Now()
		bench(c.Int("concurrency"), func() {
			for <-numbers != 0 {
				word := uuid.NewV4().String()
				_, err := client.AddRule("bench", word)
				atomic.AddInt64(&requests, 1)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				for i := 0; i < matches; i++ {
					_, err = client.Match("some text with " + word)
					atomic.AddInt64(&requests, 1)
					if err != nil {
						atomic.AddInt64(&failures, 1)
					}
				}
			}
		})
		elapsed := time.Since(start)
		fmt.Fprintf(c.App.Writer, "%d requests, %d failed, %v (%.1f/s)\n",
			requests, failures, elapsed.Truncate(time.Millisecond),
			float64(requests)/elapsed.Seconds())
		return nil
	},
}
