package main

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"
)

type phaseStats struct {
	name     string
	wall     time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	max      time.Duration
}

func (s phaseStats) throughput() float64 {
	if s.wall <= 0 {
		return 0
	}
	return float64(s.ops) / s.wall.Seconds()
}

// runPhase runs op ops times across concurrency workers. i is the global
// operation index; each index runs exactly once. Failed operations are
// counted, not retried.
func runPhase(name string, ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	concurrency = max(concurrency, 1)

	var (
		next     atomic.Int64
		failures atomic.Int64
		g        errgroup.Group
	)
	perWorker := make([][]time.Duration, concurrency)

	start := time.Now()
	for w := range concurrency {
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)*7919))
			samples := make([]time.Duration, 0, ops/concurrency+1)
			for {
				i := int(next.Add(1)) - 1
				if i >= ops {
					break
				}
				t0 := time.Now()
				if err := op(r, i); err != nil {
					failures.Add(1)
				}
				samples = append(samples, time.Since(t0))
			}
			perWorker[w] = samples
			return nil
		})
	}
	_ = g.Wait()

	return summarize(name, time.Since(start), slices.Concat(perWorker...), failures.Load())
}

func summarize(name string, wall time.Duration, samples []time.Duration, failures int64) phaseStats {
	s := phaseStats{name: name, wall: wall, ops: len(samples), failures: failures}
	if len(samples) == 0 {
		return s
	}
	slices.Sort(samples)
	s.p50 = percentile(samples, 50)
	s.p95 = percentile(samples, 95)
	s.p99 = percentile(samples, 99)
	s.max = samples[len(samples)-1]
	return s
}

// percentile expects sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 100)
	return sorted[(len(sorted)-1)*p/100]
}

func writeReport(w io.Writer, phases ...phaseStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "phase\tops\tfailed\twall\tops/s\tp50\tp95\tp99\tmax\t")
	for _, s := range phases {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.0f\t%s\t%s\t%s\t%s\t\n",
			s.name, s.ops, s.failures,
			s.wall.Round(time.Millisecond),
			s.throughput(),
			s.p50.Round(time.Microsecond),
			s.p95.Round(time.Microsecond),
			s.p99.Round(time.Microsecond),
			s.max.Round(time.Microsecond),
		)
	}
	return tw.Flush()
}
