// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldvm"
	"golang.org/x/sync/errgroup"
	"zombiezen.com/go/log"
)

// Options is the set of parameters to [Render].
type Options struct {
	// Workers is the maximum number of goroutines that evaluate rows.
	// If zero, runtime.GOMAXPROCS(0) is used.
	Workers int
	// Checked evaluates every cell with [fieldvm.Machine.EvalChecked]
	// and logs a summary of any faults at debug level.
	Checked bool
}

func (opts *Options) workers() int {
	if opts == nil || opts.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return opts.Workers
}

// Render evaluates prog once for every cell in bounds,
// mapping cells to coordinates with grid.
// Cells are evaluated concurrently in no particular order.
// Render only returns an error if the grid is invalid
// or ctx is canceled before every row is evaluated.
func Render(ctx context.Context, prog *fieldcode.Program, grid Grid, bounds image.Rectangle, opts *Options) (*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("render: %v", err)
	}
	start := time.Now()
	f := NewField(bounds)
	bounds = f.Rect
	workers := min(opts.workers(), max(bounds.Dy(), 1))
	checked := opts != nil && opts.Checked

	var nextRow atomic.Int64
	var faults faultSummary
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for range workers {
		grp.Go(func() error {
			m := fieldvm.New(prog)
			for {
				if err := grpCtx.Err(); err != nil {
					return err
				}
				y := bounds.Min.Y + int(nextRow.Add(1)-1)
				if y >= bounds.Max.Y {
					return nil
				}
				row := f.row(y)
				for i := range row {
					cx, cy := grid.Coord(bounds.Min.X+i, y)
					if !checked {
						row[i] = m.Eval(cx, cy)
						continue
					}
					var err error
					row[i], err = m.EvalChecked(cx, cy)
					if err != nil {
						faults.add(err)
					}
				}
			}
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if n, first := faults.get(); n > 0 {
		log.Debugf(ctx, "%d of %d cells faulted; first: %v", n, bounds.Dx()*bounds.Dy(), first)
	}
	log.Debugf(ctx, "Rendered %v cells on %v in %v (%d workers)", bounds.Size(), grid, time.Since(start), workers)
	return f, nil
}

type faultSummary struct {
	mu    sync.Mutex
	n     int
	first error
}

func (s *faultSummary) add(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n == 0 {
		s.first = err
	}
	s.n++
}

func (s *faultSummary) get() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n, s.first
}
