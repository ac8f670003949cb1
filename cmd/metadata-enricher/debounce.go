package main

import (
	"context"
	"time"
)

// settled reports that a path has been quiet for the settle period.
type settled struct {
	path string
	gen  uint64
}

// debouncer delays work on a path until writes to it stop. Its methods are
// called from one goroutine; the timers only send on ready.
type debouncer struct {
	delay   time.Duration
	ready   chan settled
	gen     uint64
	pending map[string]uint64
	timers  map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		ready:   make(chan settled),
		pending: make(map[string]uint64),
		timers:  make(map[string]*time.Timer),
	}
}

// touch restarts the quiet period of path. A timer that already fired is
// superseded by the new generation and its delivery is ignored by settle.
func (d *debouncer) touch(ctx context.Context, path string) {
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}

	d.gen++
	gen := d.gen

	d.pending[path] = gen
	d.timers[path] = time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- settled{path: path, gen: gen}:
		case <-ctx.Done():
		}
	})
}

// settle reports whether s is the latest generation of its path and, if so,
// forgets the path.
func (d *debouncer) settle(s settled) bool {
	if gen, ok := d.pending[s.path]; !ok || gen != s.gen {
		return false
	}

	delete(d.pending, s.path)
	delete(d.timers, s.path)

	return true
}

func (d *debouncer) stop() {
	for _, t := range d.timers {
		t.Stop()
	}
}
