package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_StaleDeliveryIgnored(t *testing.T) {
	d := newDebouncer(time.Hour)
	defer d.stop()

	ctx := context.Background()

	d.touch(ctx, "a.pdf")
	d.touch(ctx, "a.pdf")

	assert.False(t, d.settle(settled{path: "a.pdf", gen: 1}))
	assert.True(t, d.settle(settled{path: "a.pdf", gen: 2}))
	assert.False(t, d.settle(settled{path: "a.pdf", gen: 2}))
	assert.False(t, d.settle(settled{path: "b.pdf", gen: 2}))
}

func TestDebouncer_OneSettlePerWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newDebouncer(10 * time.Millisecond)
	defer d.stop()

	for range 5 {
		d.touch(ctx, "a.pdf")
	}

	d.touch(ctx, "b.pdf")

	got := map[string]int{}
	deadline := time.After(300 * time.Millisecond)

	for {
		select {
		case s := <-d.ready:
			if d.settle(s) {
				got[s.path]++
			}

			continue
		case <-deadline:
		}

		break
	}

	require.Len(t, got, 2)
	assert.Equal(t, 1, got["a.pdf"])
	assert.Equal(t, 1, got["b.pdf"])
}
