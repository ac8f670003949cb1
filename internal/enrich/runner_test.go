package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadata-enricher/internal/errors"
)

func TestRunner_EnrichAll(t *testing.T) {
	st := bookStore(map[string]string{"a": "dune.pdf", "b": "Untitled.pdf", "c": "messiah.pdf"})
	runner := NewRunner(newOrchestrator(t, st, bookFetcher(t)), 2)

	refs := []string{"a", "missing", "b", "c"}
	outcomes := runner.EnrichAll(context.Background(), refs, Options{})

	require.Len(t, outcomes, len(refs))

	for i, o := range outcomes {
		assert.Equal(t, refs[i], o.Ref)
	}

	failed := Failed(outcomes)
	require.Len(t, failed, 1)
	assert.Equal(t, "missing", failed[0].Ref)
	assert.ErrorIs(t, failed[0].Err, errors.ErrEntityNotFound)

	for _, ref := range []string{"a", "b", "c"} {
		_, saved, ok := st.Snapshot(ref)
		require.True(t, ok)
		assert.Equal(t, []string{"Dune Messiah"}, saved.Strings("BOOK:title"), ref)
	}

	e, _, _ := st.Snapshot("b")
	assert.Equal(t, "Dune Messiah", e.Name)
}

func TestRunner_CancelledContext(t *testing.T) {
	st := bookStore(map[string]string{"a": "dune.pdf"})
	f := bookFetcher(t)
	runner := NewRunner(newOrchestrator(t, st, f), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := runner.EnrichAll(ctx, []string{"a", "a"}, Options{})

	require.Len(t, outcomes, 2)
	assert.Len(t, Failed(outcomes), 2)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
	assert.Empty(t, f.calls)
}
