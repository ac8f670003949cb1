// Package alias provides the bidirectional name table that translates local
// field names into service parameter names and back.
package alias

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/errors"
)

// Entry is one configured alias.
type Entry struct {
	Source        string `yaml:"source"`
	Target        string `yaml:"target"`
	Bidirectional bool   `yaml:"bidirectional"`
}

// Table maps names to names. It is built once with AddAlias and is read-only
// afterwards; Seal enforces that so the table can be shared between
// concurrent enrichment requests.
type Table struct {
	names   map[string]string
	entries []Entry
	diags   diagnostic.Diagnostics
	sealed  atomic.Bool
	logger  *slog.Logger
}

// New creates an empty table. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}

	return &Table{
		names:  make(map[string]string),
		logger: logger,
	}
}

// AddAlias inserts source -> target and, if bidir is set, target -> source.
//
// Mapping a name onto itself creates a single entry; the reverse entry is
// skipped with a diagnostic instead of failing. A source that is already
// mapped to a different target is a conflict. A reverse entry whose key is
// already mapped keeps the existing mapping and records a warning, so several
// local fields may feed the same service parameter.
func (t *Table) AddAlias(source, target string, bidir bool) error {
	if t.sealed.Load() {
		return errors.WrapConfiguration(errors.ErrAliasTableSealed, "AliasTable", "AddAlias", source+" -> "+target)
	}

	if source == "" || target == "" {
		return errors.WrapConfiguration(
			fmt.Errorf("%w: empty alias name", errors.ErrInvalidConfig),
			"AliasTable", "AddAlias", "validate names")
	}

	if err := t.insert(source, target); err != nil {
		t.logger.Error("error adding mapping", "source", source, "target", target, "error", err)
		return err
	}

	t.entries = append(t.entries, Entry{Source: source, Target: target, Bidirectional: bidir})

	if !bidir {
		return nil
	}

	if source == target {
		msg := fmt.Sprintf("bidirectional mapping for identical names %q requested, reverse entry skipped", source)
		t.diags.AddInfo(diagnostic.CodeSelfAlias, msg, "alias", source)
		t.logger.Debug(msg)

		return nil
	}

	if existing, ok := t.names[target]; ok && existing != source {
		msg := fmt.Sprintf("reverse alias %q -> %q kept, %q not added", target, existing, source)
		t.diags.AddWarning(diagnostic.CodeReverseAliasExists, msg, "alias", target)
		t.logger.Debug(msg)

		return nil
	}

	t.names[target] = source

	return nil
}

func (t *Table) insert(key, value string) error {
	if existing, ok := t.names[key]; ok {
		if existing == value {
			return nil
		}

		return errors.WrapMapping(
			fmt.Errorf("%w: %q already maps to %q, not %q", errors.ErrAliasConflict, key, existing, value),
			"AliasTable", "AddAlias", "insert")
	}

	t.names[key] = value

	return nil
}

// ResolveAlias returns the name mapped to name, or def if there is none.
func (t *Table) ResolveAlias(name, def string) string {
	if v, ok := t.names[name]; ok {
		return v
	}

	return def
}

// Lookup returns the name mapped to name and whether one exists.
func (t *Table) Lookup(name string) (string, bool) {
	v, ok := t.names[name]
	return v, ok
}

// Len returns the number of lookup keys in the table.
func (t *Table) Len() int {
	return len(t.names)
}

// IsEmpty reports whether no aliases were configured.
func (t *Table) IsEmpty() bool {
	return len(t.names) == 0
}

// Entries returns the aliases in the order they were added.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Diagnostics returns the observations collected while building the table.
func (t *Table) Diagnostics() diagnostic.Diagnostics {
	return t.diags
}

// Seal makes the table read-only. Later AddAlias calls fail.
func (t *Table) Seal() {
	t.sealed.Store(true)
}

// Sealed reports whether Seal was called.
func (t *Table) Sealed() bool {
	return t.sealed.Load()
}
