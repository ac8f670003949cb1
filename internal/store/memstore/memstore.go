// Package memstore is an in-memory metadata store.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/record"
	"metadata-enricher/internal/store"
)

type entity struct {
	name     string
	mimeType string
	attrs    *record.Record
}

// Store keeps entities and per-MIME type registries in memory. It is safe
// for concurrent use.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*entity
	types    map[string]convert.Registry
	filter   store.Filter
}

// Option configures a Store.
type Option func(*Store)

// WithFilter replaces the internal attribute filter.
func WithFilter(f store.Filter) Option {
	return func(s *Store) { s.filter = f }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entities: make(map[string]*entity),
		types:    make(map[string]convert.Registry),
		filter:   store.DefaultFilter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Put adds or replaces an entity. attrs is copied.
func (s *Store) Put(e store.Entity, attrs *record.Record) {
	if attrs == nil {
		attrs = record.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[e.Ref] = &entity{name: e.Name, mimeType: e.MimeType, attrs: attrs.Clone()}
}

// SetTypes registers the expected kinds for a MIME type.
func (s *Store) SetTypes(mimeType string, reg convert.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.types[mimeType] = copyRegistry(reg)
}

// Snapshot returns a copy of the stored entity and its raw attributes,
// internal ones included.
func (s *Store) Snapshot(ref string) (store.Entity, *record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[ref]
	if !ok {
		return store.Entity{}, nil, false
	}

	return store.Entity{Ref: ref, Name: e.name, MimeType: e.mimeType}, e.attrs.Clone(), true
}

// ReadRecord returns the visible attributes plus the name pseudo-field.
func (s *Store) ReadRecord(_ context.Context, ref string) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(ref, "ReadRecord")
	if err != nil {
		return nil, err
	}

	return s.filter.View(e.attrs, e.name), nil
}

// WriteRecord stores the fields of rec; with overwrite unset existing
// attributes are kept.
func (s *Store) WriteRecord(_ context.Context, ref string, rec *record.Record, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(ref, "WriteRecord")
	if err != nil {
		return err
	}

	for _, f := range store.Plan(rec, overwrite, e.attrs.Has) {
		if err := e.attrs.Replace(f.Name, f.Values...); err != nil {
			return errors.WrapPersist(err, "MemStore", "WriteRecord", "write "+f.Name)
		}
	}

	return nil
}

// TypeRegistryFor returns the registry of the entity's MIME type. Unknown
// MIME types yield an empty registry.
func (s *Store) TypeRegistryFor(_ context.Context, ref string) (convert.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(ref, "TypeRegistryFor")
	if err != nil {
		return nil, err
	}

	return copyRegistry(s.types[e.mimeType]), nil
}

// Rename changes the entity's name.
func (s *Store) Rename(_ context.Context, ref, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(ref, "Rename")
	if err != nil {
		return err
	}

	if strings.TrimSpace(newName) == "" || strings.ContainsRune(newName, '/') {
		return errors.WrapPersist(fmt.Errorf("%w: invalid name %q", errors.ErrBadValue, newName),
			"MemStore", "Rename", "validate name")
	}

	e.name = newName

	return nil
}

func (s *Store) lookup(ref, method string) (*entity, error) {
	e, ok := s.entities[ref]
	if !ok {
		return nil, errors.WrapPersist(fmt.Errorf("%w: %s", errors.ErrEntityNotFound, ref),
			"MemStore", method, "lookup entity")
	}

	return e, nil
}

func copyRegistry(reg convert.Registry) convert.Registry {
	out := make(convert.Registry, len(reg))
	for k, v := range reg {
		out[k] = v
	}

	return out
}
