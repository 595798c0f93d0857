// Package registry is the catalog of composed table schemas.
//
// A Registry is populated during single-threaded startup and read many
// times afterwards. It orders tables so an interleaved child is never
// created before its parent, and aggregates the DDL of every table in
// that order.
package registry

import (
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/strata/internal/ddl"
	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/schema"
)

// MaxPriority is the deepest supported interleave chain. Priorities fall
// into buckets 0..MaxPriority.
const MaxPriority = 9

// Registry maps table names to schemas, preserving registration order.
//
// Registration must be serialized by the host. The mutex only keeps reads
// during registration from racing.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Schema
	order   []*schema.Schema
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		schemas: make(map[string]*schema.Schema),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a composed schema.
//
// Abstract schemas are skipped. Registering the same schema twice is a
// no-op; registering a different schema under a taken table name, or a
// schema whose parent chain is deeper than MaxPriority, is a *ModelError.
func (r *Registry) Register(s *schema.Schema) error {
	if s == nil {
		return &schema.ModelError{Code: schema.ErrCodeInvalidParent, Message: "cannot register nil schema"}
	}
	if s.Abstract() {
		r.logger.Debug("skipping abstract schema", "model", s.Name())
		return nil
	}
	if depth := s.Depth(MaxPriority + 1); depth > MaxPriority {
		return &schema.ModelError{
			Code:    schema.ErrCodeInterleaveDepth,
			Model:   s.Name(),
			Message: "interleave chain is deeper than 9 levels",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.schemas[s.Table()]; ok {
		if existing == s {
			return nil
		}
		return &schema.ModelError{
			Code:    schema.ErrCodeTableCollision,
			Model:   s.Name(),
			Message: "table " + ddl.Quote(s.Table()) + " is already registered by " + existing.Name(),
		}
	}

	r.schemas[s.Table()] = s
	r.order = append(r.order, s)
	r.logger.Debug("registered schema",
		"model", s.Name(),
		"table", s.Table(),
		"priority", Priority(s))
	return nil
}

// Define composes a definition and registers the result.
func (r *Registry) Define(def schema.Definition) (*schema.Schema, error) {
	s, err := schema.Compose(def)
	if err != nil {
		return nil, err
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustDefine is like Define but panics on error.
func (r *Registry) MustDefine(def schema.Definition) *schema.Schema {
	s, err := r.Define(def)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the schema registered for a table.
func (r *Registry) Lookup(table string) (*schema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[table]
	return s, ok
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Reset removes every schema. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas = make(map[string]*schema.Schema)
	r.order = nil
}

// Priority returns the length of a schema's parent chain, capped at
// MaxPriority. Roots have priority 0.
func Priority(s *schema.Schema) int {
	return s.Depth(MaxPriority)
}

// Buckets groups schemas by priority. Within a bucket schemas keep their
// registration order.
func (r *Registry) Buckets() [MaxPriority + 1][]*schema.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buckets [MaxPriority + 1][]*schema.Schema
	for _, s := range r.order {
		p := Priority(s)
		buckets[p] = append(buckets[p], s)
	}
	return buckets
}

// Ordered returns every schema, parents before children.
func (r *Registry) Ordered() []*schema.Schema {
	var out []*schema.Schema
	for _, bucket := range r.Buckets() {
		out = append(out, bucket...)
	}
	return out
}

// CreateTableStatements returns CREATE TABLE and CREATE INDEX statements
// for every schema in creation order.
func (r *Registry) CreateTableStatements() []string {
	var stmts []string
	for _, s := range r.Ordered() {
		stmts = append(stmts, ddl.CreateStatements(s)...)
	}
	return stmts
}

// DropTableStatements returns DROP INDEX and DROP TABLE statements in the
// reverse of creation order, so children are dropped before parents.
func (r *Registry) DropTableStatements() []string {
	ordered := r.Ordered()
	slices.Reverse(ordered)

	var stmts []string
	for _, s := range ordered {
		stmts = append(stmts, ddl.DropStatements(s)...)
	}
	return stmts
}

// Fingerprint hashes the creation DDL. Registries that would emit the
// same DDL share a fingerprint.
func (r *Registry) Fingerprint() (string, error) {
	return ir.CatalogFingerprint(r.CreateTableStatements())
}
