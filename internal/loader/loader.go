// Package loader reads declarative model definitions and composes them
// into a registry.
//
// Definitions live in a directory of CUE files (one package, built with
// the CUE Go API) and/or YAML files. Both formats share one layout:
//
//	model: Album: {
//		table:       "albums"
//		parent:      "Singer"
//		primary_key: ["album_id"]
//		fields: {
//			album_id: {type: "INT64"}
//			title:    {type: "STRING", length: 1024, nullable: true}
//		}
//		indices: [{name: "by_title", columns: ["title"], storing: ["album_id"]}]
//	}
//
// parent and bases name other models. Models are composed after the
// models they reference, whatever order the files declare them in.
package loader

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/strata/internal/registry"
	"github.com/roach88/strata/internal/schema"
)

// Result contains the outcome of loading a definitions directory.
type Result struct {
	// Models are the parsed definitions in source order.
	Models []ModelSpec
	// Schemas are the composed models in composition order, abstract
	// models included.
	Schemas []*schema.Schema
	// Registry holds every non-abstract schema.
	Registry  *registry.Registry
	FileCount int
}

// Schema returns the composed schema for a model name.
func (r *Result) Schema(name string) (*schema.Schema, bool) {
	for _, s := range r.Schemas {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

type config struct {
	logger   *slog.Logger
	registry *registry.Registry
}

// Option configures Load.
type Option func(*config)

// WithLogger sets the loader logger. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry registers loaded schemas into an existing registry instead
// of a new one.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// Load reads every definition file in dir, composes the models and
// registers them. Loading stops at the first error.
func Load(dir string, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = registry.New(registry.WithLogger(cfg.logger))
	}

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, loadErr(ErrCodeNotFound, Position{}, "models directory not found: %s", dir)
	}
	if err != nil {
		return nil, loadErr(ErrCodeNotFound, Position{}, "error accessing models directory: %v", err)
	}
	if !info.IsDir() {
		return nil, loadErr(ErrCodeNotFound, Position{}, "not a directory: %s", dir)
	}

	cueFiles, yamlFiles, err := FindFiles(dir)
	if err != nil {
		return nil, loadErr(ErrCodeScanError, Position{}, "error scanning directory: %v", err)
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, loadErr(ErrCodeNoFiles, Position{}, "no CUE or YAML files found in %s", dir)
	}

	var models []ModelSpec
	if len(cueFiles) > 0 {
		cueModels, err := loadCUE(dir)
		if err != nil {
			return nil, err
		}
		models = append(models, cueModels...)
	}
	for _, path := range yamlFiles {
		yamlModels, err := loadYAMLFile(path)
		if err != nil {
			return nil, err
		}
		models = append(models, yamlModels...)
	}
	cfg.logger.Debug("parsed model definitions",
		"dir", dir,
		"cue_files", len(cueFiles),
		"yaml_files", len(yamlFiles),
		"models", len(models))

	schemas, err := Resolve(models, cfg.registry)
	if err != nil {
		return nil, err
	}

	return &Result{
		Models:    models,
		Schemas:   schemas,
		Registry:  cfg.registry,
		FileCount: len(cueFiles) + len(yamlFiles),
	}, nil
}

// FindFiles returns the CUE and YAML files directly inside dir, sorted by
// name. Subdirectories are not searched; a CUE package is one directory.
func FindFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch filepath.Ext(e.Name()) {
		case ".cue":
			cueFiles = append(cueFiles, path)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
	}
	return cueFiles, yamlFiles, nil
}

// Resolve composes models in reference order and registers each
// non-abstract result in reg. The returned schemas are in composition
// order.
func Resolve(models []ModelSpec, reg *registry.Registry) ([]*schema.Schema, error) {
	if len(models) == 0 {
		return nil, loadErr(ErrCodeNoModels, Position{}, "no models defined")
	}

	byName := make(map[string]ModelSpec, len(models))
	for _, m := range models {
		if prev, dup := byName[m.Name]; dup {
			return nil, loadErr(ErrCodeDuplicate, m.Pos, "model %s already defined at %s", m.Name, prev.Pos)
		}
		byName[m.Name] = m
	}
	for _, m := range models {
		for _, ref := range m.references() {
			if _, ok := byName[ref]; !ok {
				return nil, loadErr(ErrCodeUnknownRef, m.Pos, "model %s references undefined model %s", m.Name, ref)
			}
		}
	}

	graph := buildRefGraph(models)
	order, cycle := graph.compositionOrder()
	if cycle != nil {
		return nil, loadErr(ErrCodeRefCycle, byName[cycle[0]].Pos,
			"reference cycle: %s", formatCycle(cycle))
	}

	resolved := make(map[string]*schema.Schema, len(order))
	schemas := make([]*schema.Schema, 0, len(order))
	for _, name := range order {
		m := byName[name]
		def, err := m.definition(resolved)
		if err != nil {
			return nil, err
		}
		s, err := schema.Compose(def)
		if err != nil {
			return nil, wrapSchemaErr(err, m.Pos)
		}
		if err := reg.Register(s); err != nil {
			return nil, wrapSchemaErr(err, m.Pos)
		}
		resolved[name] = s
		schemas = append(schemas, s)
	}
	return schemas, nil
}
