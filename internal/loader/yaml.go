package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlDocument mirrors the CUE layout: a top-level "model" mapping.
type yamlDocument struct {
	Model map[string]yamlModel `yaml:"model"`
}

type yamlModel struct {
	Table          string               `yaml:"table"`
	Abstract       bool                 `yaml:"abstract,omitempty"`
	PrimaryKey     []string             `yaml:"primary_key,omitempty"`
	Parent         string               `yaml:"parent,omitempty"`
	OnDelete       string               `yaml:"on_delete,omitempty"`
	InheritIndices *bool                `yaml:"inherit_indices,omitempty"`
	Bases          []string             `yaml:"bases,omitempty"`
	Fields         map[string]yamlField `yaml:"fields"`
	Indices        []yamlIndex          `yaml:"indices,omitempty"`
}

type yamlField struct {
	Type     string `yaml:"type"`
	Length   int    `yaml:"length,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

type yamlIndex struct {
	Name         string   `yaml:"name"`
	Columns      []string `yaml:"columns"`
	Unique       bool     `yaml:"unique,omitempty"`
	Storing      []string `yaml:"storing,omitempty"`
	InterleaveIn string   `yaml:"interleave_in,omitempty"`
}

// loadYAMLFile reads and parses one YAML definitions file.
func loadYAMLFile(path string) ([]ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(ErrCodeLoadFailed, Position{File: path}, "failed to read file: %v", err)
	}
	return ParseYAML(path, data)
}

// ParseYAML parses model definitions from YAML. Unknown keys are rejected.
// Models and their fields keep the order in which they appear in the
// document. An empty document yields no models.
func ParseYAML(filename string, data []byte) ([]ModelSpec, error) {
	// Strict decode validates every key and value type
	var doc yamlDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, yamlError(filename, err)
	}

	// Mappings lose their order in Go maps; recover it from the node tree
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlError(filename, err)
	}
	modelsNode := mappingValue(documentRoot(&root), "model")
	if modelsNode == nil {
		return nil, nil
	}

	var models []ModelSpec
	for i := 0; i+1 < len(modelsNode.Content); i += 2 {
		keyNode, valNode := modelsNode.Content[i], modelsNode.Content[i+1]
		name := keyNode.Value
		ym := doc.Model[name]

		m := ModelSpec{
			Name:           name,
			Table:          ym.Table,
			Abstract:       ym.Abstract,
			PrimaryKey:     ym.PrimaryKey,
			Parent:         ym.Parent,
			OnDelete:       ym.OnDelete,
			InheritIndices: ym.InheritIndices == nil || *ym.InheritIndices,
			Bases:          ym.Bases,
			Pos:            yamlPosition(filename, keyNode),
		}

		fieldsNode := mappingValue(valNode, "fields")
		if fieldsNode != nil {
			for j := 0; j+1 < len(fieldsNode.Content); j += 2 {
				fk := fieldsNode.Content[j]
				yf := ym.Fields[fk.Value]
				pos := yamlPosition(filename, fk)
				if yf.Type == "" {
					return nil, loadErr(ErrCodeInvalidValue, pos, "model.%s.fields.%s: type is required", name, fk.Value)
				}
				m.Fields = append(m.Fields, FieldSpec{
					Name:     fk.Value,
					Type:     yf.Type,
					Length:   yf.Length,
					Nullable: yf.Nullable,
					Pos:      pos,
				})
			}
		}

		indicesNode := mappingValue(valNode, "indices")
		for j, yi := range ym.Indices {
			pos := m.Pos
			if indicesNode != nil && j < len(indicesNode.Content) {
				pos = yamlPosition(filename, indicesNode.Content[j])
			}
			m.Indices = append(m.Indices, IndexSpec{
				Name:         yi.Name,
				Columns:      yi.Columns,
				Unique:       yi.Unique,
				Storing:      yi.Storing,
				InterleaveIn: yi.InterleaveIn,
				Pos:          pos,
			})
		}

		models = append(models, m)
	}
	return models, nil
}

func documentRoot(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func yamlPosition(filename string, n *yaml.Node) Position {
	return Position{File: filename, Line: n.Line, Column: n.Column}
}

// yamlError converts a decoder error into a LoadError. Unknown-field
// errors from KnownFields get their own code.
func yamlError(filename string, err error) error {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg := typeErr.Errors[0]
		code := ErrCodeInvalidValue
		if strings.Contains(msg, "not found in type") {
			code = ErrCodeUnknownKey
		}
		return &LoadError{Code: code, Message: msg, Pos: Position{File: filename}}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to parse YAML: %v", err), Pos: Position{File: filename}}
}
