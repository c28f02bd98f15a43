package apispec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	YAMLFileName = "open-api.yml"
	JSONFileName = "open-api.json"
)

var (
	ErrMissingSource   = errors.New("missing openapi source document")
	ErrInvalidDocument = errors.New("openapi document root is not a mapping")
)

// Document is the decoded root of an OpenAPI description. It is never
// modified after construction.
type Document struct {
	root *Map
}

func NewDocument(root any) (*Document, error) {
	m, ok := root.(*Map)
	if !ok {
		return nil, ErrInvalidDocument
	}
	return &Document{root: m}, nil
}

func (d *Document) Root() *Map {
	return d.root
}

// Paths returns the paths section, or nil when it is absent or malformed.
func (d *Document) Paths() *Map {
	return d.root.Map("paths")
}

// ReadDocument loads open-api.yml from dir, falling back to open-api.json.
func ReadDocument(dir string) (*Document, error) {
	yamlPath := filepath.Join(dir, YAMLFileName)
	if bs, err := os.ReadFile(yamlPath); err == nil {
		return parseDocument(yamlPath, bs, ParseYAMLBytes)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	jsonPath := filepath.Join(dir, JSONFileName)
	if bs, err := os.ReadFile(jsonPath); err == nil {
		return parseDocument(jsonPath, bs, ParseJSONBytes)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: expected one of %s, %s in %s", ErrMissingSource, YAMLFileName, JSONFileName, dir)
}

func parseDocument(path string, bs []byte, parse func([]byte) (any, error)) (*Document, error) {
	root, err := parse(bs)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc, err := NewDocument(root)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
