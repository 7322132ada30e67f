package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentVersion is the version of the JSON exchange document.
const DocumentVersion = 1

const schemaURL = "profiles-v1.schema.json"

//go:embed profiles.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Document is the JSON form used to import and export profiles.
type Document struct {
	Version  int                 `json:"version"`
	Profiles map[string]CellList `json:"profiles"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// ValidateDocument checks raw JSON against the document schema.
func ValidateDocument(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("invalid profile document: %w", err)
	}
	return nil
}

// ReadDocument validates and decodes a profile document.
func ReadDocument(r io.Reader) (Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return FromMap(doc.Profiles), nil
}

// WriteDocument encodes the non-empty profiles of s.
func WriteDocument(w io.Writer, s Set) error {
	doc := Document{Version: DocumentVersion, Profiles: s.ToMap()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
