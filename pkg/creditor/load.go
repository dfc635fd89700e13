package creditor

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed creditors.yaml
var builtinFS embed.FS

// registryFile is the on-disk layout of a creditor registry.
type registryFile struct {
	Creditors []Entry `yaml:"creditors"`
}

// LoadEntries decodes a YAML creditor registry.
func LoadEntries(r io.Reader) ([]Entry, error) {
	var file registryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing creditor registry: %w", err)
	}
	return file.Creditors, nil
}

// BuiltinEntries returns the embedded seed registry of major US creditors.
func BuiltinEntries() ([]Entry, error) {
	data, err := builtinFS.ReadFile("creditors.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded registry: %w", err)
	}
	return LoadEntries(bytes.NewReader(data))
}

// NewBuiltinResolver builds a resolver over the embedded seed registry.
func NewBuiltinResolver() (*Resolver, error) {
	entries, err := BuiltinEntries()
	if err != nil {
		return nil, err
	}
	return NewResolver(entries)
}

// LoadFile appends the creditors in a YAML registry file and returns how many were added.
func (r *Resolver) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening creditor registry: %w", err)
	}
	defer f.Close()

	entries, err := LoadEntries(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	for i, e := range entries {
		key := e.Key
		if key == "" {
			key = e.Name
		}
		if err := r.AddCreditor(key, e.Identity); err != nil {
			return i, fmt.Errorf("%s: entry %d: %w", path, i, err)
		}
	}
	return len(entries), nil
}
