package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PackageFile is the YAML form of a package:
//
//	package: tickets
//	fields:
//	  tt_name: {class: text, width: 255, label: Name}
//	  ticket_name: {alias: tt_name}
type PackageFile struct {
	Package string                 `yaml:"package"`
	Fields  map[string]*Descriptor `yaml:"fields"`
}

// DecodePackage parses a package file. Callback names are looked up in
// callbacks; an unknown name is an error
func DecodePackage(data []byte, callbacks map[string]Callback) (*PackageFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var pf PackageFile
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("failed to decode package: %w", err)
	}
	if pf.Package == "" {
		return nil, fmt.Errorf("package name is missing")
	}

	if err := BindCallbacks(pf.Fields, callbacks); err != nil {
		return nil, err
	}
	return &pf, nil
}

// BindCallbacks sets the ValidateCallback of every descriptor naming one in
// CallbackName. An unknown name is an error
func BindCallbacks(fields map[string]*Descriptor, callbacks map[string]Callback) error {
	for name, desc := range fields {
		if desc == nil || desc.CallbackName == "" {
			continue
		}
		cb, ok := callbacks[desc.CallbackName]
		if !ok {
			return fmt.Errorf("field %s: unknown validate_callback %q", name, desc.CallbackName)
		}
		desc.ValidateCallback = cb
	}
	return nil
}

// LoadPackageFile reads and parses the package file at path
func LoadPackageFile(path string, callbacks map[string]Callback) (*PackageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package file: %w", err)
	}
	pf, err := DecodePackage(data, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// LoadFiles registers the package files at paths in order
func (r *Registry) LoadFiles(callbacks map[string]Callback, paths ...string) error {
	for _, path := range paths {
		pf, err := LoadPackageFile(path, callbacks)
		if err != nil {
			return err
		}
		if err := r.RegisterPackage(pf.Package, pf.Fields); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
