/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

// Definition is a repository declared in YAML: one entity and the query
// methods of its repository.
type Definition struct {
	Repository string           `yaml:"repository" validate:"required"`
	Entity     EntityDefinition `yaml:"entity"`
	Methods    []MethodDef      `yaml:"methods" validate:"dive"`
}

// EntityDefinition describes the stored documents. Properties map a
// document path to its kind name.
type EntityDefinition struct {
	Name       string            `yaml:"name" validate:"required"`
	Collection string            `yaml:"collection" validate:"required"`
	IDProperty string            `yaml:"idProperty"`
	Properties map[string]string `yaml:"properties" validate:"required,min=1"`
}

// MethodDef is one repository method.
type MethodDef struct {
	Name        string     `yaml:"name" validate:"required"`
	Params      []ParamDef `yaml:"params" validate:"dive"`
	Returns     string     `yaml:"returns"`
	Consistency string     `yaml:"consistency"`
	Query       string     `yaml:"query"`
}

// ParamDef is one method parameter.
type ParamDef struct {
	Name     string `yaml:"name" validate:"required"`
	Kind     string `yaml:"kind"`
	Variadic bool   `yaml:"variadic"`
}

var validate = validator.New()

// Parse reads a definition and checks its required fields.
func Parse(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse repository definition: %w", err)
	}
	if err := validate.Struct(&def); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, errors.NewValidationError(fieldErrs[0].Namespace(), fmt.Sprintf("failed on the %q rule", fieldErrs[0].Tag()))
		}
		return nil, err
	}
	return &def, nil
}

// LoadFile reads the definition at path.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open repository definition: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// EntityInfo converts the entity section. The id property defaults to "id".
func (d *Definition) EntityInfo() (registry.EntityInfo, error) {
	info := registry.EntityInfo{
		Name:       d.Entity.Name,
		Collection: d.Entity.Collection,
		IDProperty: d.Entity.IDProperty,
	}
	if info.IDProperty == "" {
		info.IDProperty = "id"
	}

	paths := make([]string, 0, len(d.Entity.Properties))
	for p := range d.Entity.Properties {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		kind, err := registry.ParseKind(d.Entity.Properties[p])
		if err != nil {
			return registry.EntityInfo{}, fmt.Errorf("entity %s property %s: %w", info.Name, p, err)
		}
		info.Properties = append(info.Properties, registry.Property{Field: p, Path: p, Kind: kind})
	}
	return info, info.Validate()
}

// Signatures converts the declared methods.
func (d *Definition) Signatures() ([]method.Signature, error) {
	sigs := make([]method.Signature, 0, len(d.Methods))
	for _, m := range d.Methods {
		ret, err := method.ParseReturn(m.Returns)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		sig := method.Signature{
			Repository: d.Repository,
			Name:       m.Name,
			Returns:    ret,
			Query:      m.Query,
		}
		if m.Consistency != "" {
			sc, err := storagemodels.ParseScanConsistency(m.Consistency)
			if err != nil {
				return nil, fmt.Errorf("method %s: %w", m.Name, err)
			}
			sig.Consistency = sc
		}
		for _, p := range m.Params {
			kind, err := registry.ParseKind(p.Kind)
			if err != nil {
				return nil, fmt.Errorf("method %s parameter %s: %w", m.Name, p.Name, err)
			}
			sig.Params = append(sig.Params, method.Param{Name: p.Name, Kind: kind, Variadic: p.Variadic})
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
