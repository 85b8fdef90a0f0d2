/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Property describes one document property an entity exposes to queries.
type Property struct {
	// Field is the Go field name (or the declared name for YAML entities).
	Field string
	// Path is the property name inside the stored document.
	Path string
	Kind Kind
}

// EntityInfo is the query-relevant metadata of an entity type.
type EntityInfo struct {
	Name       string
	Collection string
	// IDProperty is the document path holding the document key.
	IDProperty string
	Properties []Property
}

// Property looks up a property by Go field name or document path,
// ignoring case.
func (e EntityInfo) Property(name string) (Property, bool) {
	for _, p := range e.Properties {
		if strings.EqualFold(p.Field, name) || strings.EqualFold(p.Path, name) {
			return p, true
		}
	}
	return Property{}, false
}

// Validate checks the metadata is usable for query rendering.
func (e EntityInfo) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	if e.Collection == "" {
		return fmt.Errorf("entity %s: collection is required", e.Name)
	}
	if e.IDProperty == "" {
		return fmt.Errorf("entity %s: id property is required", e.Name)
	}
	if _, ok := e.Property(e.IDProperty); !ok {
		return fmt.Errorf("entity %s: id property %q is not a declared property", e.Name, e.IDProperty)
	}
	return nil
}

var (
	entityRegistry = make(map[reflect.Type]EntityInfo)
	mu             sync.RWMutex
)

// EntityOption adjusts the metadata inferred by RegisterEntity.
type EntityOption func(*EntityInfo)

// WithIDProperty overrides the inferred id property.
func WithIDProperty(path string) EntityOption {
	return func(e *EntityInfo) {
		e.IDProperty = path
	}
}

// WithName overrides the entity name (defaults to the Go type name).
func WithName(name string) EntityOption {
	return func(e *EntityInfo) {
		e.Name = name
	}
}

// RegisterEntity associates Go type T with a collection. Properties are
// inferred from exported fields and their json tags; the id property is the
// field whose document name is "id" or whose Go name is ID.
func RegisterEntity[T any](collection string, opts ...EntityOption) (EntityInfo, error) {
	info, err := Describe[T](collection, opts...)
	if err != nil {
		return EntityInfo{}, err
	}

	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	entityRegistry[t] = info
	return info, nil
}

// GetEntity retrieves the metadata registered for type T, if any.
func GetEntity[T any]() (EntityInfo, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	e, ok := entityRegistry[t]
	return e, ok
}

// Describe builds EntityInfo for T without registering it.
func Describe[T any](collection string, opts ...EntityOption) (EntityInfo, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return EntityInfo{}, fmt.Errorf("entity type must not be an interface")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return EntityInfo{}, fmt.Errorf("entity type %s is not a struct", t)
	}

	info := EntityInfo{
		Name:       t.Name(),
		Collection: collection,
		Properties: structProperties(t),
	}
	for _, p := range info.Properties {
		if p.Path == "id" || p.Field == "ID" {
			info.IDProperty = p.Path
			break
		}
	}
	for _, opt := range opts {
		opt(&info)
	}
	if err := info.Validate(); err != nil {
		return EntityInfo{}, err
	}
	return info, nil
}

func structProperties(t reflect.Type) []Property {
	props := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			props = append(props, structProperties(f.Type)...)
			continue
		}
		path := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if name != "" {
				path = name
			}
		}
		props = append(props, Property{Field: f.Name, Path: path, Kind: KindOf(f.Type)})
	}
	return props
}
