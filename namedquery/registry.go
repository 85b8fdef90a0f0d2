/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package namedquery

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suparena/repoquery/method"
)

// Registry is an immutable set of query texts keyed by method. A key may be
// the full method key ("AirportRepository.countByIata(string)"), the
// repository-qualified name ("AirportRepository.countByIata") or the
// entity-qualified name ("Airport.countByIata"); lookups try them in that
// order.
type Registry struct {
	queries map[string]string
}

// New copies entries into a Registry. Blank keys or texts are rejected.
func New(entries map[string]string) (*Registry, error) {
	r := &Registry{queries: make(map[string]string, len(entries))}
	for k, v := range entries {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" {
			return nil, fmt.Errorf("named query with empty name")
		}
		if v == "" {
			return nil, fmt.Errorf("named query %q has empty text", k)
		}
		r.queries[k] = v
	}
	return r, nil
}

type file struct {
	Queries map[string]string `yaml:"queries"`
}

// Load reads a YAML document of the form
//
//	queries:
//	  AirportRepository.findByCity: SELECT ... FROM {#collection} WHERE city = {city}
func Load(r io.Reader) (*Registry, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse named queries: %w", err)
	}
	return New(f.Queries)
}

// LoadFile reads named queries from a YAML file.
func LoadFile(path string) (*Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	reg, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Lookup finds the text overriding the method, if any.
func (r *Registry) Lookup(key method.Key, entity string) (string, bool) {
	if r == nil {
		return "", false
	}
	candidates := []string{key.String(), key.Short()}
	if entity != "" {
		candidates = append(candidates, entity+"."+key.Method)
	}
	for _, c := range candidates {
		if q, ok := r.queries[c]; ok {
			return q, true
		}
	}
	return "", false
}

// Has reports whether a named query overrides the method.
func (r *Registry) Has(key method.Key, entity string) bool {
	_, ok := r.Lookup(key, entity)
	return ok
}

// Merge returns a new Registry holding both sets; entries of other win.
func (r *Registry) Merge(other *Registry) *Registry {
	merged := &Registry{queries: make(map[string]string, r.Len()+other.Len())}
	for _, src := range []*Registry{r, other} {
		if src == nil {
			continue
		}
		for k, v := range src.queries {
			merged.queries[k] = v
		}
	}
	return merged
}

// Len is the number of named queries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.queries)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.queries))
	for k := range r.queries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
