package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// declared holds entities described by name rather than by Go type, e.g.
// loaded from repository definition files.
var (
	declared   = make(map[string]EntityInfo)
	declaredMu sync.RWMutex
)

// RegisterDeclared registers entity metadata under its name. Registering
// identical metadata again is a no-op; different metadata under a name
// already taken is an error.
func RegisterDeclared(info EntityInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	declaredMu.Lock()
	defer declaredMu.Unlock()
	if prev, exists := declared[info.Name]; exists {
		if reflect.DeepEqual(prev, info) {
			return nil
		}
		return fmt.Errorf("type registry: entity %q already registered with different metadata", info.Name)
	}
	declared[info.Name] = info
	return nil
}

// LookupDeclared returns the metadata registered under name.
func LookupDeclared(name string) (EntityInfo, error) {
	declaredMu.RLock()
	defer declaredMu.RUnlock()
	info, ok := declared[name]
	if !ok {
		return EntityInfo{}, fmt.Errorf("type registry: no entity registered as %q", name)
	}
	return info, nil
}

// DeclaredNames lists registered entity names in sorted order.
func DeclaredNames() []string {
	declaredMu.RLock()
	defer declaredMu.RUnlock()
	names := make([]string, 0, len(declared))
	for n := range declared {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
