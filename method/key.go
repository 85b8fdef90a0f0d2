/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package method

import (
	"fmt"
	"strings"
)

// Key identifies a declared repository method: owning repository, method
// name and parameter kind sequence. It is comparable and used as a map key.
type Key struct {
	Repository string
	Method     string
	Params     string
}

// NewKey builds the key of a method with the given parameters.
func NewKey(repository, name string, params []Param) Key {
	kinds := make([]string, len(params))
	for i, p := range params {
		kinds[i] = p.String()
	}
	return Key{Repository: repository, Method: name, Params: strings.Join(kinds, ",")}
}

// String renders the full form, e.g. "AirportRepository.countByIataIn(string...)".
func (k Key) String() string {
	return fmt.Sprintf("%s.%s(%s)", k.Repository, k.Method, k.Params)
}

// Short renders "Repository.method", the form named queries are usually keyed by.
func (k Key) Short() string {
	if k.Repository == "" {
		return k.Method
	}
	return k.Repository + "." + k.Method
}
