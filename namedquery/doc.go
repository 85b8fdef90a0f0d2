// Package namedquery holds query texts that override derivation for
// specific repository methods, loaded from YAML or configured inline.
package namedquery
