/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package method

import (
	"sort"
	"strings"
)

// Operator is a predicate comparison keyword.
type Operator int

const (
	OpEquals Operator = iota
	OpNot
	OpLessThan
	OpLessThanEqual
	OpGreaterThan
	OpGreaterThanEqual
	OpBetween
	OpIn
	OpNotIn
	OpLike
	OpNotLike
	OpStartingWith
	OpEndingWith
	OpContaining
	OpIsNull
	OpIsNotNull
	OpTrue
	OpFalse
)

var operatorNames = map[Operator]string{
	OpEquals:           "Equals",
	OpNot:              "Not",
	OpLessThan:         "LessThan",
	OpLessThanEqual:    "LessThanEqual",
	OpGreaterThan:      "GreaterThan",
	OpGreaterThanEqual: "GreaterThanEqual",
	OpBetween:          "Between",
	OpIn:               "In",
	OpNotIn:            "NotIn",
	OpLike:             "Like",
	OpNotLike:          "NotLike",
	OpStartingWith:     "StartingWith",
	OpEndingWith:       "EndingWith",
	OpContaining:       "Containing",
	OpIsNull:           "IsNull",
	OpIsNotNull:        "IsNotNull",
	OpTrue:             "True",
	OpFalse:            "False",
}

func (o Operator) String() string {
	return operatorNames[o]
}

// Arity is the number of parameters the operator consumes. In and NotIn
// consume a single variadic parameter.
func (o Operator) Arity() int {
	switch o {
	case OpIsNull, OpIsNotNull, OpTrue, OpFalse:
		return 0
	case OpBetween:
		return 2
	}
	return 1
}

// IsSet reports whether the operator expects a variadic (set) parameter.
func (o Operator) IsSet() bool {
	return o == OpIn || o == OpNotIn
}

// IsText reports whether the operator only applies to string properties.
func (o Operator) IsText() bool {
	switch o {
	case OpLike, OpNotLike, OpStartingWith, OpEndingWith:
		return true
	}
	return false
}

type keyword struct {
	suffix string
	op     Operator
}

// keywords is sorted longest suffix first so "NotIn" wins over "In".
var keywords = func() []keyword {
	kw := []keyword{
		{"IsNotNull", OpIsNotNull}, {"NotNull", OpIsNotNull},
		{"IsNull", OpIsNull}, {"Null", OpIsNull},
		{"IsNotIn", OpNotIn}, {"NotIn", OpNotIn},
		{"IsIn", OpIn}, {"In", OpIn},
		{"IsLessThanEqual", OpLessThanEqual}, {"LessThanEqual", OpLessThanEqual},
		{"IsLessThan", OpLessThan}, {"LessThan", OpLessThan},
		{"IsBefore", OpLessThan}, {"Before", OpLessThan},
		{"IsGreaterThanEqual", OpGreaterThanEqual}, {"GreaterThanEqual", OpGreaterThanEqual},
		{"IsGreaterThan", OpGreaterThan}, {"GreaterThan", OpGreaterThan},
		{"IsAfter", OpGreaterThan}, {"After", OpGreaterThan},
		{"IsBetween", OpBetween}, {"Between", OpBetween},
		{"IsNotLike", OpNotLike}, {"NotLike", OpNotLike},
		{"IsLike", OpLike}, {"Like", OpLike},
		{"IsStartingWith", OpStartingWith}, {"StartingWith", OpStartingWith}, {"StartsWith", OpStartingWith},
		{"IsEndingWith", OpEndingWith}, {"EndingWith", OpEndingWith}, {"EndsWith", OpEndingWith},
		{"IsContaining", OpContaining}, {"Containing", OpContaining}, {"Contains", OpContaining},
		{"IsTrue", OpTrue}, {"True", OpTrue},
		{"IsFalse", OpFalse}, {"False", OpFalse},
		{"IsNot", OpNot}, {"Not", OpNot},
		{"Equals", OpEquals}, {"Is", OpEquals},
	}
	sort.SliceStable(kw, func(i, j int) bool { return len(kw[i].suffix) > len(kw[j].suffix) })
	return kw
}()

// splitOperator separates a predicate part into property text and operator.
// Parts without a keyword are equality comparisons.
func splitOperator(part string) (string, Operator, bool) {
	for _, kw := range keywords {
		if strings.HasSuffix(part, kw.suffix) && len(part) > len(kw.suffix) {
			return strings.TrimSuffix(part, kw.suffix), kw.op, true
		}
	}
	return part, OpEquals, false
}
