package export

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operator is a filter comparison.
type Operator string

const (
	OpEquals     Operator = "eq"
	OpNotEquals  Operator = "neq"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts"
	OpEndsWith   Operator = "ends"
	OpGreater    Operator = "gt"
	OpGreaterEq  Operator = "gte"
	OpLess       Operator = "lt"
	OpLessEq     Operator = "lte"
	OpIn         Operator = "in"
)

var operatorLabels = map[Operator]string{
	OpEquals:     "=",
	OpNotEquals:  "≠",
	OpContains:   "contains",
	OpStartsWith: "starts with",
	OpEndsWith:   "ends with",
	OpGreater:    ">",
	OpGreaterEq:  "≥",
	OpLess:       "<",
	OpLessEq:     "≤",
	OpIn:         "is any of",
}

// operatorAliases maps symbols and spellings accepted from clients.
var operatorAliases = map[string]Operator{
	"=":           OpEquals,
	"==":          OpEquals,
	"is":          OpEquals,
	"≠":           OpNotEquals,
	"!=":          OpNotEquals,
	"<>":          OpNotEquals,
	"is not":      OpNotEquals,
	">":           OpGreater,
	"≥":           OpGreaterEq,
	">=":          OpGreaterEq,
	"<":           OpLess,
	"≤":           OpLessEq,
	"<=":          OpLessEq,
	"starts with": OpStartsWith,
	"ends with":   OpEndsWith,
	"is any of":   OpIn,
	"any of":      OpIn,
}

// Label returns the display form of the operator.
func (o Operator) Label() string {
	if l, ok := operatorLabels[o]; ok {
		return l
	}
	return string(o)
}

// ParseOperator accepts an operator code ("gte"), symbol ("≥", ">=") or
// phrase ("is any of").
func ParseOperator(s string) (Operator, bool) {
	s = strings.TrimSpace(s)
	if _, ok := operatorLabels[Operator(s)]; ok {
		return Operator(s), true
	}
	if op, ok := operatorAliases[strings.ToLower(s)]; ok {
		return op, true
	}
	return "", false
}

// UnmarshalJSON accepts any form understood by ParseOperator.
func (o *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, ok := ParseOperator(s)
	if !ok {
		return fmt.Errorf("unknown operator %q", s)
	}
	*o = op
	return nil
}

// Operators returns the operators permitted for a field type, in menu order.
func Operators(t FieldType) []Operator {
	switch t {
	case FieldString:
		return []Operator{OpContains, OpEquals, OpNotEquals, OpStartsWith, OpEndsWith}
	case FieldNumber, FieldCurrency:
		return []Operator{OpEquals, OpNotEquals, OpGreater, OpGreaterEq, OpLess, OpLessEq}
	case FieldDatetime:
		return []Operator{OpEquals, OpGreater, OpGreaterEq, OpLess, OpLessEq}
	case FieldEnum:
		return []Operator{OpEquals, OpIn}
	case FieldBoolean:
		return []Operator{OpEquals}
	}
	return nil
}

// Allowed reports whether op may be applied to a field of type t.
func Allowed(op Operator, t FieldType) bool {
	for _, candidate := range Operators(t) {
		if candidate == op {
			return true
		}
	}
	return false
}
