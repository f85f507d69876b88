package models

import "slices"

// Dtype is a column data type as declared in the data dictionary.
type Dtype string

const (
	DtypeInt      Dtype = "int"
	DtypeFloat    Dtype = "float"
	DtypeBool     Dtype = "bool"
	DtypeCategory Dtype = "category"
	DtypeDatetime Dtype = "datetime"
	DtypeText     Dtype = "text"
)

// ValidDtypes contains all dtype values the dictionary may declare.
var ValidDtypes = []Dtype{
	DtypeInt,
	DtypeFloat,
	DtypeBool,
	DtypeCategory,
	DtypeDatetime,
	DtypeText,
}

// IsValidDtype checks if the given dtype is one of the declared enumeration.
func IsValidDtype(d Dtype) bool {
	return slices.Contains(ValidDtypes, d)
}

// CompatibleWith reports whether a column whose values look like observed
// satisfies a declaration of d. The relation is deliberately loose in the
// textual direction: text accepts anything, category accepts anything
// string-shaped, and numeric widths widen (bool < int < float). Numeric
// content under a category declaration, or anything non-datetime under a
// datetime declaration, counts as drift.
func (d Dtype) CompatibleWith(observed Dtype) bool {
	if d == observed {
		return true
	}
	switch d {
	case DtypeText:
		return true
	case DtypeCategory:
		return observed == DtypeText || observed == DtypeBool
	case DtypeFloat:
		return observed == DtypeInt || observed == DtypeBool
	case DtypeInt:
		return observed == DtypeBool
	default:
		return false
	}
}
