package models

import (
	"strconv"
	"time"
)

// Value is a single table cell. Raw always preserves the text exactly as it
// appeared in the file; the typed fields are populated according to Kind.
// A null cell (empty in the file) has Null set and Kind equal to the
// column's dtype.
type Value struct {
	Raw  string
	Kind Dtype
	Null bool

	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
}

// NullValue returns a null cell of the given dtype.
func NullValue(kind Dtype) Value {
	return Value{Kind: kind, Null: true}
}

// TextValue returns a text cell holding raw.
func TextValue(raw string) Value {
	return Value{Raw: raw, Kind: DtypeText}
}

// IntValue returns an int cell. Raw is the canonical base-10 rendering.
func IntValue(i int64) Value {
	return Value{Raw: strconv.FormatInt(i, 10), Kind: DtypeInt, Int: i, Float: float64(i)}
}

// FloatValue returns a float cell. Raw is the shortest exact rendering.
func FloatValue(f float64) Value {
	return Value{Raw: strconv.FormatFloat(f, 'g', -1, 64), Kind: DtypeFloat, Float: f}
}

// BoolValue returns a bool cell rendered as true/false.
func BoolValue(b bool) Value {
	return Value{Raw: strconv.FormatBool(b), Kind: DtypeBool, Bool: b}
}

// AsFloat returns the numeric view of the cell: ints widen to float64,
// bools count as 0/1. The second return is false for null and non-numeric
// cells.
func (v Value) AsFloat() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Kind {
	case DtypeInt, DtypeFloat:
		return v.Float, true
	case DtypeBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Any returns the cell as a database-driver-friendly value: nil for null,
// otherwise int64, float64, bool, time.Time or string.
func (v Value) Any() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case DtypeInt:
		return v.Int
	case DtypeFloat:
		return v.Float
	case DtypeBool:
		return v.Bool
	case DtypeDatetime:
		return v.Time
	default:
		return v.Raw
	}
}

// String returns the cell's file representation. Null cells render empty.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	return v.Raw
}
