package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Domain is a parsed allowed-values constraint: either an enumerated set
// of string values or a numeric interval. The zero Domain is never built;
// an unconstrained column has a nil *Domain.
type Domain struct {
	// Set members in declared order; nil for interval domains.
	Set []string

	Min, Max                   float64
	HasMin, HasMax             bool
	MinExclusive, MaxExclusive bool

	members map[string]struct{}
}

// ParseDomain parses an allowed-values expression. Supported forms:
//
//	""            unconstrained (returns nil)
//	"a|b|c"       enumerated set
//	"[0,1]"       inclusive interval; either bound may be omitted: "[0,]"
//	">=0"         single comparator: >=, >, <=, <
func ParseDomain(expr string) (*Domain, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	if strings.HasPrefix(expr, "[") {
		return parseInterval(expr)
	}
	if strings.HasPrefix(expr, ">") || strings.HasPrefix(expr, "<") {
		return parseComparator(expr)
	}
	return parseSet(expr)
}

func parseSet(expr string) (*Domain, error) {
	parts := strings.Split(expr, "|")
	d := &Domain{members: make(map[string]struct{}, len(parts))}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty member in value set %q", expr)
		}
		if _, dup := d.members[p]; dup {
			return nil, fmt.Errorf("duplicate member %q in value set %q", p, expr)
		}
		d.Set = append(d.Set, p)
		d.members[p] = struct{}{}
	}
	return d, nil
}

func parseInterval(expr string) (*Domain, error) {
	if !strings.HasSuffix(expr, "]") {
		return nil, fmt.Errorf("unterminated interval %q", expr)
	}
	inner := expr[1 : len(expr)-1]
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("interval %q must have exactly one comma", expr)
	}

	d := &Domain{}
	lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lo != "" {
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("interval %q: bad lower bound: %w", expr, err)
		}
		d.Min, d.HasMin = v, true
	}
	if hi != "" {
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("interval %q: bad upper bound: %w", expr, err)
		}
		d.Max, d.HasMax = v, true
	}
	if !d.HasMin && !d.HasMax {
		return nil, fmt.Errorf("interval %q has no bounds", expr)
	}
	if d.HasMin && d.HasMax && d.Min > d.Max {
		return nil, fmt.Errorf("interval %q: lower bound exceeds upper bound", expr)
	}
	return d, nil
}

func parseComparator(expr string) (*Domain, error) {
	op := expr[:1]
	rest := expr[1:]
	if strings.HasPrefix(rest, "=") {
		op += "="
		rest = rest[1:]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return nil, fmt.Errorf("comparator %q: bad bound: %w", expr, err)
	}

	d := &Domain{}
	switch op {
	case ">=":
		d.Min, d.HasMin = v, true
	case ">":
		d.Min, d.HasMin, d.MinExclusive = v, true, true
	case "<=":
		d.Max, d.HasMax = v, true
	case "<":
		d.Max, d.HasMax, d.MaxExclusive = v, true, true
	}
	return d, nil
}

// IsSet reports whether the domain is an enumerated set.
func (d *Domain) IsSet() bool { return d.members != nil }

// ContainsString reports set membership for the trimmed value.
func (d *Domain) ContainsString(s string) bool {
	_, ok := d.members[strings.TrimSpace(s)]
	return ok
}

// ContainsNumber reports whether f satisfies the interval bounds.
func (d *Domain) ContainsNumber(f float64) bool {
	if d.HasMin {
		if d.MinExclusive && f <= d.Min {
			return false
		}
		if !d.MinExclusive && f < d.Min {
			return false
		}
	}
	if d.HasMax {
		if d.MaxExclusive && f >= d.Max {
			return false
		}
		if !d.MaxExclusive && f > d.Max {
			return false
		}
	}
	return true
}

// String renders the domain the way the dictionary declares it, for use
// in finding messages.
func (d *Domain) String() string {
	if d.IsSet() {
		return strings.Join(d.Set, "|")
	}
	lo, hi := "", ""
	if d.HasMin {
		op := ">="
		if d.MinExclusive {
			op = ">"
		}
		lo = op + strconv.FormatFloat(d.Min, 'g', -1, 64)
	}
	if d.HasMax {
		op := "<="
		if d.MaxExclusive {
			op = "<"
		}
		hi = op + strconv.FormatFloat(d.Max, 'g', -1, 64)
	}
	if lo != "" && hi != "" {
		return lo + " and " + hi
	}
	return lo + hi
}
