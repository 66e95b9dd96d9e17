package packet

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/mds/mapset"
)

// A check is one validation constraint attached to a field. ok
// reports whether the given field value satisfies it.
type check struct {
	// Constraint is the constraint as written in the struct tag,
	// reported in [ValidationError] when it fails.
	Constraint string
	ok         func(v reflect.Value) bool
}

// runChecks runs a field's validation constraints against its
// decoded value, in declaration order.
func runChecks(f *field, v reflect.Value) error {
	for _, c := range f.Checks {
		if !c.ok(v) {
			return ValidationError{f.Name, c.Constraint, v.Interface()}
		}
	}
	return nil
}

// newValueCheck builds the integer constraints: the min=N and max=N
// bounds, and the in=A|B|C and notin=A|B|C membership tests.
func newValueCheck(sf reflect.StructField, kind, arg string) (check, error) {
	switch sf.Type.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return check{}, fmt.Errorf("%s= constraints need an integer field, not %s", kind, sf.Type)
	}
	c := check{Constraint: kind + "=" + arg}
	switch kind {
	case "min", "max":
		n, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return check{}, fmt.Errorf("bad %s= bound %q", kind, arg)
		}
		if kind == "min" {
			c.ok = func(v reflect.Value) bool { return v.Uint() >= n }
		} else {
			c.ok = func(v reflect.Value) bool { return v.Uint() <= n }
		}
	case "in", "notin":
		want := mapset.New[uint64]()
		for _, s := range strings.Split(arg, "|") {
			n, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return check{}, fmt.Errorf("bad %s= member %q", kind, s)
			}
			want.Add(n)
		}
		if kind == "in" {
			c.ok = func(v reflect.Value) bool { return want.Has(v.Uint()) }
		} else {
			c.ok = func(v reflect.Value) bool { return !want.Has(v.Uint()) }
		}
	}
	return c, nil
}

// newPatternCheck builds the pattern= constraint, a regexp match
// over a string or byte slice field. The whole value must match.
func newPatternCheck(sf reflect.StructField, pat string) (check, error) {
	isStr := sf.Type.Kind() == reflect.String
	isBytes := sf.Type.Kind() == reflect.Slice && sf.Type.Elem() == byteType
	if !isStr && !isBytes {
		return check{}, fmt.Errorf("pattern= constraints need a string or byte slice field, not %s", sf.Type)
	}
	re, err := regexp.Compile("^(?:" + pat + ")$")
	if err != nil {
		return check{}, fmt.Errorf("bad pattern: %v", err)
	}
	c := check{Constraint: "pattern=" + pat}
	if isStr {
		c.ok = func(v reflect.Value) bool { return re.MatchString(v.String()) }
	} else {
		c.ok = func(v reflect.Value) bool { return re.Match(v.Bytes()) }
	}
	return c, nil
}
