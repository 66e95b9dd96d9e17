package packet

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// A conditional gates a field's presence on the wire on the value of
// another integer field in the same record. A field whose
// conditional evaluates false occupies no bytes when packing, and is
// skipped, keeping its zero value, when unpacking.
type conditional struct {
	// Field is the name of the referenced field.
	Field string
	// Op is the comparison operator.
	Op string
	// Value is the literal operand.
	Value uint64

	// fieldIndex is the struct index of the referenced field,
	// resolved by [conditional.resolve].
	fieldIndex int
}

// condOps are the comparison operators conditionals accept. The two
// character operators come first so that they match before their one
// character prefixes.
var condOps = []string{"==", "!=", "<=", ">=", "<", ">"}

// parseConditional parses the body of an if= option, of the form
// Field==Literal with any of the operators in condOps. The literal
// accepts the usual integer bases, 0x1f and 0b100 work.
func parseConditional(s string) (*conditional, error) {
	for _, op := range condOps {
		name, lit, ok := strings.Cut(s, op)
		if !ok {
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("conditional %q has no field name", s)
		}
		v, err := strconv.ParseUint(lit, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad conditional literal %q", lit)
		}
		return &conditional{Field: name, Op: op, Value: v}, nil
	}
	return nil, fmt.Errorf("conditional %q has no comparison operator", s)
}

// resolve binds the conditional to the record field it references.
// The referenced field may be declared before or after the gated
// field, but when unpacking, a reference to a later field always
// reads its zero value.
func (c *conditional) resolve(t reflect.Type, on *field, fields []*field) error {
	for _, g := range fields {
		if g.Name != c.Field {
			continue
		}
		if g.Kind != kindUint && g.Kind != kindBits {
			return SchemaError{t.String(), on.Name, fmt.Errorf("conditional references %s, which is not an integer field", g.Name)}
		}
		c.fieldIndex = g.Index
		return nil
	}
	return SchemaError{t.String(), on.Name, fmt.Errorf("conditional references unknown field %q", c.Field)}
}

// eval reports whether the conditional holds for the record value v.
func (c *conditional) eval(v reflect.Value) bool {
	u := v.Field(c.fieldIndex).Uint()
	switch c.Op {
	case "==":
		return u == c.Value
	case "!=":
		return u != c.Value
	case "<":
		return u < c.Value
	case ">":
		return u > c.Value
	case "<=":
		return u <= c.Value
	case ">=":
		return u >= c.Value
	}
	return false
}
