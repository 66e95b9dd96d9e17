package packet

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/danderson/packet/wire"
)

// A fieldKind classifies the wire layout of one record field.
type fieldKind int

const (
	kindInvalid fieldKind = iota
	// kindUint is a fixed width unsigned integer.
	kindUint
	// kindBytes is a byte string with a fixed wire length.
	kindBytes
	// kindRest is a byte string covering the rest of the buffer.
	kindRest
	// kindNested is an embedded record, laid out in line.
	kindNested
	// kindBits is a sub-byte bit run within a bit group.
	kindBits
)

// A field describes the wire layout of one record field: where its
// value lives in the Go struct, how many bytes or bits it occupies
// on the wire, and the conditions and constraints attached to it.
type field struct {
	// Name is the Go field name.
	Name string
	// Index is the field's index in the record struct.
	Index int
	// Type is the field's Go type.
	Type reflect.Type

	// Kind selects the field's wire layout.
	Kind fieldKind
	// Bits is the width in bits, for kindUint and kindBits fields.
	Bits int
	// BitAt is the offset within the bit group, for kindBits fields.
	BitAt int
	// Len is the wire length in bytes, for kindBytes fields.
	Len int
	// Order is the byte order for kindUint fields wider than one
	// byte.
	Order wire.ByteOrder

	// Cond, if non-nil, gates the field's presence on the wire.
	Cond *conditional
	// Checks are the validation constraints to run after unpacking
	// the field, in declaration order.
	Checks []check
}

// groupLen is the number of group bytes a bit field needs pulled
// from the wire, counting from the start of its group.
func (f *field) groupLen() int {
	return (f.BitAt + f.Bits + 7) / 8
}

// A schema is the resolved wire layout of a record type: its fields
// in declaration order, which is also their wire order.
type schema struct {
	// Name is the name of the record type.
	Name string
	// Type is the record type itself.
	Type reflect.Type
	// Fields are the record's layout descriptors, in wire order.
	Fields []*field
}

var schemas cache[reflect.Type, *schema]

// schemaFor returns the wire layout of the record type t, deriving
// and caching it on first use.
func schemaFor(t reflect.Type) (ret *schema, err error) {
	if ret, err := schemas.Get(t); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return nil, err
	}
	defer func(t reflect.Type) {
		if err != nil {
			schemas.SetErr(t, err)
		} else {
			schemas.Set(t, ret)
		}
	}(t)

	if t.Kind() != reflect.Struct {
		return nil, typeErr(t, "record must be a struct")
	}

	ret = &schema{Name: t.String(), Type: t}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, ok := sf.Tag.Lookup("packet")
		if !ok {
			return nil, MissingLayoutError{t.String(), sf.Name}
		}
		f := &field{
			Name:  sf.Name,
			Index: i,
			Type:  sf.Type,
			Order: wire.BigEndian,
		}
		if err := f.parseTag(t, sf, tag); err != nil {
			return nil, err
		}
		if f.Kind == kindInvalid {
			return nil, MissingLayoutError{t.String(), sf.Name}
		}
		ret.Fields = append(ret.Fields, f)
	}
	// Conditionals can name fields declared later in the record,
	// resolve them once the whole field list is known.
	for _, f := range ret.Fields {
		if f.Cond == nil {
			continue
		}
		if err := f.Cond.resolve(t, f, ret.Fields); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// parseTag parses one field's packet struct tag into f. Exactly one
// of the options must be a layout token.
func (f *field) parseTag(t reflect.Type, sf reflect.StructField, tag string) error {
	opts := strings.Split(tag, ",")
	for i := 0; i < len(opts); i++ {
		opt := opts[i]
		if opt == "" {
			// stray comma
			continue
		}
		k, val, _ := strings.Cut(opt, "=")
		var err error
		switch k {
		case "little":
			f.Order = wire.LittleEndian
		case "big":
			f.Order = wire.BigEndian
		case "bytes":
			err = f.setBytes(sf, opt)
		case "nested":
			err = f.setNested(sf)
		case "bits":
			err = f.setBits(sf, val)
		case "at":
			err = f.setBitAt(val)
		case "if":
			if f.Cond != nil {
				err = errors.New("only one if= per field")
				break
			}
			f.Cond, err = parseConditional(val)
		case "min", "max", "in", "notin":
			var c check
			c, err = newValueCheck(sf, k, val)
			if err == nil {
				f.Checks = append(f.Checks, c)
			}
		case "pattern":
			// The pattern runs to the end of the tag, so that
			// regexps may contain commas. It must be the last
			// option.
			pat, hasPat := strings.CutPrefix(strings.Join(opts[i:], ","), "pattern=")
			if !hasPat {
				err = errors.New("pattern= needs a value")
				break
			}
			var c check
			c, err = newPatternCheck(sf, pat)
			if err == nil {
				f.Checks = append(f.Checks, c)
			}
			i = len(opts)
		default:
			err = f.setWidth(sf, opt)
		}
		if err != nil {
			return SchemaError{t.String(), f.Name, err}
		}
	}
	return nil
}

// formatCodes are single letter aliases for the integer widths, kept
// so that schemas written in the older format code notation keep
// working.
var formatCodes = map[string]int{
	"B": 8,
	"H": 16,
	"I": 32,
	"Q": 64,
}

// setWidth handles the integer layout tokens: decimal bit widths and
// their single letter aliases.
func (f *field) setWidth(sf reflect.StructField, tok string) error {
	if f.Kind != kindInvalid {
		return fmt.Errorf("second layout declaration %q", tok)
	}
	bits, ok := formatCodes[tok]
	if !ok {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return fmt.Errorf("unknown option %q", tok)
		}
		bits = n
	}
	switch bits {
	case 8, 16, 32, 64:
	default:
		return UnsupportedWidthError{sf.Name, bits}
	}
	switch sf.Type.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	case reflect.Int, reflect.Uint:
		return errors.New("int and uint aren't portable, use a fixed width unsigned integer")
	default:
		return fmt.Errorf("%d bit fields need a fixed width unsigned integer, not %s", bits, sf.Type)
	}
	if got := int(sf.Type.Size()) * 8; got != bits {
		return fmt.Errorf("declared %d bits but %s is %d bits wide", bits, sf.Type, got)
	}
	f.Kind = kindUint
	f.Bits = bits
	return nil
}

// setBits handles the bits=N layout for sub-byte fields.
func (f *field) setBits(sf reflect.StructField, val string) error {
	if f.Kind != kindInvalid {
		return fmt.Errorf("second layout declaration %q", "bits="+val)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("bad bit count %q", val)
	}
	if n < 1 || n > 64 {
		return fmt.Errorf("bit count %d outside 1..64", n)
	}
	switch sf.Type.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return fmt.Errorf("bit fields need a fixed width unsigned integer, not %s", sf.Type)
	}
	if got := int(sf.Type.Size()) * 8; got < n {
		return fmt.Errorf("%d bits don't fit in %s", n, sf.Type)
	}
	f.Kind = kindBits
	f.Bits = n
	return nil
}

// setBitAt handles at=N, the position of a bit field within its
// group. It must follow the bits= option it applies to.
func (f *field) setBitAt(val string) error {
	if f.Kind != kindBits {
		return errors.New("at= only applies after bits=")
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("bad bit offset %q", val)
	}
	if n < 0 || n+f.Bits > 64 {
		return fmt.Errorf("bits %d..%d outside the 64 bit group limit", n, n+f.Bits-1)
	}
	f.BitAt = n
	return nil
}

var byteType = reflect.TypeFor[byte]()

// setBytes handles the bytes and bytes=N layouts. A byte array takes
// its wire length from the array, a byte slice or string with no
// explicit length covers the rest of the buffer.
func (f *field) setBytes(sf reflect.StructField, opt string) error {
	if f.Kind != kindInvalid {
		return fmt.Errorf("second layout declaration %q", opt)
	}
	t := sf.Type
	isArr := t.Kind() == reflect.Array && t.Elem() == byteType
	isSlice := t.Kind() == reflect.Slice && t.Elem() == byteType
	isStr := t.Kind() == reflect.String
	if !isArr && !isSlice && !isStr {
		return fmt.Errorf("byte string fields need a byte array, byte slice or string, not %s", t)
	}
	if val, ok := strings.CutPrefix(opt, "bytes="); ok {
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return fmt.Errorf("bad byte length %q", val)
		}
		if isArr && t.Len() != n {
			return fmt.Errorf("declared %d bytes but %s holds %d", n, t, t.Len())
		}
		f.Kind = kindBytes
		f.Len = n
		return nil
	}
	if isArr {
		f.Kind = kindBytes
		f.Len = t.Len()
		return nil
	}
	f.Kind = kindRest
	return nil
}

// setNested handles the nested layout for in-line records.
func (f *field) setNested(sf reflect.StructField) error {
	if f.Kind != kindInvalid {
		return errors.New("second layout declaration \"nested\"")
	}
	if derefType(sf.Type).Kind() != reflect.Struct {
		return fmt.Errorf("nested fields need a struct or pointer to struct, not %s", sf.Type)
	}
	f.Kind = kindNested
	return nil
}
