package packet

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"reflect"

	"github.com/danderson/packet/wire"
)

const debugDecoders = false

func debugDecoder(msg string, args ...any) {
	if !debugDecoders {
		return
	}
	log.Printf(msg, args...)
}

// Unmarshal parses the wire encoding of a record into the value
// pointed to by v, under the process-wide resource limits. v must be
// a non-nil pointer to a record struct.
//
// Unmarshal applies the inverse of the layout rules used by
// [Marshal]: fields decode in declaration order, if= conditionals
// are evaluated against the fields decoded so far, adjacent bits=
// fields share group bytes. A field skipped by a false conditional
// keeps its zero value.
//
// The input must provide every byte the layout calls for. If it runs
// short, Unmarshal returns a [BufferOverflowError] and leaves v
// unmodified: a failed parse never stores a partial record. Inputs
// larger than the configured maximum buffer size are rejected with a
// [BufferOverflowError] before any parsing, and nesting beyond the
// configured depth with a [SecurityError].
//
// Validation constraints run as each field decodes, against the
// freshly stored value. The first failure aborts the parse with a
// [ValidationError].
func Unmarshal(bs []byte, v any) error {
	return UnmarshalWithLimits(bs, v, limits)
}

// UnmarshalWithLimits is Unmarshal with an explicit resource limit
// set in place of the process-wide one.
func UnmarshalWithLimits(bs []byte, v any, l Limits) error {
	if v == nil {
		return errors.New("can't unmarshal into nil interface")
	}
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer {
		return errors.New("can't unmarshal into a non-pointer")
	}
	if val.IsNil() {
		return errors.New("can't unmarshal into a nil pointer")
	}
	if len(bs) > l.MaxBufferSize {
		return BufferOverflowError{len(bs), l.MaxBufferSize}
	}
	dec, err := decoderFor(val.Type().Elem())
	if err != nil {
		return err
	}
	// Decode into a scratch value, so that v keeps its contents if
	// the parse fails partway.
	tmp := reflect.New(val.Type().Elem()).Elem()
	d := wire.Decoder{In: bs}
	st := decodeState{limits: l}
	if err := dec(&d, &st, tmp); err != nil {
		return err
	}
	val.Elem().Set(tmp)
	return nil
}

// decodeState carries the unpack engine's per-call state: the
// resource limits in effect and the current nesting depth.
type decodeState struct {
	limits Limits
	depth  int
}

// A decoderFunc decodes one value from d into v, which it may assume
// is settable.
type decoderFunc func(d *wire.Decoder, st *decodeState, v reflect.Value) error

var decoders cache[reflect.Type, decoderFunc]

func decoderFor(t reflect.Type) (ret decoderFunc, err error) {
	if ret, err := decoders.Get(t); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return nil, err
	}
	defer func(t reflect.Type) {
		if err != nil {
			decoders.SetErr(t, err)
		} else {
			decoders.Set(t, ret)
		}
	}(t)

	debugDecoder("decoderFor(%s)", t)
	defer debugDecoder("end decoderFor(%s)", t)

	switch t.Kind() {
	case reflect.Pointer:
		return newPtrDecoder(t)
	case reflect.Struct:
		return newStructDecoder(t)
	}
	return nil, typeErr(t, "record must be a struct")
}

func newPtrDecoder(t reflect.Type) (decoderFunc, error) {
	debugDecoder("ptr{%s}", t.Elem())
	elemDec, err := decoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
		return elemDec(d, st, derefAlloc(v))
	}
	return fn, nil
}

// newStructDecoder compiles the unpacking loop for the record type
// t.
func newStructDecoder(t reflect.Type) (decoderFunc, error) {
	sc, err := schemaFor(t)
	if err != nil {
		return nil, err
	}

	type step struct {
		f   *field
		dec decoderFunc // nil for bit fields, which unpack in line
	}
	var steps []step
	for _, f := range sc.Fields {
		s := step{f: f}
		if f.Kind != kindBits {
			s.dec, err = newFieldDecoder(f)
			if err != nil {
				return nil, err
			}
		}
		steps = append(steps, s)
	}

	fn := func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
		var bits wire.BitReader
		for _, s := range steps {
			if s.f.Cond != nil && !s.f.Cond.eval(v) {
				continue
			}
			if s.f.Kind == kindBits {
				if need := s.f.groupLen() - bits.Consumed(); need > d.Remaining() {
					return BufferOverflowError{d.Offset() + need, d.Len()}
				}
				u, err := bits.Get(d, s.f.Bits, s.f.BitAt)
				if err != nil {
					return err
				}
				fv := v.Field(s.f.Index)
				fv.SetUint(u)
				if err := runChecks(s.f, fv); err != nil {
					return err
				}
				continue
			}
			bits.Reset()
			fv := v.Field(s.f.Index)
			if err := s.dec(d, st, fv); err != nil {
				return err
			}
			if err := runChecks(s.f, fv); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

// newFieldDecoder compiles the decoder for a single non-bit field.
// Decoders bounds check the input before consuming anything, so that
// a short buffer reports the byte count it would have needed.
func newFieldDecoder(f *field) (decoderFunc, error) {
	switch f.Kind {
	case kindUint:
		debugDecoder("uint%d{%s}", f.Bits, f.Name)
		return newUintDecoder(f), nil
	case kindBytes:
		debugDecoder("bytes%d{%s}", f.Len, f.Name)
		return newBytesDecoder(f), nil
	case kindRest:
		debugDecoder("rest{%s}", f.Name)
		return newRestDecoder(f), nil
	case kindNested:
		debugDecoder("nested{%s}", f.Name)
		return newNestedDecoder(f)
	}
	panic("unhandled field kind")
}

func newUintDecoder(f *field) decoderFunc {
	ord := f.Order
	switch f.Bits {
	case 8:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < 1 {
				return BufferOverflowError{d.Offset() + 1, d.Len()}
			}
			u, err := d.Uint8()
			if err != nil {
				return err
			}
			v.SetUint(uint64(u))
			return nil
		}
	case 16:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < 2 {
				return BufferOverflowError{d.Offset() + 2, d.Len()}
			}
			u, err := d.Uint16(ord)
			if err != nil {
				return err
			}
			v.SetUint(uint64(u))
			return nil
		}
	case 32:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < 4 {
				return BufferOverflowError{d.Offset() + 4, d.Len()}
			}
			u, err := d.Uint32(ord)
			if err != nil {
				return err
			}
			v.SetUint(uint64(u))
			return nil
		}
	case 64:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < 8 {
				return BufferOverflowError{d.Offset() + 8, d.Len()}
			}
			u, err := d.Uint64(ord)
			if err != nil {
				return err
			}
			v.SetUint(u)
			return nil
		}
	default:
		panic("invalid newUintDecoder width")
	}
}

func newBytesDecoder(f *field) decoderFunc {
	want := f.Len
	switch f.Type.Kind() {
	case reflect.Array:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < want {
				return BufferOverflowError{d.Offset() + want, d.Len()}
			}
			bs, err := d.Read(want)
			if err != nil {
				return err
			}
			reflect.Copy(v, reflect.ValueOf(bs))
			return nil
		}
	case reflect.Slice:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < want {
				return BufferOverflowError{d.Offset() + want, d.Len()}
			}
			bs, err := d.Read(want)
			if err != nil {
				return err
			}
			// copy, the read slice aliases the caller's buffer
			v.SetBytes(bytes.Clone(bs))
			return nil
		}
	default:
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			if d.Remaining() < want {
				return BufferOverflowError{d.Offset() + want, d.Len()}
			}
			bs, err := d.Read(want)
			if err != nil {
				return err
			}
			v.SetString(string(bs))
			return nil
		}
	}
}

func newRestDecoder(f *field) decoderFunc {
	if f.Type.Kind() == reflect.String {
		return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
			v.SetString(string(d.Rest()))
			return nil
		}
	}
	return func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
		rest := d.Rest()
		if len(rest) == 0 {
			return nil
		}
		v.SetBytes(bytes.Clone(rest))
		return nil
	}
}

func newNestedDecoder(f *field) (decoderFunc, error) {
	elemDec, err := decoderFor(f.Type)
	if err != nil {
		return nil, err
	}
	fn := func(d *wire.Decoder, st *decodeState, v reflect.Value) error {
		if st.depth+1 > st.limits.MaxNestingDepth {
			return SecurityError{fmt.Sprintf("nesting depth %d exceeds limit %d", st.depth+1, st.limits.MaxNestingDepth)}
		}
		st.depth++
		err := elemDec(d, st, v)
		st.depth--
		return err
	}
	return fn, nil
}
