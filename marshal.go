package packet

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/danderson/packet/wire"
)

// Marshal returns the wire encoding of the record v.
//
// v must be a struct whose exported fields all carry layout
// declarations in their packet struct tags, or a pointer to one. A
// nil pointer encodes as the zero value of the type pointed to. See
// the package documentation for the declaration syntax.
//
// Marshal lays fields out in declaration order, with no padding or
// framing beyond what the declarations call for. A field gated by an
// if= conditional that evaluates false against v occupies no bytes.
// Adjacent bits= fields accumulate into a shared group, flushed as
// whole bytes when a non-bit field or the end of the record is
// reached.
//
// Marshal does not modify v, and given the same v it always produces
// the same bytes.
func Marshal(v any) ([]byte, error) {
	return MarshalAppend(nil, v)
}

// MarshalAppend appends the wire encoding of the record v to bs and
// returns the extended slice.
func MarshalAppend(bs []byte, v any) ([]byte, error) {
	if v == nil {
		return nil, errors.New("can't marshal nil interface")
	}
	val := reflect.ValueOf(v)
	enc, err := encoderFor(val.Type())
	if err != nil {
		return nil, err
	}
	e := wire.Encoder{Out: bs}
	if err := enc(&e, val); err != nil {
		return nil, err
	}
	return e.Out, nil
}

// An encoderFunc appends the wire encoding of v to e.
type encoderFunc func(e *wire.Encoder, v reflect.Value) error

var encoders cache[reflect.Type, encoderFunc]

func encoderFor(t reflect.Type) (ret encoderFunc, err error) {
	if ret, err := encoders.Get(t); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return nil, err
	}
	// Note, defer captures the type value in case it gets messed with
	// below.
	defer func(t reflect.Type) {
		if err != nil {
			encoders.SetErr(t, err)
		} else {
			encoders.Set(t, ret)
		}
	}(t)

	switch t.Kind() {
	case reflect.Pointer:
		return newPtrEncoder(t)
	case reflect.Struct:
		return newStructEncoder(t)
	}
	return nil, typeErr(t, "record must be a struct")
}

func newPtrEncoder(t reflect.Type) (encoderFunc, error) {
	elemEnc, err := encoderFor(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(e *wire.Encoder, v reflect.Value) error {
		if v.IsNil() {
			return elemEnc(e, reflect.Zero(t.Elem()))
		}
		return elemEnc(e, v.Elem())
	}
	return fn, nil
}

// newStructEncoder compiles the packing loop for the record type t.
func newStructEncoder(t reflect.Type) (encoderFunc, error) {
	sc, err := schemaFor(t)
	if err != nil {
		return nil, err
	}

	type step struct {
		f   *field
		enc encoderFunc // nil for bit fields, which pack in line
	}
	var steps []step
	for _, f := range sc.Fields {
		s := step{f: f}
		if f.Kind != kindBits {
			s.enc, err = newFieldEncoder(f)
			if err != nil {
				return nil, err
			}
		}
		steps = append(steps, s)
	}

	fn := func(e *wire.Encoder, v reflect.Value) error {
		var bits wire.BitWriter
		for _, s := range steps {
			if s.f.Cond != nil && !s.f.Cond.eval(v) {
				continue
			}
			if s.f.Kind == kindBits {
				bits.Put(v.Field(s.f.Index).Uint(), s.f.Bits, s.f.BitAt)
				continue
			}
			bits.Flush(e)
			if err := s.enc(e, v.Field(s.f.Index)); err != nil {
				return err
			}
		}
		bits.Flush(e)
		return nil
	}
	return fn, nil
}

// newFieldEncoder compiles the encoder for a single non-bit field.
// The returned func is handed the field's value, not the whole
// record.
func newFieldEncoder(f *field) (encoderFunc, error) {
	switch f.Kind {
	case kindUint:
		return newUintEncoder(f), nil
	case kindBytes:
		return newBytesEncoder(f), nil
	case kindRest:
		return newRestEncoder(f), nil
	case kindNested:
		return encoderFor(f.Type)
	}
	panic("unhandled field kind")
}

func newUintEncoder(f *field) encoderFunc {
	ord := f.Order
	switch f.Bits {
	case 8:
		return func(e *wire.Encoder, v reflect.Value) error {
			e.Uint8(uint8(v.Uint()))
			return nil
		}
	case 16:
		return func(e *wire.Encoder, v reflect.Value) error {
			e.Uint16(uint16(v.Uint()), ord)
			return nil
		}
	case 32:
		return func(e *wire.Encoder, v reflect.Value) error {
			e.Uint32(uint32(v.Uint()), ord)
			return nil
		}
	case 64:
		return func(e *wire.Encoder, v reflect.Value) error {
			e.Uint64(v.Uint(), ord)
			return nil
		}
	default:
		panic("invalid newUintEncoder width")
	}
}

func newBytesEncoder(f *field) encoderFunc {
	name, want := f.Name, f.Len
	switch f.Type.Kind() {
	case reflect.Array:
		return func(e *wire.Encoder, v reflect.Value) error {
			if v.CanAddr() {
				e.Write(v.Slice(0, want).Bytes())
				return nil
			}
			bs := make([]byte, want)
			reflect.Copy(reflect.ValueOf(bs), v)
			e.Write(bs)
			return nil
		}
	case reflect.Slice:
		return func(e *wire.Encoder, v reflect.Value) error {
			if v.Len() != want {
				return fmt.Errorf("field %s: fixed %d byte layout, value holds %d bytes", name, want, v.Len())
			}
			e.Write(v.Bytes())
			return nil
		}
	default:
		return func(e *wire.Encoder, v reflect.Value) error {
			if v.Len() != want {
				return fmt.Errorf("field %s: fixed %d byte layout, value holds %d bytes", name, want, v.Len())
			}
			e.String(v.String())
			return nil
		}
	}
}

func newRestEncoder(f *field) encoderFunc {
	if f.Type.Kind() == reflect.String {
		return func(e *wire.Encoder, v reflect.Value) error {
			e.String(v.String())
			return nil
		}
	}
	return func(e *wire.Encoder, v reflect.Value) error {
		e.Write(v.Bytes())
		return nil
	}
}
