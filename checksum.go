package packet

import (
	"errors"
	"reflect"

	"github.com/danderson/packet/wire"
)

// Checksum returns the ones complement checksum (the Internet
// checksum of RFC 1071) of the wire encoding of the record v. If the
// record has a field named Checksum, its value is taken as zero
// during the computation, which makes Checksum usable both to fill
// in an outgoing record and to verify a received one: a received
// record checksums to its own Checksum field when intact.
func Checksum(v any) (uint16, error) {
	if v == nil {
		return 0, errors.New("can't checksum nil interface")
	}
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			val = reflect.New(val.Type().Elem()).Elem()
		} else {
			val = val.Elem()
		}
	}
	t := val.Type()
	sc, err := schemaFor(t)
	if err != nil {
		return 0, err
	}
	enc, err := encoderFor(t)
	if err != nil {
		return 0, err
	}
	// Work on a copy so the caller's record keeps its Checksum.
	clone := reflect.New(t).Elem()
	clone.Set(val)
	for _, f := range sc.Fields {
		if f.Name == "Checksum" {
			clone.Field(f.Index).SetZero()
		}
	}
	var e wire.Encoder
	if err := enc(&e, clone); err != nil {
		return 0, err
	}
	return Sum(e.Out), nil
}

// Sum returns the RFC 1071 checksum of the given byte runs, treated
// as a single concatenated sequence. A sequence of odd length is
// padded with a zero byte. Callers building checksums that cover a
// pseudo header can pass it as a separate run.
func Sum(runs ...[]byte) uint16 {
	var (
		sum  uint32
		prev byte
		odd  bool
	)
	for _, bs := range runs {
		for _, b := range bs {
			if odd {
				sum += uint32(prev)<<8 | uint32(b)
				odd = false
			} else {
				prev, odd = b, true
			}
		}
	}
	if odd {
		sum += uint32(prev) << 8
	}
	for sum>>16 != 0 {
		sum = sum>>16 + sum&0xffff
	}
	return ^uint16(sum)
}
