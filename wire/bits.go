package wire

// A BitWriter packs a run of consecutive sub-byte fields into a
// shared group of bytes.
//
// Fields are ORed into a 64-bit accumulator at their declared bit
// offsets, so a group is at most 64 bits wide. Offsets are not
// checked for overlap; overlapping fields OR together.
type BitWriter struct {
	acc  uint64
	high int
}

// Put stores the low bits of v at bit offset at within the group.
// Bits of v above the field's width are discarded.
func (w *BitWriter) Put(v uint64, bits, at int) {
	w.acc |= (v & mask(bits)) << at
	if n := at + bits; n > w.high {
		w.high = n
	}
}

// Active reports whether the writer holds a pending group.
func (w *BitWriter) Active() bool {
	return w.high > 0
}

// Flush appends the pending group to e, least significant byte
// first, sized to the highest bit any field touched, and resets the
// writer. A writer with no pending group appends nothing.
func (w *BitWriter) Flush(e *Encoder) {
	for n := (w.high + 7) / 8; n > 0; n-- {
		e.Uint8(uint8(w.acc))
		w.acc >>= 8
	}
	w.acc, w.high = 0, 0
}

// A BitReader unpacks a run of consecutive sub-byte fields from a
// shared group of bytes, pulling bytes from the decoder only as the
// declared offsets require them.
type BitReader struct {
	acc uint64
	n   int
}

// Get extracts a bits-wide value at bit offset at within the group,
// reading further group bytes from d as needed. Bytes already read
// for earlier fields of the group are reused.
func (r *BitReader) Get(d *Decoder, bits, at int) (uint64, error) {
	need := (at + bits + 7) / 8
	for r.n < need {
		b, err := d.Uint8()
		if err != nil {
			return 0, err
		}
		r.acc |= uint64(b) << (8 * r.n)
		r.n++
	}
	return (r.acc >> at) & mask(bits), nil
}

// Active reports whether the reader holds group bytes.
func (r *BitReader) Active() bool {
	return r.n > 0
}

// Consumed returns the number of group bytes read so far.
func (r *BitReader) Consumed() int {
	return r.n
}

// Reset discards the group.
func (r *BitReader) Reset() {
	r.acc, r.n = 0, 0
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}
