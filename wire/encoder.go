package wire

// An Encoder builds a packet by appending encoded fields to a byte
// slice.
//
// Methods append at the current end of the output with no framing or
// alignment. Multi-byte integers are written in the byte order given
// per call; bit-packed fields are staged in a [BitWriter] and only
// reach the output when the group is flushed.
type Encoder struct {
	// Out is the encoded output.
	Out []byte
}

// Write writes bs as-is to the output.
func (e *Encoder) Write(bs []byte) {
	e.Out = append(e.Out, bs...)
}

// String writes the raw bytes of s to the output, with no length
// prefix or terminator.
func (e *Encoder) String(s string) {
	e.Out = append(e.Out, s...)
}

// Uint8 writes a uint8.
func (e *Encoder) Uint8(u8 uint8) {
	e.Out = append(e.Out, u8)
}

// Uint16 writes a uint16 in the given byte order.
func (e *Encoder) Uint16(u16 uint16, ord ByteOrder) {
	e.Out = ord.AppendUint16(e.Out, u16)
}

// Uint32 writes a uint32 in the given byte order.
func (e *Encoder) Uint32(u32 uint32, ord ByteOrder) {
	e.Out = ord.AppendUint32(e.Out, u32)
}

// Uint64 writes a uint64 in the given byte order.
func (e *Encoder) Uint64(u64 uint64, ord ByteOrder) {
	e.Out = ord.AppendUint64(e.Out, u64)
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.Out)
}
