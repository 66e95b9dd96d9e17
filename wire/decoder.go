package wire

import "io"

// A Decoder reads encoded fields off a packet byte buffer.
//
// The decoder walks the buffer with a cursor and never rewinds.
// Reads past the end of the buffer fail with [io.ErrUnexpectedEOF];
// callers that want richer truncation errors must bounds-check with
// [Decoder.Remaining] before reading.
type Decoder struct {
	// In is the buffer being decoded.
	In []byte

	off int
}

// Read consumes the next n bytes and returns them. The returned
// slice aliases the decoder's buffer.
func (d *Decoder) Read(n int) ([]byte, error) {
	if n < 0 || n > len(d.In)-d.off {
		return nil, io.ErrUnexpectedEOF
	}
	ret := d.In[d.off : d.off+n]
	d.off += n
	return ret, nil
}

// Rest consumes and returns all remaining bytes. The returned slice
// aliases the decoder's buffer.
func (d *Decoder) Rest() []byte {
	ret := d.In[d.off:]
	d.off = len(d.In)
	return ret
}

// Uint8 reads a uint8.
func (d *Decoder) Uint8() (uint8, error) {
	if d.off >= len(d.In) {
		return 0, io.ErrUnexpectedEOF
	}
	ret := d.In[d.off]
	d.off++
	return ret, nil
}

// Uint16 reads a uint16 in the given byte order.
func (d *Decoder) Uint16(ord ByteOrder) (uint16, error) {
	bs, err := d.Read(2)
	if err != nil {
		return 0, err
	}
	return ord.Uint16(bs), nil
}

// Uint32 reads a uint32 in the given byte order.
func (d *Decoder) Uint32(ord ByteOrder) (uint32, error) {
	bs, err := d.Read(4)
	if err != nil {
		return 0, err
	}
	return ord.Uint32(bs), nil
}

// Uint64 reads a uint64 in the given byte order.
func (d *Decoder) Uint64(ord ByteOrder) (uint64, error) {
	bs, err := d.Read(8)
	if err != nil {
		return 0, err
	}
	return ord.Uint64(bs), nil
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

// Len returns the total length of the input buffer.
func (d *Decoder) Len() int {
	return len(d.In)
}

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int {
	return len(d.In) - d.off
}
