package headers

import "github.com/danderson/packet"

// TCP is a TCP segment header without options. DataOff counts 32-bit
// words from the start of the header to the payload, 5 when no
// options follow.
type TCP struct {
	SrcPort uint16 `packet:"16"`
	DstPort uint16 `packet:"16"`
	Seq     uint32 `packet:"32"`
	Ack     uint32 `packet:"32"`

	DataOff  uint8 `packet:"bits=4,at=4"`
	Reserved uint8 `packet:"bits=3,at=1"`
	NS       uint8 `packet:"bits=1,at=0"`
	CWR      uint8 `packet:"bits=1,at=15"`
	ECE      uint8 `packet:"bits=1,at=14"`
	URG      uint8 `packet:"bits=1,at=13"`
	ACK      uint8 `packet:"bits=1,at=12"`
	PSH      uint8 `packet:"bits=1,at=11"`
	RST      uint8 `packet:"bits=1,at=10"`
	SYN      uint8 `packet:"bits=1,at=9"`
	FIN      uint8 `packet:"bits=1,at=8"`

	Window   uint16 `packet:"16"`
	Checksum uint16 `packet:"16"`
	Urgent   uint16 `packet:"16"`
}

// NewSYN returns the header of an initial SYN segment.
func NewSYN(srcPort, dstPort uint16, seq uint32, window uint16) TCP {
	return TCP{
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     seq,
		DataOff: 5,
		SYN:     1,
		Window:  window,
	}
}

// PseudoChecksum returns the segment checksum over the IPv4 pseudo
// header, the header itself and the payload. The header's Checksum
// field is taken as zero.
func (h TCP) PseudoChecksum(src, dst [4]byte, payload []byte) (uint16, error) {
	h.Checksum = 0
	bs, err := packet.Marshal(h)
	if err != nil {
		return 0, err
	}
	return pseudoSum4(ProtoTCP, src, dst, len(bs)+len(payload), bs, payload)
}
