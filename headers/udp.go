package headers

import (
	"fmt"

	"github.com/danderson/packet"
)

// UDP is a UDP datagram header.
type UDP struct {
	SrcPort  uint16 `packet:"16"`
	DstPort  uint16 `packet:"16"`
	Length   uint16 `packet:"16"`
	Checksum uint16 `packet:"16"`
}

// NewUDP returns a header for the given payload with Length and the
// IPv4 pseudo header checksum filled in.
func NewUDP(srcPort, dstPort uint16, src, dst [4]byte, payload []byte) (UDP, error) {
	if len(payload) > 0xFFFF-8 {
		return UDP{}, fmt.Errorf("payload length %d out of range", len(payload))
	}
	h := UDP{SrcPort: srcPort, DstPort: dstPort, Length: uint16(8 + len(payload))}
	ck, err := h.PseudoChecksum(src, dst, payload)
	if err != nil {
		return UDP{}, err
	}
	if ck == 0 {
		// RFC 768 reserves zero to mean "no checksum", a computed
		// zero goes out as all ones.
		ck = 0xFFFF
	}
	h.Checksum = ck
	return h, nil
}

// PseudoChecksum returns the datagram checksum over the IPv4 pseudo
// header, the header itself and the payload. The header's Checksum
// field is taken as zero.
func (h UDP) PseudoChecksum(src, dst [4]byte, payload []byte) (uint16, error) {
	h.Checksum = 0
	bs, err := packet.Marshal(h)
	if err != nil {
		return 0, err
	}
	return pseudoSum4(ProtoUDP, src, dst, len(bs)+len(payload), bs, payload)
}
