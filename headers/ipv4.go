package headers

import (
	"fmt"

	"github.com/danderson/packet"
)

// An IPProto identifies the protocol carried in an IPv4 packet.
type IPProto uint8

const (
	ProtoICMP IPProto = 1
	ProtoTCP  IPProto = 6
	ProtoUDP  IPProto = 17
	ProtoGRE  IPProto = 47
)

func (p IPProto) String() string {
	switch p {
	case ProtoICMP:
		return "ICMP"
	case ProtoTCP:
		return "TCP"
	case ProtoUDP:
		return "UDP"
	case ProtoGRE:
		return "GRE"
	}
	return fmt.Sprintf("IPProto(%d)", uint8(p))
}

// Flag bits and the fragment offset mask within [IPv4.FlagsFrag].
const (
	DontFragment  = 0x4000
	MoreFragments = 0x2000
	FragOffMask   = 0x1FFF
)

// IPv4 is an IPv4 header without options.
type IPv4 struct {
	Version   uint8   `packet:"bits=4,at=4"`
	IHL       uint8   `packet:"bits=4,at=0"`
	TOS       uint8   `packet:"8"`
	TotalLen  uint16  `packet:"16"`
	ID        uint16  `packet:"16"`
	FlagsFrag uint16  `packet:"16"`
	TTL       uint8   `packet:"8"`
	Protocol  IPProto `packet:"8"`
	Checksum  uint16  `packet:"16"`
	Src       [4]byte `packet:"bytes"`
	Dst       [4]byte `packet:"bytes"`
}

// NewIPv4 returns an unfragmentable header for a payload of the given
// protocol and length, addressed src to dst, with the header checksum
// filled in.
func NewIPv4(proto IPProto, src, dst [4]byte, payloadLen int) (IPv4, error) {
	if payloadLen < 0 || payloadLen > 0xFFFF-20 {
		return IPv4{}, fmt.Errorf("payload length %d out of range", payloadLen)
	}
	h := IPv4{
		Version:   4,
		IHL:       5,
		TotalLen:  uint16(20 + payloadLen),
		FlagsFrag: DontFragment,
		TTL:       64,
		Protocol:  proto,
		Src:       src,
		Dst:       dst,
	}
	ck, err := packet.Checksum(h)
	if err != nil {
		return IPv4{}, err
	}
	h.Checksum = ck
	return h, nil
}

// pseudoV4 is the IPv4 pseudo header that prefixes the checksum input
// of the transport protocols.
type pseudoV4 struct {
	Src      [4]byte `packet:"bytes"`
	Dst      [4]byte `packet:"bytes"`
	Zero     uint8   `packet:"8"`
	Protocol IPProto `packet:"8"`
	Length   uint16  `packet:"16"`
}

// pseudoSum4 returns the RFC 1071 checksum of the given byte runs
// prefixed with an IPv4 pseudo header.
func pseudoSum4(proto IPProto, src, dst [4]byte, length int, runs ...[]byte) (uint16, error) {
	if length < 0 || length > 0xFFFF {
		return 0, fmt.Errorf("segment length %d out of range", length)
	}
	p := pseudoV4{Src: src, Dst: dst, Protocol: proto, Length: uint16(length)}
	bs, err := packet.Marshal(p)
	if err != nil {
		return 0, err
	}
	return packet.Sum(append([][]byte{bs}, runs...)...), nil
}
