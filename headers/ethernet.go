package headers

import "fmt"

// An EtherType identifies the protocol carried in an Ethernet frame.
// GRE reuses the same registry for its Protocol field.
type EtherType uint16

const (
	TypeIPv4 EtherType = 0x0800
	TypeARP  EtherType = 0x0806
	TypeVLAN EtherType = 0x8100
	TypeIPv6 EtherType = 0x86DD
)

func (t EtherType) String() string {
	switch t {
	case TypeIPv4:
		return "IPv4"
	case TypeARP:
		return "ARP"
	case TypeVLAN:
		return "VLAN"
	case TypeIPv6:
		return "IPv6"
	}
	return fmt.Sprintf("EtherType(%#04x)", uint16(t))
}

// Ethernet is an Ethernet II frame header.
type Ethernet struct {
	Dst  [6]byte   `packet:"bytes"`
	Src  [6]byte   `packet:"bytes"`
	Type EtherType `packet:"16"`
}
