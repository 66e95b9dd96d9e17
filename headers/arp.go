package headers

// ARP opcodes.
const (
	ARPRequest = 1
	ARPReply   = 2
)

// ARP is an ARP packet for IPv4 over Ethernet, the only flavor in
// common use. Unpacking rejects opcodes other than request and reply.
type ARP struct {
	HardwareType uint16  `packet:"16"`
	ProtocolType uint16  `packet:"16"`
	HardwareLen  uint8   `packet:"8"`
	ProtocolLen  uint8   `packet:"8"`
	Opcode       uint16  `packet:"16,in=1|2"`
	SenderMAC    [6]byte `packet:"bytes"`
	SenderIP     [4]byte `packet:"bytes"`
	TargetMAC    [6]byte `packet:"bytes"`
	TargetIP     [4]byte `packet:"bytes"`
}

// NewARPRequest returns a who-has request for target, asked on behalf
// of the given sender addresses.
func NewARPRequest(senderMAC [6]byte, senderIP, targetIP [4]byte) ARP {
	return ARP{
		HardwareType: 1, // Ethernet
		ProtocolType: uint16(TypeIPv4),
		HardwareLen:  6,
		ProtocolLen:  4,
		Opcode:       ARPRequest,
		SenderMAC:    senderMAC,
		SenderIP:     senderIP,
		TargetIP:     targetIP,
	}
}
