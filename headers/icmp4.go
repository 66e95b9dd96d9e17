package headers

import "github.com/danderson/packet"

// ICMPv4 echo message types.
const (
	ICMPEchoReply   = 0
	ICMPEchoRequest = 8
)

// ICMPEcho is an ICMPv4 echo request or reply header. The checksum
// covers the payload as well, so [NewICMPEcho] takes it as an
// argument.
type ICMPEcho struct {
	Type     uint8  `packet:"8,in=0|8"`
	Code     uint8  `packet:"8"`
	Checksum uint16 `packet:"16"`
	ID       uint16 `packet:"16"`
	Seq      uint16 `packet:"16"`
}

// NewICMPEcho returns an echo request for the given payload, checksum
// filled in.
func NewICMPEcho(id, seq uint16, payload []byte) (ICMPEcho, error) {
	h := ICMPEcho{Type: ICMPEchoRequest, ID: id, Seq: seq}
	bs, err := packet.Marshal(h)
	if err != nil {
		return ICMPEcho{}, err
	}
	h.Checksum = packet.Sum(bs, payload)
	return h, nil
}

// Verify reports whether the header's checksum matches the header and
// payload contents.
func (h ICMPEcho) Verify(payload []byte) bool {
	bs, err := packet.Marshal(h)
	if err != nil {
		return false
	}
	return packet.Sum(bs, payload) == 0
}
