package headers

// DNS header opcodes and response codes.
const (
	OpQuery  = 0
	OpIQuery = 1
	OpStatus = 2

	RCodeOK       = 0
	RCodeFormErr  = 1
	RCodeServFail = 2
	RCodeNXDomain = 3
)

// DNS is a DNS message header. The question and record sections that
// follow use a self-describing format outside this package's scope.
type DNS struct {
	ID uint16 `packet:"16"`

	QR     uint8 `packet:"bits=1,at=7"`
	Opcode uint8 `packet:"bits=4,at=3"`
	AA     uint8 `packet:"bits=1,at=2"`
	TC     uint8 `packet:"bits=1,at=1"`
	RD     uint8 `packet:"bits=1,at=0"`
	RA     uint8 `packet:"bits=1,at=15"`
	Z      uint8 `packet:"bits=3,at=12"`
	RCode  uint8 `packet:"bits=4,at=8"`

	QDCount uint16 `packet:"16"`
	ANCount uint16 `packet:"16"`
	NSCount uint16 `packet:"16"`
	ARCount uint16 `packet:"16"`
}

// NewDNSQuery returns the header of a single-question recursive
// query.
func NewDNSQuery(id uint16) DNS {
	return DNS{ID: id, RD: 1, QDCount: 1}
}
