package headers

// GRE is a GRE header, RFC 2784 with the RFC 2890 key and sequence
// extensions. The Checksum, Key and Sequence fields are on the wire
// only when their presence bits are set, so the header is 4 bytes in
// the common case and grows with each extension.
type GRE struct {
	ChecksumPresent uint8 `packet:"bits=1,at=7"`
	RoutingPresent  uint8 `packet:"bits=1,at=6"`
	KeyPresent      uint8 `packet:"bits=1,at=5"`
	SequencePresent uint8 `packet:"bits=1,at=4"`
	Reserved        uint8 `packet:"bits=4,at=0"`
	Flags           uint8 `packet:"bits=5,at=11"`
	Version         uint8 `packet:"bits=3,at=8"`

	Protocol EtherType `packet:"16"`

	Checksum  uint16 `packet:"16,if=ChecksumPresent==1"`
	Reserved1 uint16 `packet:"16,if=ChecksumPresent==1"`
	Key       uint32 `packet:"32,if=KeyPresent==1"`
	Sequence  uint32 `packet:"32,if=SequencePresent==1"`
}

// NewGRE returns a plain RFC 2784 header for the given payload
// protocol, with no extensions present.
func NewGRE(proto EtherType) GRE {
	return GRE{Protocol: proto}
}

// NewGREKeyed returns a header carrying an RFC 2890 key, as used by
// tunnels that multiplex several flows over one endpoint pair.
func NewGREKeyed(proto EtherType, key uint32) GRE {
	return GRE{KeyPresent: 1, Protocol: proto, Key: key}
}
