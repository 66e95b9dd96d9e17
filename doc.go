// Package packet converts between Go structs and the packed binary
// layouts used by network protocols.
//
// A record is a struct whose exported fields each describe their
// wire layout in a packet struct tag. Fields pack in declaration
// order, with no implicit padding or framing, so a record reads like
// the protocol diagram it implements:
//
//	type UDPHeader struct {
//		SrcPort  uint16 `packet:"16"`
//		DstPort  uint16 `packet:"16"`
//		Length   uint16 `packet:"16,min=8"`
//		Checksum uint16 `packet:"16"`
//	}
//
// [Marshal] packs a record into bytes, [Unmarshal] parses bytes back
// into one, and [Checksum] computes the RFC 1071 Internet checksum
// of a record's encoding.
//
// # Layouts
//
// Each tag is a comma separated list of options, exactly one of
// which must be a layout:
//
//   - "8", "16", "32" or "64" lays the field out as an unsigned
//     integer of that many bits, big endian unless the little option
//     is also given. The Go field must be the uint type of the same
//     width. The single letter codes B, H, I and Q are accepted as
//     aliases for the four widths.
//   - "bytes" copies the field's bytes to the wire verbatim. On a
//     byte array the wire length is the array length. On a byte
//     slice or string the field is variable length and covers the
//     whole rest of the buffer, which also means it only makes sense
//     as the last field. An explicit length, "bytes=4", makes a
//     slice or string field fixed length instead.
//   - "bits=N" lays the field out as an N bit run within a bit
//     group, at the group bit offset given by a following "at=M"
//     option. Consecutive bits fields of a record share one group:
//     the group ends at the next non-bit field, packing into just
//     enough bytes to reach the highest bit used, least significant
//     byte first. Offsets that overlap are ORed together.
//   - "nested" lays out another record in line, with no framing. The
//     Go field must be a struct or a pointer to one. A nil pointer
//     packs as the nested record's zero value, and unpacking
//     allocates as needed.
//
// The byte order options "little" and "big" apply to integer fields
// wider than 8 bits.
//
// # Conditionals
//
// The "if=Field==1" option makes a field optional: it is packed and
// unpacked only when the comparison against the named integer field
// of the same record holds, and otherwise occupies no bytes. The
// operators ==, !=, <, >, <= and >= are accepted, with an unsigned
// integer literal on the right hand side. This expresses formats
// like GRE, whose header fields are present only when their flag
// bits are set.
//
// When unpacking, the conditional sees the fields decoded before the
// gated field. Referencing a field declared later compares against
// its zero value, so conditionals should name fields that appear
// earlier in the record.
//
// # Validation
//
// The remaining options declare constraints that run while
// unpacking, as each field's value is stored. min=N and max=N bound
// an integer field, in=A|B|C and notin=A|B|C test membership, and
// pattern=RE matches a string or byte slice field against an
// anchored regular expression. pattern must be the last option in
// its tag. The first failed constraint aborts the parse with a
// [ValidationError].
//
// Constraints only run when unpacking. Packing writes whatever
// values the record holds.
//
// # Resource limits
//
// Unmarshal refuses inputs larger than a maximum buffer size and
// records nested deeper than a maximum depth, so that a parser
// exposed to the network fails fast on hostile input. The process
// wide defaults can be replaced with [SetLimits], or per call with
// [UnmarshalWithLimits].
package packet
