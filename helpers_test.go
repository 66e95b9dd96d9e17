package packet

// Point is a record with two plain integer fields.
type Point struct {
	X uint16 `packet:"16"`
	Y uint16 `packet:"16"`
}

// Widths is a record covering every integer width.
type Widths struct {
	A uint8  `packet:"8"`
	B uint16 `packet:"16"`
	C uint32 `packet:"32"`
	D uint64 `packet:"64"`
}

// Codes declares the same layout as Widths using the single letter
// format codes.
type Codes struct {
	A uint8  `packet:"B"`
	B uint16 `packet:"H"`
	C uint32 `packet:"I"`
	D uint64 `packet:"Q"`
}

// Mixed is a record with both byte orders.
type Mixed struct {
	BE uint32 `packet:"32"`
	LE uint32 `packet:"32,little"`
}

// Blob is a record with fixed and variable length byte strings.
type Blob struct {
	Tag  [4]byte `packet:"bytes"`
	Name string  `packet:"bytes=3"`
	Rest []byte  `packet:"bytes"`
}

// Inner is a record used as a nested field.
type Inner struct {
	V uint16 `packet:"16"`
}

// Outer is a record with a nested record by value.
type Outer struct {
	Kind  uint8 `packet:"8"`
	Inner Inner `packet:"nested"`
}

// OuterPtr is a record with a nested record by pointer.
type OuterPtr struct {
	Kind  uint8  `packet:"8"`
	Inner *Inner `packet:"nested"`
}

// Framed is a record that embeds another record.
type Framed struct {
	Point `packet:"nested"`
	Z     uint8 `packet:"8"`
}

// Nibbles is a record whose two bit fields share one byte.
type Nibbles struct {
	Hi uint8 `packet:"bits=4,at=4"`
	Lo uint8 `packet:"bits=4,at=0"`
}

// FlagWord is a record whose bit group spans two bytes.
type FlagWord struct {
	F0   uint8 `packet:"bits=1,at=0"`
	F3   uint8 `packet:"bits=1,at=3"`
	Nib  uint8 `packet:"bits=4,at=8"`
	Tail uint8 `packet:"8"`
}

// TwoGroups is a record with two bit groups separated by a plain
// field.
type TwoGroups struct {
	A   uint8 `packet:"bits=4,at=0"`
	Sep uint8 `packet:"8"`
	B   uint8 `packet:"bits=4,at=0"`
}

// WideBits is a record whose single bit field fills a whole group.
type WideBits struct {
	V uint64 `packet:"bits=64,at=0"`
}

// Cond is a record with a field that is only on the wire when a flag
// field says so.
type Cond struct {
	Flags uint8  `packet:"8"`
	Key   uint32 `packet:"32,if=Flags==1"`
	Tail  uint8  `packet:"8"`
}

// Guards is a record exercising the comparison operators.
type Guards struct {
	N  uint8 `packet:"8"`
	Lt uint8 `packet:"8,if=N<5"`
	Ge uint8 `packet:"8,if=N>=5"`
	Ne uint8 `packet:"8,if=N!=0"`
}

// LateCond is a record whose conditional references a field declared
// after it.
type LateCond struct {
	A uint8 `packet:"8,if=B==1"`
	B uint8 `packet:"8"`
}

// Checked is a record with validation constraints on every field.
type Checked struct {
	Len  uint8  `packet:"8,min=10,max=100"`
	Kind uint8  `packet:"8,in=1|2|3"`
	Skip uint8  `packet:"8,notin=7|9"`
	Name string `packet:"bytes,pattern=[a-z]+"`
}

// Version is a record whose pattern constraint contains a comma.
type Version struct {
	V string `packet:"bytes,pattern=v[0-9]{1,3}"`
}

// D0, D1 and D2 nest records three levels deep.
type D0 struct {
	V uint8 `packet:"8"`
}

type D1 struct {
	D D0 `packet:"nested"`
}

type D2 struct {
	D D1 `packet:"nested"`
}

// Loop is a self-referential record that has no finite wire layout.
type Loop struct {
	Next *Loop `packet:"nested"`
}

// Echo is a record shaped like an ICMP echo header, with a checksum
// field.
type Echo struct {
	Type     uint8  `packet:"8"`
	Code     uint8  `packet:"8"`
	Checksum uint16 `packet:"16"`
	ID       uint16 `packet:"16"`
	Seq      uint16 `packet:"16"`
}

func ptr[T any](v T) *T {
	return &v
}
