package headers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danderson/packet"
	"github.com/google/go-cmp/cmp"
)

func roundTrip[T any](t *testing.T, h T, want []byte) {
	t.Helper()
	bs, err := packet.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(bs, want) {
		t.Fatalf("wrong wire encoding:\n  got:  % x\n  want: % x", bs, want)
	}
	var got T
	if err := packet.Unmarshal(bs, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(got, h); diff != "" {
		t.Fatalf("round trip changed the header (-got+want):\n%s", diff)
	}
}

func TestEthernet(t *testing.T) {
	h := Ethernet{
		Dst:  [6]byte{0x00, 0x1b, 0x63, 0x84, 0x45, 0xe6},
		Src:  [6]byte{0x00, 0x1f, 0x5b, 0xce, 0x3a, 0x29},
		Type: TypeIPv4,
	}
	roundTrip(t, h, []byte{
		0x00, 0x1b, 0x63, 0x84, 0x45, 0xe6,
		0x00, 0x1f, 0x5b, 0xce, 0x3a, 0x29,
		0x08, 0x00,
	})
}

func TestARP(t *testing.T) {
	req := NewARPRequest(
		[6]byte{0x00, 0x1f, 0x5b, 0xce, 0x3a, 0x29},
		[4]byte{192, 168, 0, 1},
		[4]byte{192, 168, 0, 199},
	)
	roundTrip(t, req, []byte{
		0x00, 0x01, // Ethernet
		0x08, 0x00, // IPv4
		0x06, 0x04, // address lengths
		0x00, 0x01, // request
		0x00, 0x1f, 0x5b, 0xce, 0x3a, 0x29,
		0xc0, 0xa8, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xc0, 0xa8, 0x00, 0xc7,
	})
}

func TestARPBadOpcode(t *testing.T) {
	bs, err := packet.Marshal(NewARPRequest([6]byte{}, [4]byte{}, [4]byte{}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	bs[7] = 5
	var got ARP
	var verr packet.ValidationError
	if err := packet.Unmarshal(bs, &got); !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if verr.Field != "Opcode" {
		t.Fatalf("wrong field %q in %v", verr.Field, verr)
	}
}

// ipv4Wire is a captured UDP carrying IPv4 header, checksum intact.
var ipv4Wire = []byte{
	0x45, 0x00, 0x00, 0x73, 0x00, 0x00, 0x40, 0x00,
	0x40, 0x11, 0xb8, 0x61, 0xc0, 0xa8, 0x00, 0x01,
	0xc0, 0xa8, 0x00, 0xc7,
}

func TestIPv4(t *testing.T) {
	want := IPv4{
		Version:   4,
		IHL:       5,
		TotalLen:  0x73,
		FlagsFrag: DontFragment,
		TTL:       64,
		Protocol:  ProtoUDP,
		Checksum:  0xB861,
		Src:       [4]byte{192, 168, 0, 1},
		Dst:       [4]byte{192, 168, 0, 199},
	}
	roundTrip(t, want, ipv4Wire)

	// An intact header sums to zero, and recomputing its checksum
	// gives back the wire value.
	if got := packet.Sum(ipv4Wire); got != 0 {
		t.Fatalf("Sum of intact header = %#04x, want 0", got)
	}
	ck, err := packet.Checksum(want)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	if ck != want.Checksum {
		t.Fatalf("Checksum = %#04x, want %#04x", ck, want.Checksum)
	}
}

func TestNewIPv4(t *testing.T) {
	h, err := NewIPv4(ProtoUDP, [4]byte{192, 168, 0, 1}, [4]byte{192, 168, 0, 199}, 0x73-20)
	if err != nil {
		t.Fatalf("NewIPv4 failed: %v", err)
	}
	var want IPv4
	if err := packet.Unmarshal(ipv4Wire, &want); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(h, want); diff != "" {
		t.Fatalf("built header differs from capture (-got+want):\n%s", diff)
	}

	if _, err := NewIPv4(ProtoUDP, [4]byte{}, [4]byte{}, 0x10000); err == nil {
		t.Fatal("NewIPv4 accepted an oversized payload")
	}
}

func TestICMPEcho(t *testing.T) {
	payload := []byte("abcdefgh")
	h, err := NewICMPEcho(0x1234, 1, payload)
	if err != nil {
		t.Fatalf("NewICMPEcho failed: %v", err)
	}
	if h.Checksum != 0x5435 {
		t.Fatalf("Checksum = %#04x, want 0x5435", h.Checksum)
	}
	roundTrip(t, h, []byte{0x08, 0x00, 0x54, 0x35, 0x12, 0x34, 0x00, 0x01})

	if !h.Verify(payload) {
		t.Fatal("Verify rejected an intact message")
	}
	if h.Verify([]byte("abcdefgx")) {
		t.Fatal("Verify accepted a corrupted payload")
	}
}

func TestUDP(t *testing.T) {
	var (
		src     = [4]byte{192, 168, 0, 1}
		dst     = [4]byte{192, 168, 0, 199}
		payload = []byte("hi")
	)
	h, err := NewUDP(8080, 80, src, dst, payload)
	if err != nil {
		t.Fatalf("NewUDP failed: %v", err)
	}
	if h.Length != 10 {
		t.Fatalf("Length = %d, want 10", h.Length)
	}
	if h.Checksum != 0xD577 {
		t.Fatalf("Checksum = %#04x, want 0xd577", h.Checksum)
	}
	roundTrip(t, h, []byte{0x1f, 0x90, 0x00, 0x50, 0x00, 0x0a, 0xd5, 0x77})

	// Receiver side check: recompute and compare.
	ck, err := h.PseudoChecksum(src, dst, payload)
	if err != nil {
		t.Fatalf("PseudoChecksum failed: %v", err)
	}
	if ck != h.Checksum {
		t.Fatalf("recomputed checksum %#04x, want %#04x", ck, h.Checksum)
	}
}

func TestTCP(t *testing.T) {
	syn := NewSYN(50000, 80, 0x12345678, 0xFAF0)
	roundTrip(t, syn, []byte{
		0xc3, 0x50, 0x00, 0x50,
		0x12, 0x34, 0x56, 0x78,
		0x00, 0x00, 0x00, 0x00,
		0x50, 0x02, 0xfa, 0xf0,
		0x00, 0x00, 0x00, 0x00,
	})

	var (
		src = [4]byte{10, 0, 0, 1}
		dst = [4]byte{10, 0, 0, 2}
	)
	ck, err := syn.PseudoChecksum(src, dst, nil)
	if err != nil {
		t.Fatalf("PseudoChecksum failed: %v", err)
	}
	syn.Checksum = ck

	// With the checksum installed, the covered bytes sum to zero.
	bs, err := packet.Marshal(syn)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := pseudoSum4(ProtoTCP, src, dst, len(bs), bs)
	if err != nil {
		t.Fatalf("pseudoSum4 failed: %v", err)
	}
	if got != 0 {
		t.Fatalf("sum of checksummed segment = %#04x, want 0", got)
	}
}

func TestGRE(t *testing.T) {
	tests := []struct {
		name string
		h    GRE
		want []byte
	}{
		{"plain", NewGRE(TypeIPv4), []byte{
			0x00, 0x00, 0x08, 0x00,
		}},
		{"keyed", NewGREKeyed(TypeIPv4, 0xDEADBEEF), []byte{
			0x20, 0x00, 0x08, 0x00,
			0xde, 0xad, 0xbe, 0xef, // .Key
		}},
		{"checksum and sequence", GRE{
			ChecksumPresent: 1,
			SequencePresent: 1,
			Protocol:        TypeIPv4,
			Checksum:        0x1234,
			Sequence:        7,
		}, []byte{
			0x90, 0x00, 0x08, 0x00,
			0x12, 0x34, 0x00, 0x00, // .Checksum, .Reserved1
			0x00, 0x00, 0x00, 0x07, // .Sequence
		}},
		{"pptp version", GRE{Version: 1, Protocol: 0x880B}, []byte{
			0x00, 0x01, 0x88, 0x0b,
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roundTrip(t, tc.h, tc.want)
		})
	}
}

func TestGREAbsentFieldsStayZero(t *testing.T) {
	// A keyed header's bytes must not bleed into Checksum or
	// Sequence when unpacked.
	bs, err := packet.Marshal(NewGREKeyed(TypeIPv4, 0xDEADBEEF))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got GRE
	if err := packet.Unmarshal(bs, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Checksum != 0 || got.Reserved1 != 0 || got.Sequence != 0 {
		t.Fatalf("absent fields unpacked nonzero: %+v", got)
	}
	if got.Key != 0xDEADBEEF {
		t.Fatalf("Key = %#08x, want 0xdeadbeef", got.Key)
	}
}

func TestDNS(t *testing.T) {
	query := NewDNSQuery(0xDB42)
	roundTrip(t, query, []byte{
		0xdb, 0x42, 0x01, 0x00,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	})

	// NXDOMAIN response to the same query.
	var resp DNS
	raw := []byte{
		0xdb, 0x42, 0x81, 0x83,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	if err := packet.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := DNS{ID: 0xDB42, QR: 1, RD: 1, RA: 1, RCode: RCodeNXDomain, QDCount: 1}
	if diff := cmp.Diff(resp, want); diff != "" {
		t.Fatalf("wrong response header (-got+want):\n%s", diff)
	}
}

func TestRegistryNames(t *testing.T) {
	if got := TypeIPv4.String(); got != "IPv4" {
		t.Fatalf("TypeIPv4.String() = %q", got)
	}
	if got := EtherType(0x1234).String(); got != "EtherType(0x1234)" {
		t.Fatalf("unknown EtherType formats as %q", got)
	}
	if got := ProtoUDP.String(); got != "UDP" {
		t.Fatalf("ProtoUDP.String() = %q", got)
	}
	if got := IPProto(99).String(); got != "IPProto(99)" {
		t.Fatalf("unknown IPProto formats as %q", got)
	}
}
