package packet

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalUnmarshal(t *testing.T) {
	type testCase struct {
		name       string
		raw        []byte
		wantDecode any
		toEncode   any
	}
	ok := func(name string, want any, raw ...byte) testCase {
		return testCase{name, raw, want, want}
	}
	asymmetric := func(name string, decoded any, toEncode any, raw ...byte) testCase {
		return testCase{name, raw, decoded, toEncode}
	}

	tests := []testCase{
		ok("integer widths",
			Widths{A: 0x01, B: 0x2345, C: 0x6789abcd, D: 0x1122334455667788},
			// .A
			0x01,
			// .B
			0x23, 0x45,
			// .C
			0x67, 0x89, 0xab, 0xcd,
			// .D
			0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88),

		ok("format codes",
			Codes{A: 0x01, B: 0x2345, C: 0x6789abcd, D: 0x1122334455667788},
			0x01,
			0x23, 0x45,
			0x67, 0x89, 0xab, 0xcd,
			0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88),

		ok("byte orders",
			Mixed{BE: 0x01020304, LE: 0x01020304},
			// .BE
			0x01, 0x02, 0x03, 0x04,
			// .LE
			0x04, 0x03, 0x02, 0x01),

		ok("byte strings",
			Blob{Tag: [4]byte{'M', 'A', 'G', '!'}, Name: "abc", Rest: []byte{1, 2, 3}},
			// .Tag
			'M', 'A', 'G', '!',
			// .Name
			'a', 'b', 'c',
			// .Rest
			1, 2, 3),

		ok("empty rest",
			Blob{Tag: [4]byte{1, 2, 3, 4}, Name: "xyz"},
			// .Tag
			1, 2, 3, 4,
			// .Name
			'x', 'y', 'z'),

		ok("nested",
			Outer{Kind: 7, Inner: Inner{V: 0x0102}},
			// .Kind
			7,
			// .Inner.V
			0x01, 0x02),

		ok("nested ptr",
			OuterPtr{Kind: 7, Inner: &Inner{V: 0x0102}},
			7,
			0x01, 0x02),

		asymmetric("nested nil ptr",
			OuterPtr{Kind: 7, Inner: &Inner{}},
			OuterPtr{Kind: 7},
			7,
			// .Inner packs as its zero value
			0x00, 0x00),

		ok("embedded",
			Framed{Point: Point{X: 1, Y: 2}, Z: 3},
			// .Point.X
			0, 1,
			// .Point.Y
			0, 2,
			// .Z
			3),

		asymmetric("record pointer",
			Point{X: 1, Y: 2},
			&Point{X: 1, Y: 2},
			0, 1,
			0, 2),

		ok("nibble group",
			Nibbles{Hi: 4, Lo: 5},
			0x45),

		ok("two byte group",
			FlagWord{F0: 1, F3: 1, Nib: 0xA, Tail: 0xFF},
			// bits 0..7: F0, F3
			0x09,
			// bits 8..11: Nib
			0x0A,
			// .Tail
			0xFF),

		ok("group closed by scalar",
			TwoGroups{A: 0xF, Sep: 0x55, B: 0x3},
			0x0F,
			0x55,
			0x03),

		ok("whole width group",
			WideBits{V: 0x0102030405060708},
			// group bytes go out least significant first
			0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01),

		ok("conditional present",
			Cond{Flags: 1, Key: 0xdeadbeef, Tail: 9},
			1,
			0xde, 0xad, 0xbe, 0xef,
			9),

		ok("conditional absent",
			Cond{Flags: 0, Tail: 9},
			0,
			9),

		ok("guard lt",
			Guards{N: 3, Lt: 1, Ne: 2},
			// N<5 and N!=0 hold, N>=5 doesn't
			3, 1, 2),

		ok("guard ge",
			Guards{N: 7, Ge: 1, Ne: 2},
			7, 1, 2),

		ok("constraints satisfied",
			Checked{Len: 50, Kind: 2, Skip: 1, Name: "abc"},
			50, 2, 1, 'a', 'b', 'c'),

		ok("pattern with comma",
			Version{V: "v42"},
			'v', '4', '2'),
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := reflect.New(reflect.TypeOf(tc.wantDecode))
			if err := Unmarshal(tc.raw, v.Interface()); err != nil {
				t.Fatalf("unmarshal failed: %v\n  raw: % x\n want: %#v", err, tc.raw, tc.wantDecode)
			}
			if diff := cmp.Diff(v.Elem().Interface(), tc.wantDecode); diff != "" {
				t.Fatalf("unmarshal wrong value (-got+want):\n%s", diff)
			}
			got, err := Marshal(tc.toEncode)
			if err != nil {
				t.Fatalf("marshal failed: %v\n  val: %#v\n want: % x", err, tc.toEncode, tc.raw)
			}
			if !bytes.Equal(got, tc.raw) {
				t.Fatalf("marshal wrong encoding:\n  val: %#v\n  got: % x\n want: % x", tc.toEncode, got, tc.raw)
			}
		})
	}
}

func TestMarshalAppend(t *testing.T) {
	got, err := MarshalAppend([]byte{0xAA, 0xBB}, Point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := []byte{0xAA, 0xBB, 0, 1, 0, 2}
	if !bytes.Equal(got, want) {
		t.Fatalf("wrong encoding, got % x want % x", got, want)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	v := Cond{Flags: 1, Key: 12345, Tail: 6}
	first, err := Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Marshal(v)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !bytes.Equal(got, first) {
			t.Fatalf("marshal not deterministic, got % x then % x", first, got)
		}
	}
}

func TestMarshalErrors(t *testing.T) {
	tests := []struct {
		name     string
		v        any
		wantType bool // want a TypeError
	}{
		{"nil interface", nil, false},
		{"not a struct", 42, true},
		{"slice of records", []Point{{X: 1}}, true},
		{"map", map[string]int{"a": 1}, true},
		{"recursive record", Loop{}, true},
		{"recursive record ptr", &Loop{Next: &Loop{}}, true},
		{"wrong value length", Blob{Name: "toolong"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.v)
			if err == nil {
				t.Fatalf("marshal succeeded, wanted error\n  val: %#v\n  got: % x", tc.v, got)
			}
			var terr TypeError
			if tc.wantType && !errors.As(err, &terr) {
				t.Fatalf("wrong error type: %v", err)
			}
		})
	}
}
