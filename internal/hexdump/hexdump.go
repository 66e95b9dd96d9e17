// Package hexdump renders byte buffers as offset/hex/ASCII gutter
// dumps for the CLI.
package hexdump

import (
	"fmt"
	"strings"
)

// Dump returns bs formatted 16 bytes to a line, with a hex offset
// gutter on the left and an ASCII column on the right. Bytes outside
// printable ASCII show as dots.
func Dump(bs []byte) string {
	var b strings.Builder
	for off := 0; off < len(bs); off += 16 {
		line := bs[off:min(off+16, len(bs))]
		fmt.Fprintf(&b, "%04x  ", off)
		for i := 0; i < 16; i++ {
			if i == 8 {
				b.WriteByte(' ')
			}
			if i < len(line) {
				fmt.Fprintf(&b, "%02x ", line[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString(" |")
		for _, c := range line {
			if c < ' ' || c > '~' {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteString("|\n")
	}
	return b.String()
}
