//go:build !linux

package rawsock

import (
	"fmt"
	"runtime"
)

// Dial opens a raw connection on the named interface. Packet sockets
// only exist on Linux, other platforms always return an error.
func Dial(ifname string) (Conn, error) {
	return nil, fmt.Errorf("raw packet sockets are not available on %s", runtime.GOOS)
}
