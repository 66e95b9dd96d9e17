// Package rawsock sends and receives whole link layer frames over a
// raw packet socket. It carries bytes only, marshalling belongs to
// the packet package.
package rawsock

import "github.com/danderson/packet/wire"

// A Conn is a raw link layer connection bound to one network
// interface.
type Conn interface {
	// Send writes one frame.
	Send(bs []byte) (int, error)
	// Receive reads one frame into a fresh buffer, truncated to at
	// most max bytes.
	Receive(max int) ([]byte, error)
	Close() error
}

// htons returns v in the byte order the kernel expects in sockaddr
// protocol fields, network order regardless of the host.
func htons(v uint16) uint16 {
	var bs [2]byte
	wire.BigEndian.PutUint16(bs[:], v)
	return wire.NativeEndian.Uint16(bs[:])
}
