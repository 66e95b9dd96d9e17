//go:build linux

package rawsock

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Dial opens a raw connection on the named interface, receiving
// every protocol. Opening the socket needs CAP_NET_RAW.
func Dial(ifname string) (Conn, error) {
	ifc, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("looking up interface %s: %w", ifname, err)
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, fmt.Errorf("opening packet socket: %w", err)
	}

	sa := &unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  ifc.Index,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("binding to %s: %w", ifname, err)
	}

	return &packetConn{fd: fd}, nil
}

// packetConn is a Conn over an AF_PACKET socket.
type packetConn struct {
	fd int
}

func (c *packetConn) Send(bs []byte) (int, error) {
	return unix.Write(c.fd, bs)
}

func (c *packetConn) Receive(max int) ([]byte, error) {
	if max <= 0 {
		return nil, fmt.Errorf("receive buffer size %d must be positive", max)
	}
	buf := make([]byte, max)
	n, _, err := unix.Recvfrom(c.fd, buf, 0)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (c *packetConn) Close() error {
	return unix.Close(c.fd)
}
