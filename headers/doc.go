// Package headers declares wire layouts for common Internet protocol
// headers as packet records.
//
// Each type covers the fixed portion of its header. Variable trailers
// such as IPv4 options, TCP options or DNS questions are left to the
// caller, who can unpack them from the bytes that follow the fixed
// header.
//
// The New* constructors fill in length and checksum fields from their
// arguments, so a built header marshals ready to send. Headers
// unpacked from received packets can be verified with the checksum
// helpers, see [ICMPEcho] and [UDP.PseudoChecksum] for the pattern.
package headers
