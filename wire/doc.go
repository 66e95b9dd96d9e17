// Package wire provides low-level encoding and decoding helpers to
// construct and parse packet bytes.
//
// The provided encoder and decoder are very low level, and do not
// apply any schema semantics. It is the caller's responsibility to
// emit and consume fields in the right order, with the right widths
// and byte orders. The schema-driven engine in the parent package is
// the intended caller.
package wire
