package packet

import "fmt"

// Limits bounds the resources [Unmarshal] will commit to a single
// input buffer, to keep hostile inputs from running a parser out of
// memory or stack.
type Limits struct {
	// MaxBufferSize is the largest input, in bytes, that the unpack
	// engine accepts.
	MaxBufferSize int
	// MaxNestingDepth is the deepest chain of nested records the
	// unpack engine follows.
	MaxNestingDepth int
}

// Default resource limits, used by [Unmarshal] unless overridden
// with [SetLimits]. The default buffer size is the largest possible
// IPv4 datagram.
const (
	DefaultMaxBufferSize   = 65535
	DefaultMaxNestingDepth = 8
)

// DefaultLimits returns the limits that apply when no override is in
// effect.
func DefaultLimits() Limits {
	return Limits{
		MaxBufferSize:   DefaultMaxBufferSize,
		MaxNestingDepth: DefaultMaxNestingDepth,
	}
}

var limits = DefaultLimits()

// SetLimits replaces the process-wide resource limits consulted by
// [Unmarshal]. Both fields of l must be positive.
//
// SetLimits is not synchronized with concurrent unpacks. Set limits
// once at startup, or use [UnmarshalWithLimits] to bind limits to a
// single call.
func SetLimits(l Limits) error {
	if l.MaxBufferSize <= 0 {
		return fmt.Errorf("MaxBufferSize %d, must be positive", l.MaxBufferSize)
	}
	if l.MaxNestingDepth <= 0 {
		return fmt.Errorf("MaxNestingDepth %d, must be positive", l.MaxNestingDepth)
	}
	limits = l
	return nil
}

// ResetLimits restores the default resource limits.
func ResetLimits() {
	limits = DefaultLimits()
}

// CurrentLimits returns the limits that [Unmarshal] currently
// consults.
func CurrentLimits() Limits {
	return limits
}
