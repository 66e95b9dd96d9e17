package packet

import (
	"fmt"
	"reflect"
)

// TypeError is the error returned when a Go type cannot be used as a
// packet record.
type TypeError struct {
	// Type is the name of the type that caused the error.
	Type string
	// Reason is an explanation of why the type can't be used.
	Reason error
}

func (e TypeError) Error() string {
	return fmt.Sprintf("packet cannot represent %s: %s", e.Type, e.Reason)
}

func (e TypeError) Unwrap() error {
	return e.Reason
}

func typeErr(t reflect.Type, reason string, args ...any) error {
	ts := ""
	if t != nil {
		ts = t.String()
	}
	return TypeError{ts, fmt.Errorf(reason, args...)}
}

// MissingLayoutError is the error returned when an exported record
// field carries no layout declaration in its packet tag.
type MissingLayoutError struct {
	// Struct is the name of the record type.
	Struct string
	// Field is the name of the field with no layout.
	Field string
}

func (e MissingLayoutError) Error() string {
	return fmt.Sprintf("no layout declared for field %s.%s", e.Struct, e.Field)
}

// UnsupportedWidthError is the error returned when a field declares
// an integer width the wire format can't carry.
type UnsupportedWidthError struct {
	// Field is the name of the offending field.
	Field string
	// Bits is the width the field declared.
	Bits int
}

func (e UnsupportedWidthError) Error() string {
	return fmt.Sprintf("field %s declares unsupported width %d, must be 8, 16, 32 or 64", e.Field, e.Bits)
}

// SchemaError is the error returned when a field's layout
// declaration is malformed in some other way: a second layout token
// on the same field, an unparseable option, a conditional that
// references an unknown field. Reason carries the specific cause,
// which may itself be an [UnsupportedWidthError].
type SchemaError struct {
	// Struct is the name of the record type.
	Struct string
	// Field is the name of the field with the bad declaration.
	Field string
	// Reason is an explanation of what is wrong with it.
	Reason error
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("bad layout for field %s.%s: %s", e.Struct, e.Field, e.Reason)
}

func (e SchemaError) Unwrap() error {
	return e.Reason
}

// BufferOverflowError is the error returned when unpacking needs
// more bytes than the input provides, or when the input itself is
// larger than the configured maximum buffer size.
type BufferOverflowError struct {
	// Attempted is the number of bytes the operation needed.
	Attempted int
	// Limit is the number of bytes available or allowed.
	Limit int
}

func (e BufferOverflowError) Error() string {
	return fmt.Sprintf("buffer overflow: need %d bytes, have %d", e.Attempted, e.Limit)
}

// SecurityError is the error returned when an input trips one of the
// resource limits in [Limits].
type SecurityError struct {
	// Reason describes the limit that was exceeded.
	Reason string
}

func (e SecurityError) Error() string {
	return "security limit exceeded: " + e.Reason
}

// ValidationError is the error returned when a decoded field value
// fails one of the constraints declared in the field's packet tag.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Constraint is the constraint that rejected the value, as
	// written in the struct tag.
	Constraint string
	// Value is the decoded value that was rejected.
	Value any
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %s: value %v violates constraint %s", e.Field, e.Value, e.Constraint)
}
