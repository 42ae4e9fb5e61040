// Package avro implements the Apache Avro binary serialization format: a
// typed schema model and parser, a schema-directed binary value codec, and
// schema resolution between a writer and reader schema. See package
// github.com/creativcoder/avrow/ocf for the object container file format
// built on top of this package, and github.com/creativcoder/avrow/codec for
// the pluggable block compressors it uses.
package avro

import (
	"errors"
	"fmt"
)

// Sentinel errors a caller may check with errors.Is.
var (
	// ErrUnresolvedReference is returned by Parse when a named schema
	// reference is not bound to a definition earlier in the depth-first,
	// left-to-right parse (or to the enclosing record being parsed).
	ErrUnresolvedReference = errors.New("avro: unresolved schema reference")
	// ErrUnknownCodec names the condition of a codec name with no
	// registered implementation. The codec and ocf packages report that
	// condition with their own errors and do not wrap this value.
	ErrUnknownCodec = errors.New("avro: unknown or unregistered codec")
)

// SchemaParseError reports a failure to parse or bind a schema, with the
// JSON path at which the failure occurred (e.g. "$.fields[2].type").
type SchemaParseError struct {
	Path string
	Err  error
}

func (e *SchemaParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("avro: schema parse error: %s", e.Err)
	}
	return fmt.Sprintf("avro: schema parse error at %s: %s", e.Path, e.Err)
}

func (e *SchemaParseError) Unwrap() error { return e.Err }

func parseErr(path string, format string, args ...interface{}) *SchemaParseError {
	return &SchemaParseError{Path: path, Err: fmt.Errorf(format, args...)}
}

// EncodeError reports that a value could not be encoded against a schema.
type EncodeError struct {
	Schema *Schema
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("avro: encode error for schema %s: %s", e.Schema.Fullname(), e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func encodeErr(s *Schema, format string, args ...interface{}) *EncodeError {
	return &EncodeError{Schema: s, Err: fmt.Errorf(format, args...)}
}

// DecodeError reports a failure while decoding bytes against a schema, with
// the byte offset into the input at which the failure was detected.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("avro: decode error at offset %d: %s", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(offset int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Offset: offset, Err: fmt.Errorf(format, args...)}
}

// ResolutionError reports that a writer schema and reader schema are
// incompatible at a specific subtree, identified by a location string: the
// writer and reader fullnames of the incompatible pair (e.g. "string->long"
// or "Foo->Foo"), or a reader record and field (e.g. "Foo.bar").
type ResolutionError struct {
	Location string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("avro: resolution error at %s: %s", e.Location, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func resolveErr(location string, format string, args ...interface{}) *ResolutionError {
	return &ResolutionError{Location: location, Err: fmt.Errorf(format, args...)}
}
