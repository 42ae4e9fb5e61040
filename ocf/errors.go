// Package ocf implements the Avro object container file format: a
// self-describing binary container that carries its writer schema, codec,
// and user metadata in a header, followed by codec-compressed, sync-framed
// blocks of schema-encoded values.
package ocf

import "fmt"

// ContainerError reports a structural problem with the container file
// itself (bad magic, malformed metadata, sync mismatch, unknown codec)
// rather than with an individual value.
type ContainerError struct {
	Err error
}

func (e *ContainerError) Error() string { return fmt.Sprintf("ocf: container error: %s", e.Err) }
func (e *ContainerError) Unwrap() error { return e.Err }

func containerErr(format string, args ...interface{}) *ContainerError {
	return &ContainerError{Err: fmt.Errorf(format, args...)}
}

// CodecError wraps an internal failure of a block compressor/decompressor.
type CodecError struct {
	Codec string
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("ocf: codec %q: %s", e.Codec, e.Err)
}
func (e *CodecError) Unwrap() error { return e.Err }

func codecErr(codec string, err error) *CodecError {
	return &CodecError{Codec: codec, Err: err}
}

// IoError wraps a failure of the underlying byte sink or source.
type IoError struct {
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("ocf: io error: %s", e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

func ioErr(err error) *IoError {
	return &IoError{Err: err}
}
