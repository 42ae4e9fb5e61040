package ocf

import (
	"io"

	"github.com/creativcoder/avrow"
	"github.com/creativcoder/avrow/codec"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFlushThreshold is the uncompressed block size, in bytes, at which
// Writer.Write triggers an automatic flush when no explicit threshold is
// configured.
const DefaultFlushThreshold = 64 * 1024

// WriterOption configures a Writer at construction. The With* functions in
// this package are the options it provides; since Writer's fields are
// unexported, a func(*Writer) written outside this package compiles as an
// option but cannot change the Writer's configuration.
type WriterOption func(*Writer)

// WithCodec selects the block compressor by its registered name. The
// default is "null".
func WithCodec(name string) WriterOption {
	return func(w *Writer) { w.codecName = name }
}

// WithFlushThreshold overrides DefaultFlushThreshold.
func WithFlushThreshold(bytes int) WriterOption {
	return func(w *Writer) { w.flushThreshold = bytes }
}

// WithMetadata adds one user metadata entry to the header. key must not
// begin with the reserved "avro." prefix; NewWriter rejects the whole
// construction if it does. Calling WithMetadata more than once accumulates
// entries.
func WithMetadata(key string, value []byte) WriterOption {
	return func(w *Writer) { w.metadata[key] = value }
}

// WithSyncMarker overrides the randomly generated sync marker, for
// deterministic test fixtures.
func WithSyncMarker(marker SyncMarker) WriterOption {
	return func(w *Writer) { w.sync = marker }
}

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) WriterOption {
	return func(w *Writer) { w.logger = logger }
}

// Writer emits an Avro object container file to an underlying byte sink:
// a header (magic, metadata, sync marker) followed by codec-compressed,
// sync-framed blocks of schema-encoded values.
type Writer struct {
	sink           io.Writer
	schema         *avro.Schema
	codecName      string
	cdc            codec.Codec
	flushThreshold int
	sync           SyncMarker
	metadata       map[string][]byte
	logger         *zap.Logger

	buf    []byte
	count  int64
	closed bool
}

// NewWriter constructs a Writer, applies opts, and immediately writes the
// container header to sink.
func NewWriter(sink io.Writer, schema *avro.Schema, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		sink:           sink,
		schema:         schema,
		codecName:      "null",
		flushThreshold: DefaultFlushThreshold,
		metadata:       make(map[string][]byte),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for k := range w.metadata {
		if !validMetadataKey(k) {
			return nil, containerErr("user metadata key %q uses the reserved %q prefix", k, reservedPrefix)
		}
	}
	cdc, err := codec.Lookup(w.codecName)
	if err != nil {
		return nil, containerErr("codec %q is not compiled in: %w", w.codecName, err)
	}
	w.cdc = cdc
	if w.sync == (SyncMarker{}) {
		id := uuid.New()
		copy(w.sync[:], id[:])
	}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	schemaJSON, err := avro.Emit(w.schema)
	if err != nil {
		return containerErr("emitting writer schema: %w", err)
	}
	meta := make(map[string][]byte, len(w.metadata)+2)
	for k, v := range w.metadata {
		meta[k] = v
	}
	meta[metadataSchemaKey] = []byte(schemaJSON)
	meta[metadataCodecKey] = []byte(w.codecName)
	metaValue, err := encodeMetadata(meta)
	if err != nil {
		return containerErr("encoding header metadata: %w", err)
	}

	hdr := make([]byte, 0, len(Magic)+len(schemaJSON)+64)
	hdr = append(hdr, Magic[:]...)
	hdr, err = avro.Encode(hdr, metadataSchema, metaValue)
	if err != nil {
		return containerErr("encoding header metadata: %w", err)
	}
	hdr = append(hdr, w.sync[:]...)
	if _, err := w.sink.Write(hdr); err != nil {
		return ioErr(err)
	}
	return nil
}

// Write encodes v against the writer's schema and appends it to the
// current block, flushing automatically once the flush threshold is
// reached.
func (w *Writer) Write(v avro.Value) error {
	if w.closed {
		return containerErr("write after close")
	}
	buf, err := avro.Encode(w.buf, w.schema, v)
	if err != nil {
		return err
	}
	w.buf = buf
	w.count++
	if len(w.buf) >= w.flushThreshold {
		return w.Flush()
	}
	return nil
}

// Flush emits the current block, if any, as a complete frame:
// <long count><long byte-length><compressed payload><sync marker>. Flush
// on an empty block is a no-op — empty blocks are never written.
func (w *Writer) Flush() error {
	if w.count == 0 {
		return nil
	}
	compressed, err := w.cdc.Compress(w.buf)
	if err != nil {
		return codecErr(w.codecName, err)
	}
	w.logger.Debug("flushing block",
		zap.Int64("items", w.count),
		zap.Int("uncompressed_bytes", len(w.buf)),
		zap.Int("compressed_bytes", len(compressed)),
		zap.String("codec", w.codecName),
	)
	frame, err := avro.Encode(nil, avro.Long, avro.NewLong(w.count))
	if err != nil {
		return err
	}
	frame, err = avro.Encode(frame, avro.Long, avro.NewLong(int64(len(compressed))))
	if err != nil {
		return err
	}
	frame = append(frame, compressed...)
	frame = append(frame, w.sync[:]...)
	if _, err := w.sink.Write(frame); err != nil {
		return ioErr(err)
	}
	w.buf = w.buf[:0]
	w.count = 0
	return nil
}

// Close flushes any pending block and returns the underlying sink so a
// caller can reclaim it (for example to close a file handle). Close is
// idempotent.
func (w *Writer) Close() (io.Writer, error) {
	if w.closed {
		return w.sink, nil
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	w.closed = true
	return w.sink, nil
}
