package ocf

import (
	"bufio"
	"io"

	"github.com/creativcoder/avrow"
	"github.com/creativcoder/avrow/codec"
	"go.uber.org/zap"
)

// ReaderOption configures a Reader at construction.
type ReaderOption func(*Reader)

// WithReaderSchema supplies a reader schema. When set, NewReader
// precomputes a resolution plan against the writer schema embedded in the
// file's header, and every value yielded by Next is adapted to conform to
// it.
func WithReaderSchema(schema *avro.Schema) ReaderOption {
	return func(r *Reader) { r.readerSchema = schema }
}

// WithReaderLogger attaches a structured logger. The default is a no-op logger.
func WithReaderLogger(logger *zap.Logger) ReaderOption {
	return func(r *Reader) { r.logger = logger }
}

// Reader iterates the values of an Avro object container file, decompressing
// and sync-verifying one block at a time.
type Reader struct {
	br           *bufio.Reader
	writerSchema *avro.Schema
	readerSchema *avro.Schema
	resolution   *avro.Resolution
	codecName    string
	cdc          codec.Codec
	sync         SyncMarker
	metadata     map[string][]byte
	logger       *zap.Logger

	block     []byte
	blockOff  int
	remaining int64

	totalCount int64
	eof        bool
}

// NewReader parses src's header (magic, metadata, embedded writer schema,
// sync marker) and returns a Reader positioned at the first data block.
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{br: bufio.NewReader(src), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	if r.readerSchema != nil {
		res, err := avro.BuildResolution(r.writerSchema, r.readerSchema)
		if err != nil {
			return nil, err
		}
		r.resolution = res
		r.logger.Debug("resolution plan built",
			zap.String("writer", r.writerSchema.Fullname()),
			zap.String("reader", r.readerSchema.Fullname()))
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	var magic [4]byte
	if _, err := io.ReadFull(r.br, magic[:]); err != nil {
		return ioErr(err)
	}
	if magic != Magic {
		return containerErr("bad magic bytes % x", magic)
	}
	meta, err := readMetadataMap(r.br)
	if err != nil {
		return containerErr("malformed header metadata: %w", err)
	}
	var sync SyncMarker
	if _, err := io.ReadFull(r.br, sync[:]); err != nil {
		return ioErr(err)
	}

	schemaJSON, ok := meta[metadataSchemaKey]
	if !ok {
		return containerErr("header metadata is missing %q", metadataSchemaKey)
	}
	writerSchema, err := avro.ParseBytes(schemaJSON)
	if err != nil {
		return containerErr("parsing embedded writer schema: %w", err)
	}

	codecName := "null"
	if cb, ok := meta[metadataCodecKey]; ok {
		codecName = string(cb)
	}
	cdc, err := codec.Lookup(codecName)
	if err != nil {
		return containerErr("codec %q is not compiled in: %w", codecName, err)
	}

	r.writerSchema = writerSchema
	r.codecName = codecName
	r.cdc = cdc
	r.metadata = meta
	r.sync = sync
	return nil
}

// WriterSchema returns the schema embedded in the file's header.
func (r *Reader) WriterSchema() *avro.Schema { return r.writerSchema }

// Codec returns the header's codec name.
func (r *Reader) Codec() string { return r.codecName }

// Metadata returns the raw header metadata map, including avro.schema and
// avro.codec alongside any user entries.
func (r *Reader) Metadata() map[string][]byte { return r.metadata }

// SyncMarker returns the file's 16-byte sync marker.
func (r *Reader) SyncMarker() SyncMarker { return r.sync }

// Count returns the sum of the item counts of the blocks read so far, which
// includes items of the current block not yet returned by Next, and whether
// that count is exact (true once Next has returned io.EOF).
func (r *Reader) Count() (int64, bool) { return r.totalCount, r.eof }

// Next decodes and returns the next value in the stream, adapting it to
// the reader schema if one was supplied. It returns io.EOF once every
// block has been consumed.
func (r *Reader) Next() (avro.Value, error) {
	for r.remaining == 0 {
		if r.eof {
			return avro.Value{}, io.EOF
		}
		if err := r.readBlock(); err != nil {
			if err == io.EOF {
				r.eof = true
				return avro.Value{}, io.EOF
			}
			return avro.Value{}, err
		}
	}
	var v avro.Value
	var n int
	var err error
	if r.resolution != nil {
		v, n, err = r.resolution.Decode(r.block[r.blockOff:])
	} else {
		v, n, err = avro.Decode(r.writerSchema, r.block[r.blockOff:])
	}
	if err != nil {
		return avro.Value{}, err
	}
	r.blockOff += n
	r.remaining--
	return v, nil
}

func (r *Reader) readBlock() error {
	count, err := readZigzagLong(r.br)
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return ioErr(err)
	}
	if count <= 0 {
		return containerErr("expected a positive block item count, got %d", count)
	}
	byteLen, err := readZigzagLong(r.br)
	if err != nil {
		return ioErr(err)
	}
	if byteLen < 0 {
		return containerErr("negative block byte-length %d", byteLen)
	}
	payload := make([]byte, byteLen)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		return ioErr(err)
	}
	var sync SyncMarker
	if _, err := io.ReadFull(r.br, sync[:]); err != nil {
		return ioErr(err)
	}
	if sync != r.sync {
		r.logger.Warn("sync marker mismatch, stream is corrupt or truncated",
			zap.String("codec", r.codecName))
		return containerErr("sync marker mismatch")
	}
	block, err := r.cdc.Decompress(payload)
	if err != nil {
		return codecErr(r.codecName, err)
	}
	r.logger.Debug("read block", zap.Int64("items", count), zap.Int("byte_length", int(byteLen)))
	r.block = block
	r.blockOff = 0
	r.remaining = count
	r.totalCount += count
	return nil
}
