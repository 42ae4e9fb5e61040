package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateCodec implements the "deflate" block codec: raw DEFLATE with no
// zlib or gzip wrapper, per the Avro specification's data-file codec.
type deflateCodec struct{}

func (deflateCodec) Name() string { return "deflate" }

func (deflateCodec) Compress(uncompressed []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("codec: deflate: %w", err)
	}
	if _, err := w.Write(uncompressed); err != nil {
		return nil, fmt.Errorf("codec: deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: deflate: %w", err)
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Decompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: deflate: %w", err)
	}
	return out, nil
}

func init() {
	register(deflateCodec{})
}
