package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

// bzip2Codec implements the "bzip2" block codec. No pack repository
// compresses bzip2 (stdlib compress/bzip2 is decode-only), so this codec is
// named out-of-pack; see DESIGN.md.
type bzip2Codec struct{}

func (bzip2Codec) Name() string { return "bzip2" }

func (bzip2Codec) Compress(uncompressed []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: bzip2: %w", err)
	}
	if _, err := w.Write(uncompressed); err != nil {
		return nil, fmt.Errorf("codec: bzip2: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: bzip2: %w", err)
	}
	return buf.Bytes(), nil
}

func (bzip2Codec) Decompress(compressed []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(compressed), nil)
	if err != nil {
		return nil, fmt.Errorf("codec: bzip2: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: bzip2: %w", err)
	}
	return out, nil
}

func init() {
	register(bzip2Codec{})
}
