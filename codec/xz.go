package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// xzCodec implements the "xz" block codec. Like bzip2, no pack repository
// touches XZ at all; named out-of-pack, see DESIGN.md.
type xzCodec struct{}

func (xzCodec) Name() string { return "xz" }

func (xzCodec) Compress(uncompressed []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("codec: xz: %w", err)
	}
	if _, err := w.Write(uncompressed); err != nil {
		return nil, fmt.Errorf("codec: xz: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: xz: %w", err)
	}
	return buf.Bytes(), nil
}

func (xzCodec) Decompress(compressed []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("codec: xz: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: xz: %w", err)
	}
	return out, nil
}

func init() {
	register(xzCodec{})
}
