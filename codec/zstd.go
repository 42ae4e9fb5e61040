package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec implements the "zstd" block codec.
type zstdCodec struct {
	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
}

func (c *zstdCodec) Name() string { return "zstd" }

func (c *zstdCodec) encoder() (*zstd.Encoder, error) {
	c.encOnce.Do(func() {
		c.enc, c.encErr = zstd.NewWriter(nil)
	})
	return c.enc, c.encErr
}

func (c *zstdCodec) decoder() (*zstd.Decoder, error) {
	c.decOnce.Do(func() {
		c.dec, c.decErr = zstd.NewReader(nil)
	})
	return c.dec, c.decErr
}

func (c *zstdCodec) Compress(uncompressed []byte) ([]byte, error) {
	enc, err := c.encoder()
	if err != nil {
		return nil, fmt.Errorf("codec: zstd: %w", err)
	}
	return enc.EncodeAll(uncompressed, nil), nil
}

func (c *zstdCodec) Decompress(compressed []byte) ([]byte, error) {
	dec, err := c.decoder()
	if err != nil {
		return nil, fmt.Errorf("codec: zstd: %w", err)
	}
	out, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd: %w", err)
	}
	return out, nil
}

func init() {
	register(&zstdCodec{})
}
