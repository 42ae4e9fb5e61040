package codec

// nullCodec passes blocks through unchanged. It is always registered and is
// the default when no codec is requested.
type nullCodec struct{}

func (nullCodec) Name() string { return "null" }

func (nullCodec) Compress(uncompressed []byte) ([]byte, error) {
	return uncompressed, nil
}

func (nullCodec) Decompress(compressed []byte) ([]byte, error) {
	return compressed, nil
}

func init() {
	register(nullCodec{})
}
