package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"
)

// snappyCodec implements the Avro "snappy" block codec: a raw Snappy block
// (not Google's own length-framed Snappy container) followed by a 4-byte
// big-endian CRC-32 (IEEE) of the *uncompressed* bytes. This framing is
// specific to Avro; golang/snappy supplies only the block
// compress/decompress primitive; the trailer is applied here.
type snappyCodec struct{}

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Compress(uncompressed []byte) ([]byte, error) {
	block := snappy.Encode(nil, uncompressed)
	out := make([]byte, len(block)+4)
	copy(out, block)
	binary.BigEndian.PutUint32(out[len(block):], crc32.ChecksumIEEE(uncompressed))
	return out, nil
}

func (snappyCodec) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) < 4 {
		return nil, fmt.Errorf("codec: snappy: block too short to hold a CRC-32 trailer")
	}
	block := compressed[:len(compressed)-4]
	wantCRC := binary.BigEndian.Uint32(compressed[len(compressed)-4:])
	out, err := snappy.Decode(nil, block)
	if err != nil {
		return nil, fmt.Errorf("codec: snappy: %w", err)
	}
	if gotCRC := crc32.ChecksumIEEE(out); gotCRC != wantCRC {
		return nil, fmt.Errorf("codec: snappy: CRC-32 mismatch: block trailer says %#08x, computed %#08x", wantCRC, gotCRC)
	}
	return out, nil
}

func init() {
	register(snappyCodec{})
}
