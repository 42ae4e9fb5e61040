package ocf

import (
	"strings"

	"github.com/creativcoder/avrow"
)

// Magic is the 4-byte prefix of every Avro object container file.
var Magic = [4]byte{0x4f, 0x62, 0x6a, 0x01} // "Obj" 0x01

// SyncMarker is the 16-byte value written once in the header and repeated
// after every data block, used to verify block boundaries. Reader treats a
// mismatch as fatal; it does not resync past a corrupted block.
type SyncMarker [16]byte

const (
	metadataSchemaKey = "avro.schema"
	metadataCodecKey  = "avro.codec"
	reservedPrefix    = "avro."
)

// metadataSchema is the schema of the header's metadata map: a map of
// bytes.
var metadataSchema = avro.NewMapSchema(avro.Bytes)

func encodeMetadata(meta map[string][]byte) (avro.Value, error) {
	entries := make([]avro.MapEntry, 0, len(meta))
	for k, v := range meta {
		entries = append(entries, avro.MapEntry{Key: k, Value: avro.NewBytes(v)})
	}
	return avro.NewMap(entries), nil
}

func validMetadataKey(key string) bool {
	return !strings.HasPrefix(key, reservedPrefix)
}
