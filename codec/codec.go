// Package codec implements the pluggable block compressors used by the
// Avro object container file format: a small interface with per-format
// implementations registered by name.
package codec

import (
	"fmt"
	"sort"
	"sync"
)

// Codec compresses and decompresses one Avro data-file block. Compress and
// Decompress operate on whole blocks, never partial ones; a Codec
// implementation must be safe for concurrent use by multiple goroutines
// provided each call uses its own buffers.
type Codec interface {
	// Name returns the codec's registration name, exactly as it would
	// appear in an object container file's "avro.codec" metadata value.
	Name() string
	// Compress returns the compressed form of an uncompressed block.
	Compress(uncompressed []byte) ([]byte, error)
	// Decompress returns the uncompressed form of a compressed block.
	Decompress(compressed []byte) ([]byte, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Codec{}
)

func register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	registry[c.Name()] = c
}

// Lookup returns the registered Codec for name, or an error if no codec by
// that name is compiled into the running binary.
func Lookup(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("codec: unregistered codec %q; registered: %v", name, registeredLocked())
	}
	return c, nil
}

// Registered returns the sorted list of codec names available in the
// running binary.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	return registeredLocked()
}

func registeredLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
