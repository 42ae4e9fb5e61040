package codec_test

import (
	"testing"

	"github.com/creativcoder/avrow/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	names := codec.Registered()
	for _, want := range []string{"null", "deflate", "snappy", "zstd", "bzip2", "xz"} {
		assert.Contains(t, names, want)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := codec.Lookup("does-not-exist")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated a few times, " +
		"the quick brown fox jumps over the lazy dog, repeated a few times")
	for _, name := range codec.Registered() {
		name := name
		t.Run(name, func(t *testing.T) {
			c, err := codec.Lookup(name)
			require.NoError(t, err)

			compressed, err := c.Compress(payload)
			require.NoError(t, err)

			out, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestNullCodecIsIdentity(t *testing.T) {
	c, err := codec.Lookup("null")
	require.NoError(t, err)

	payload := []byte{0x01, 0x02, 0x03}
	compressed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.Equal(t, payload, compressed)
}

func TestSnappyRejectsCorruptTrailer(t *testing.T) {
	c, err := codec.Lookup("snappy")
	require.NoError(t, err)

	compressed, err := c.Compress([]byte("hello, world"))
	require.NoError(t, err)
	compressed[len(compressed)-1] ^= 0xff

	_, err = c.Decompress(compressed)
	require.Error(t, err)
}
