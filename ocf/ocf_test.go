package ocf_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/creativcoder/avrow"
	"github.com/creativcoder/avrow/ocf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, schemaJSON string) *avro.Schema {
	t.Helper()
	s, err := avro.Parse(schemaJSON)
	require.NoError(t, err)
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	schema := mustParse(t, `"long"`)
	var buf bytes.Buffer

	w, err := ocf.NewWriter(&buf, schema)
	require.NoError(t, err)
	for _, n := range []int64{1, 2, 3, 4, 5} {
		require.NoError(t, w.Write(avro.NewLong(n)))
	}
	_, err = w.Close()
	require.NoError(t, err)

	r, err := ocf.NewReader(&buf)
	require.NoError(t, err)
	assert.True(t, r.WriterSchema().Equal(schema))
	assert.Equal(t, "null", r.Codec())

	var got []int64
	for {
		v, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, v.Long())
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, got)
	count, exact := r.Count()
	assert.Equal(t, int64(5), count)
	assert.True(t, exact)
}

func TestNullValuesWithDeflate(t *testing.T) {
	schema := mustParse(t, `"null"`)
	var sync ocf.SyncMarker
	copy(sync[:], []byte("0123456789abcdef"))
	var buf bytes.Buffer

	w, err := ocf.NewWriter(&buf, schema, ocf.WithCodec("deflate"), ocf.WithSyncMarker(sync))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write(avro.NewNull()))
	}
	_, err = w.Close()
	require.NoError(t, err)

	r, err := ocf.NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "deflate", r.Codec())
	assert.Equal(t, sync, r.SyncMarker())

	n := 0
	for {
		v, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, avro.KindNull, v.Kind())
		n++
	}
	assert.Equal(t, 3, n)

	fp := avro.RabinFingerprint(schema)
	assert.NotZero(t, fp)
}

func TestCodecTransparency(t *testing.T) {
	schema := mustParse(t, `{"type":"map","values":"int"}`)
	value := avro.NewMap([]avro.MapEntry{
		{Key: "a", Value: avro.NewInt(1)},
		{Key: "b", Value: avro.NewInt(2)},
	})

	decodeAll := func(codecName string) []avro.Value {
		var buf bytes.Buffer
		w, err := ocf.NewWriter(&buf, schema, ocf.WithCodec(codecName))
		require.NoError(t, err)
		require.NoError(t, w.Write(value))
		_, err = w.Close()
		require.NoError(t, err)

		r, err := ocf.NewReader(&buf)
		require.NoError(t, err)
		var out []avro.Value
		for {
			v, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			out = append(out, v)
		}
		return out
	}

	baseline := decodeAll("null")
	for _, name := range []string{"deflate", "snappy", "zstd", "bzip2", "xz"} {
		got := decodeAll(name)
		require.Len(t, got, len(baseline))
		assert.ElementsMatch(t, baseline[0].Entries(), got[0].Entries())
	}
}

func TestReaderSchemaPromotion(t *testing.T) {
	writerSchema := mustParse(t, `"int"`)
	readerSchema := mustParse(t, `"long"`)
	var buf bytes.Buffer

	w, err := ocf.NewWriter(&buf, writerSchema)
	require.NoError(t, err)
	require.NoError(t, w.Write(avro.NewInt(7)))
	_, err = w.Close()
	require.NoError(t, err)

	r, err := ocf.NewReader(&buf, ocf.WithReaderSchema(readerSchema))
	require.NoError(t, err)
	v, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, avro.KindLong, v.Kind())
	assert.Equal(t, int64(7), v.Long())
}

func TestBlockThresholdIndependence(t *testing.T) {
	schema := mustParse(t, `"long"`)
	values := make([]int64, 0, 100)
	for i := int64(0); i < 100; i++ {
		values = append(values, i)
	}

	readBack := func(threshold int) []int64 {
		var buf bytes.Buffer
		w, err := ocf.NewWriter(&buf, schema, ocf.WithFlushThreshold(threshold))
		require.NoError(t, err)
		for _, n := range values {
			require.NoError(t, w.Write(avro.NewLong(n)))
		}
		_, err = w.Close()
		require.NoError(t, err)

		r, err := ocf.NewReader(&buf)
		require.NoError(t, err)
		var out []int64
		for {
			v, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			out = append(out, v.Long())
		}
		return out
	}

	assert.Equal(t, readBack(1), readBack(4096))
}

func TestCorruptSyncMarkerIsFatal(t *testing.T) {
	schema := mustParse(t, `"long"`)
	var buf bytes.Buffer
	w, err := ocf.NewWriter(&buf, schema)
	require.NoError(t, err)
	require.NoError(t, w.Write(avro.NewLong(1)))
	_, err = w.Close()
	require.NoError(t, err)

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xff

	r, err := ocf.NewReader(bytes.NewReader(corrupted))
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
}

func TestRejectsReservedMetadataKey(t *testing.T) {
	schema := mustParse(t, `"null"`)
	var buf bytes.Buffer
	_, err := ocf.NewWriter(&buf, schema, ocf.WithMetadata("avro.custom", []byte("x")))
	require.Error(t, err)
}

func TestUnknownCodecRejectedAtConstruction(t *testing.T) {
	schema := mustParse(t, `"null"`)
	var buf bytes.Buffer
	_, err := ocf.NewWriter(&buf, schema, ocf.WithCodec("does-not-exist"))
	require.Error(t, err)
}
