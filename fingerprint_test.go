package avro_test

import (
	"encoding/binary"
	"testing"

	"github.com/creativcoder/avrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRabinFingerprintKnownVectors(t *testing.T) {
	// Avro spec test vectors for the Rabin-64 fingerprint of a primitive
	// schema's canonical form.
	cases := []struct {
		schema string
		want   uint64
	}{
		{`"null"`, 7195948357588979594},
		{`"boolean"`, 11476012395585140580},
		{`"int"`, 8247732601305521295},
		{`"long"`, 15011871142588980663},
		{`"float"`, 5583340709985441680},
		{`"double"`, 10265170025261012350},
		{`"bytes"`, 5746618253357095269},
	}
	for _, c := range cases {
		s, err := avro.Parse(c.schema)
		require.NoError(t, err)
		fp := avro.RabinFingerprint(s)
		got := binary.LittleEndian.Uint64(fp[:])
		assert.Equal(t, c.want, got, "fingerprint mismatch for %s", c.schema)
	}
}

func TestFingerprintDeterministicAndIdempotent(t *testing.T) {
	s, err := avro.Parse(`{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	require.NoError(t, err)
	a := s.Fingerprint()
	b := s.Fingerprint()
	assert.Equal(t, a, b)

	sha1 := avro.SHA256Fingerprint(s)
	sha2 := avro.SHA256Fingerprint(s)
	assert.Equal(t, sha1, sha2)

	md1 := avro.MD5Fingerprint(s)
	md2 := avro.MD5Fingerprint(s)
	assert.Equal(t, md1, md2)
}
