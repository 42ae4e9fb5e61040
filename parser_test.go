package avro_test

import (
	"testing"

	"github.com/creativcoder/avrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitives(t *testing.T) {
	for _, name := range []string{"null", "boolean", "int", "long", "float", "double", "bytes", "string"} {
		s, err := avro.Parse(`"` + name + `"`)
		require.NoError(t, err)
		assert.Equal(t, name, s.Kind().String())
	}
}

func TestParseSelfReferentialRecord(t *testing.T) {
	s, err := avro.Parse(`{
		"type": "record",
		"name": "LongList",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "LongList"]}
		]
	}`)
	require.NoError(t, err)
	nextField := s.FieldByName("next")
	require.NotNil(t, nextField)
	recBranch := nextField.Type.Branches()[1]
	assert.Same(t, s, recBranch, "self-reference should resolve to the same *Schema pointer")
}

func TestParseMutuallyRecursiveRecords(t *testing.T) {
	s, err := avro.Parse(`{
		"type": "record",
		"name": "Even",
		"fields": [
			{"name": "n", "type": "long"},
			{"name": "next", "type": ["null", {
				"type": "record",
				"name": "Odd",
				"fields": [
					{"name": "n", "type": "long"},
					{"name": "next", "type": ["null", "Even"]}
				]
			}]}
		]
	}`)
	require.NoError(t, err)
	odd := s.FieldByName("next").Type.Branches()[1]
	back := odd.FieldByName("next").Type.Branches()[1]
	assert.Same(t, s, back)
}

func TestParseRejectsNestedUnion(t *testing.T) {
	_, err := avro.Parse(`["null", ["int", "long"]]`)
	require.Error(t, err)
}

func TestParseRejectsDuplicateUnionBranch(t *testing.T) {
	_, err := avro.Parse(`["null", "null"]`)
	require.Error(t, err)
}

func TestParseRejectsUnresolvedReference(t *testing.T) {
	_, err := avro.Parse(`{
		"type": "record",
		"name": "Foo",
		"fields": [{"name": "x", "type": "Bar"}]
	}`)
	require.Error(t, err)
	require.ErrorIs(t, err, avro.ErrUnresolvedReference)
}

func TestParseEnumWithDefault(t *testing.T) {
	s, err := avro.Parse(`{
		"type": "enum",
		"name": "Suit",
		"symbols": ["SPADES", "HEARTS", "DIAMONDS", "CLUBS"],
		"default": "SPADES"
	}`)
	require.NoError(t, err)
	def, ok := s.EnumDefault()
	assert.True(t, ok)
	assert.Equal(t, "SPADES", def)
}

func TestParseEnumInvalidDefaultRejected(t *testing.T) {
	_, err := avro.Parse(`{
		"type": "enum",
		"name": "Suit",
		"symbols": ["SPADES", "HEARTS"],
		"default": "JOKER"
	}`)
	require.Error(t, err)
}

func TestParseUnionDefaultValidatesAgainstBranchZero(t *testing.T) {
	// Union field defaults always validate against branch 0, regardless
	// of which branch the default "looks like".
	s, err := avro.Parse(`{
		"type": "record",
		"name": "Wrapper",
		"fields": [
			{"name": "v", "type": ["string", "int"], "default": "hi"}
		]
	}`)
	require.NoError(t, err)
	f := s.FieldByName("v")
	require.NotNil(t, f)
	assert.True(t, f.HasDefault)
	assert.Equal(t, avro.KindString, f.Default.Kind())

	_, err = avro.Parse(`{
		"type": "record",
		"name": "Wrapper2",
		"fields": [
			{"name": "v", "type": ["int", "string"], "default": "hi"}
		]
	}`)
	require.Error(t, err, "default \"hi\" does not match branch 0 (int)")
}

func TestParseFixed(t *testing.T) {
	s, err := avro.Parse(`{"type": "fixed", "name": "MD5", "size": 16}`)
	require.NoError(t, err)
	assert.Equal(t, 16, s.Size())
}

func TestParseAliasCollisionRejected(t *testing.T) {
	_, err := avro.Parse(`{
		"type": "record",
		"name": "Bar",
		"fields": [
			{"name": "x", "type": {
				"type": "record",
				"name": "Foo",
				"aliases": ["Bar"],
				"fields": []
			}}
		]
	}`)
	require.Error(t, err)
}

func TestSchemaRoundTripLaw(t *testing.T) {
	schemas := []string{
		`"long"`,
		`{"type":"array","items":"string"}`,
		`{"type":"map","values":"boolean"}`,
		`{"type":"record","name":"Foo","namespace":"com.example","fields":[{"name":"a","type":"int"},{"name":"b","type":["null","string"],"default":null}]}`,
		`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"]}`,
		`{"type":"fixed","name":"MD5","size":16}`,
	}
	for _, src := range schemas {
		s, err := avro.Parse(src)
		require.NoError(t, err)
		emitted, err := avro.Emit(s)
		require.NoError(t, err)
		reparsed, err := avro.Parse(emitted)
		require.NoError(t, err)
		assert.True(t, s.Equal(reparsed), "round trip mismatch for %s: emitted %s", src, emitted)
	}
}
