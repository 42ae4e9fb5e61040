package avro_test

import (
	"testing"

	"github.com/creativcoder/avrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentity(t *testing.T) {
	schema, err := avro.Parse(`{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	require.NoError(t, err)
	res, err := avro.BuildResolution(schema, schema)
	require.NoError(t, err)

	value := avro.NewRecord(avro.NamedValue{Name: "x", Value: avro.NewInt(42)})
	encoded, err := avro.Encode(nil, schema, value)
	require.NoError(t, err)

	got, n, err := res.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	fv, _ := got.FieldByName("x")
	assert.Equal(t, int32(42), fv.Int())
}

func TestResolveNumericPromotion(t *testing.T) {
	res, err := avro.BuildResolution(avro.Int, avro.Long)
	require.NoError(t, err)
	encoded, err := avro.Encode(nil, avro.Int, avro.NewInt(7))
	require.NoError(t, err)
	v, _, err := res.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Long())

	res2, err := avro.BuildResolution(avro.Float, avro.Double)
	require.NoError(t, err)
	encoded2, err := avro.Encode(nil, avro.Float, avro.NewFloat(3.5))
	require.NoError(t, err)
	v2, _, err := res2.Decode(encoded2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v2.Float64())
}

func TestResolveStringBytes(t *testing.T) {
	res, err := avro.BuildResolution(avro.String, avro.Bytes)
	require.NoError(t, err)
	encoded, err := avro.Encode(nil, avro.String, avro.NewString("hello"))
	require.NoError(t, err)
	v, _, err := res.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v.Bytes())
}

func TestResolveAlias(t *testing.T) {
	// writer Foo{x:int}; reader Bar (alias Foo) {x:long}.
	writer, err := avro.Parse(`{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	require.NoError(t, err)
	reader, err := avro.Parse(`{"type":"record","name":"Bar","aliases":["Foo"],"fields":[{"name":"x","type":"long"}]}`)
	require.NoError(t, err)

	res, err := avro.BuildResolution(writer, reader)
	require.NoError(t, err)

	encoded, err := avro.Encode(nil, writer, avro.NewRecord(avro.NamedValue{Name: "x", Value: avro.NewInt(42)}))
	require.NoError(t, err)

	got, _, err := res.Decode(encoded)
	require.NoError(t, err)
	fv, ok := got.FieldByName("x")
	require.True(t, ok)
	assert.Equal(t, int64(42), fv.Long())
}

func TestResolveMissingWriterFieldUsesReaderDefault(t *testing.T) {
	writer, err := avro.Parse(`{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	require.NoError(t, err)
	reader, err := avro.Parse(`{"type":"record","name":"Foo","fields":[
		{"name":"x","type":"int"},
		{"name":"y","type":"int","default":99}
	]}`)
	require.NoError(t, err)

	res, err := avro.BuildResolution(writer, reader)
	require.NoError(t, err)
	encoded, err := avro.Encode(nil, writer, avro.NewRecord(avro.NamedValue{Name: "x", Value: avro.NewInt(1)}))
	require.NoError(t, err)

	got, _, err := res.Decode(encoded)
	require.NoError(t, err)
	yv, ok := got.FieldByName("y")
	require.True(t, ok)
	assert.Equal(t, int32(99), yv.Int())
}

func TestResolveMissingWriterFieldNoDefaultErrors(t *testing.T) {
	writer, err := avro.Parse(`{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	require.NoError(t, err)
	reader, err := avro.Parse(`{"type":"record","name":"Foo","fields":[
		{"name":"x","type":"int"},
		{"name":"y","type":"int"}
	]}`)
	require.NoError(t, err)

	_, err = avro.BuildResolution(writer, reader)
	require.Error(t, err)
	var re *avro.ResolutionError
	require.ErrorAs(t, err, &re)
}

func TestResolveDiscardsWriterOnlyFields(t *testing.T) {
	writer, err := avro.Parse(`{"type":"record","name":"Foo","fields":[
		{"name":"x","type":"int"},
		{"name":"extra","type":"string"}
	]}`)
	require.NoError(t, err)
	reader, err := avro.Parse(`{"type":"record","name":"Foo","fields":[{"name":"x","type":"int"}]}`)
	require.NoError(t, err)

	res, err := avro.BuildResolution(writer, reader)
	require.NoError(t, err)

	encoded, err := avro.Encode(nil, writer, avro.NewRecord(
		avro.NamedValue{Name: "x", Value: avro.NewInt(5)},
		avro.NamedValue{Name: "extra", Value: avro.NewString("ignored")},
	))
	require.NoError(t, err)

	got, n, err := res.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Len(t, got.Fields(), 1)
}

func TestResolveIncompatibleKindsError(t *testing.T) {
	_, err := avro.BuildResolution(avro.String, avro.Long)
	require.Error(t, err)
}

func TestResolveRecursiveSchemaTerminates(t *testing.T) {
	// Resolving a self-referential schema against itself must not
	// recurse forever building the plan.
	schema, err := avro.Parse(`{
		"type": "record",
		"name": "LongList",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "LongList"]}
		]
	}`)
	require.NoError(t, err)

	res, err := avro.BuildResolution(schema, schema)
	require.NoError(t, err)

	inner := avro.NewRecord(
		avro.NamedValue{Name: "value", Value: avro.NewLong(2)},
		avro.NamedValue{Name: "next", Value: avro.NewUnion(0, avro.NewNull())},
	)
	outer := avro.NewRecord(
		avro.NamedValue{Name: "value", Value: avro.NewLong(1)},
		avro.NamedValue{Name: "next", Value: avro.NewUnion(1, inner)},
	)
	encoded, err := avro.Encode(nil, schema, outer)
	require.NoError(t, err)

	got, _, err := res.Decode(encoded)
	require.NoError(t, err)
	v, _ := got.FieldByName("value")
	assert.Equal(t, int64(1), v.Long())
}

func TestResolveEnumFallsBackToReaderDefault(t *testing.T) {
	writer, err := avro.Parse(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS","DIAMONDS","CLUBS"]}`)
	require.NoError(t, err)
	reader, err := avro.Parse(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"],"default":"SPADES"}`)
	require.NoError(t, err)

	res, err := avro.BuildResolution(writer, reader)
	require.NoError(t, err)

	encoded, err := avro.Encode(nil, writer, mustEnum(t, writer, "CLUBS"))
	require.NoError(t, err)

	v, _, err := res.Decode(encoded)
	require.NoError(t, err)
	sym, _ := v.EnumSymbol()
	assert.Equal(t, "SPADES", sym)
}

func mustEnum(t *testing.T, schema *avro.Schema, symbol string) avro.Value {
	t.Helper()
	v, err := avro.NewEnum(schema, symbol)
	require.NoError(t, err)
	return v
}
