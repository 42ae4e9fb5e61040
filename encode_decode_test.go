package avro_test

import (
	"testing"

	"github.com/creativcoder/avrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePrimitiveString(t *testing.T) {
	// "Hey" against "string" encodes to 06 48 65 79 (zig-zag length 3,
	// then UTF-8 bytes).
	out, err := avro.Encode(nil, avro.String, avro.NewString("Hey"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x06, 0x48, 0x65, 0x79}, out)

	v, n, err := avro.Decode(avro.String, out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.Equal(t, "Hey", v.String())
}

func TestEncodeMapOfInts(t *testing.T) {
	schema := avro.NewMapSchema(avro.Int)
	value := avro.NewMap([]avro.MapEntry{
		{Key: "a", Value: avro.NewInt(1)},
		{Key: "b", Value: avro.NewInt(2)},
	})
	out, err := avro.Encode(nil, schema, value)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x04,             // block count 2, zig-zag
		0x02, 0x61, 0x02, // key "a" (len 1), value 1
		0x02, 0x62, 0x04, // key "b" (len 1), value 2
		0x00, // terminator
	}, out)

	v, n, err := avro.Decode(schema, out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)
	assert.Len(t, v.Entries(), 2)
}

func TestRecursiveLongListRoundTrip(t *testing.T) {
	// LongList{value: long, next: union{null, LongList}}
	schema, err := avro.Parse(`{
		"type": "record",
		"name": "LongList",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "LongList"]}
		]
	}`)
	require.NoError(t, err)

	// build the chain 5 -> null, then 4 -> 5, ... 1 -> 2
	var chain avro.Value = avro.NewRecord(
		avro.NamedValue{Name: "value", Value: avro.NewLong(5)},
		avro.NamedValue{Name: "next", Value: avro.NewUnion(0, avro.NewNull())},
	)
	for n := int64(4); n >= 1; n-- {
		chain = avro.NewRecord(
			avro.NamedValue{Name: "value", Value: avro.NewLong(n)},
			avro.NamedValue{Name: "next", Value: avro.NewUnion(1, chain)},
		)
	}

	out, err := avro.Encode(nil, schema, chain)
	require.NoError(t, err)

	v, n, err := avro.Decode(schema, out)
	require.NoError(t, err)
	assert.Equal(t, len(out), n)

	cur := v
	for want := int64(1); want <= 5; want++ {
		fv, ok := cur.FieldByName("value")
		require.True(t, ok)
		assert.Equal(t, want, fv.Long())
		nextField, ok := cur.FieldByName("next")
		require.True(t, ok)
		branch, inner := nextField.Union()
		if want == 5 {
			assert.Equal(t, 0, branch)
			assert.Equal(t, avro.KindNull, inner.Kind())
		} else {
			assert.Equal(t, 1, branch)
			cur = inner
		}
	}
}

func TestValueRoundTripLaw(t *testing.T) {
	schema, err := avro.Parse(`{
		"type": "record",
		"name": "Point",
		"fields": [
			{"name": "x", "type": "double"},
			{"name": "y", "type": "double"},
			{"name": "label", "type": ["null", "string"], "default": null}
		]
	}`)
	require.NoError(t, err)

	values := []avro.Value{
		avro.NewRecord(
			avro.NamedValue{Name: "x", Value: avro.NewDouble(1.5)},
			avro.NamedValue{Name: "y", Value: avro.NewDouble(-2.25)},
			avro.NamedValue{Name: "label", Value: avro.NewUnion(0, avro.NewNull())},
		),
		avro.NewRecord(
			avro.NamedValue{Name: "x", Value: avro.NewDouble(0)},
			avro.NamedValue{Name: "y", Value: avro.NewDouble(0)},
			avro.NamedValue{Name: "label", Value: avro.NewUnion(1, avro.NewString("origin"))},
		),
	}
	for _, v := range values {
		out, err := avro.Encode(nil, schema, v)
		require.NoError(t, err)
		got, n, err := avro.Decode(schema, out)
		require.NoError(t, err)
		assert.Equal(t, len(out), n)
		gx, _ := got.FieldByName("x")
		wx, _ := v.FieldByName("x")
		assert.Equal(t, wx.Float64(), gx.Float64())
	}
}

func TestDecodeErrorsAreLocated(t *testing.T) {
	_, _, err := avro.Decode(avro.Long, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	require.Error(t, err)
	var de *avro.DecodeError
	require.ErrorAs(t, err, &de)

	_, _, err = avro.Decode(avro.Boolean, []byte{0x02})
	require.Error(t, err)
	require.ErrorAs(t, err, &de)
}
