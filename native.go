package avro

import "fmt"

// FromNative widens a plain Go value (bool, numeric, string, []byte,
// []any, map[string]any) into the matching primitive/array/map Value,
// the shapes an external type-to-value mapper may rely on without needing
// to know Avro's own type names. It does not walk arbitrary struct
// fields — deriving a value tree from a user-defined struct's fields is
// left to a mapper that already knows the target schema and builds
// record, enum, fixed, and union shapes directly with
// NewRecord/NewEnum/NewFixed/NewUnion.
func FromNative(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBoolean(x), nil
	case int8:
		return NewInt(int32(x)), nil
	case int16:
		return NewInt(int32(x)), nil
	case int32:
		return NewInt(x), nil
	case int:
		return NewLong(int64(x)), nil
	case int64:
		return NewLong(x), nil
	case uint8:
		return NewInt(int32(x)), nil
	case uint16:
		return NewInt(int32(x)), nil
	case uint32:
		return NewLong(int64(x)), nil
	case uint64:
		return NewLong(int64(x)), nil
	case uint:
		return NewLong(int64(x)), nil
	case float32:
		return NewFloat(x), nil
	case float64:
		return NewDouble(x), nil
	case []byte:
		return NewBytes(x), nil
	case string:
		return NewString(x), nil
	}
	switch x := v.(type) {
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			iv, err := FromNative(item)
			if err != nil {
				return Value{}, fmt.Errorf("avro: FromNative: index %d: %w", i, err)
			}
			items[i] = iv
		}
		return NewArray(items), nil
	case map[string]any:
		entries := make([]MapEntry, 0, len(x))
		for k, item := range x {
			iv, err := FromNative(item)
			if err != nil {
				return Value{}, fmt.Errorf("avro: FromNative: key %q: %w", k, err)
			}
			entries = append(entries, MapEntry{Key: k, Value: iv})
		}
		return NewMap(entries), nil
	}
	return Value{}, fmt.Errorf("avro: FromNative: unsupported native type %T", v)
}
