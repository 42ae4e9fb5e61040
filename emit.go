package avro

import (
	json "github.com/goccy/go-json"
)

// Emit renders s back to Avro schema JSON, preserving doc, aliases,
// defaults, and field ordering hints (unlike CanonicalForm, which strips
// them). Parsing the result of Emit always yields a schema structurally
// equal to s. Named types are inlined at first occurrence and referred to
// by fullname thereafter, exactly as CanonicalForm does.
func Emit(s *Schema) (string, error) {
	tree, err := emitNode(s, make(map[*Schema]bool))
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func emitNode(s *Schema, seen map[*Schema]bool) (any, error) {
	switch s.Kind() {
	case KindRecord:
		if seen[s] {
			return s.Fullname(), nil
		}
		seen[s] = true
		fields := make([]any, len(s.Fields()))
		for i, f := range s.Fields() {
			ft, err := emitNode(f.Type, seen)
			if err != nil {
				return nil, err
			}
			fobj := map[string]any{"name": f.Name, "type": ft}
			if f.Doc != "" {
				fobj["doc"] = f.Doc
			}
			if len(f.Aliases) > 0 {
				fobj["aliases"] = f.Aliases
			}
			if f.Order != "" && f.Order != "ascending" {
				fobj["order"] = f.Order
			}
			if f.HasDefault {
				dv, err := valueToNative(f.Default, f.Type)
				if err != nil {
					return nil, err
				}
				fobj["default"] = dv
			}
			fields[i] = fobj
		}
		obj := map[string]any{"type": "record", "name": s.Fullname(), "fields": fields}
		addNamedAttrs(obj, s)
		return obj, nil
	case KindEnum:
		if seen[s] {
			return s.Fullname(), nil
		}
		seen[s] = true
		obj := map[string]any{"type": "enum", "name": s.Fullname(), "symbols": s.Symbols()}
		if def, ok := s.EnumDefault(); ok {
			obj["default"] = def
		}
		addNamedAttrs(obj, s)
		return obj, nil
	case KindFixed:
		if seen[s] {
			return s.Fullname(), nil
		}
		seen[s] = true
		obj := map[string]any{"type": "fixed", "name": s.Fullname(), "size": s.Size()}
		addNamedAttrs(obj, s)
		return obj, nil
	case KindArray:
		items, err := emitNode(s.Items(), seen)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case KindMap:
		values, err := emitNode(s.Values(), seen)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "map", "values": values}, nil
	case KindUnion:
		branches := make([]any, len(s.Branches()))
		for i, b := range s.Branches() {
			bt, err := emitNode(b, seen)
			if err != nil {
				return nil, err
			}
			branches[i] = bt
		}
		return branches, nil
	default:
		return s.Kind().String(), nil
	}
}

func addNamedAttrs(obj map[string]any, s *Schema) {
	if s.Doc() != "" {
		obj["doc"] = s.Doc()
	}
	if len(s.Aliases()) > 0 {
		obj["aliases"] = s.Aliases()
	}
}

// valueToNative converts a Value tree back to a native Go value suitable
// for JSON marshaling as a schema default, mirroring parseDefault's rules
// in reverse. Bytes and fixed defaults use Avro's convention of encoding
// each raw byte as the Unicode code point of the same ordinal value.
func valueToNative(v Value, schema *Schema) (any, error) {
	switch schema.Kind() {
	case KindUnion:
		if len(schema.Branches()) == 0 {
			return nil, parseErr("", "union has no branches")
		}
		return valueToNative(v, schema.Branches()[0])
	case KindNull:
		return nil, nil
	case KindBoolean:
		return v.Bool(), nil
	case KindInt:
		return v.Int(), nil
	case KindLong:
		return v.Long(), nil
	case KindFloat:
		return v.Float32(), nil
	case KindDouble:
		return v.Float64(), nil
	case KindString:
		return v.String(), nil
	case KindBytes, KindFixed:
		return bytesToLatin1(v.Bytes()), nil
	case KindEnum:
		sym, _ := v.EnumSymbol()
		return sym, nil
	case KindArray:
		items := make([]any, len(v.Items()))
		for i, item := range v.Items() {
			nv, err := valueToNative(item, schema.Items())
			if err != nil {
				return nil, err
			}
			items[i] = nv
		}
		return items, nil
	case KindMap:
		obj := make(map[string]any, len(v.Entries()))
		for _, e := range v.Entries() {
			nv, err := valueToNative(e.Value, schema.Values())
			if err != nil {
				return nil, err
			}
			obj[e.Key] = nv
		}
		return obj, nil
	case KindRecord:
		obj := make(map[string]any, len(schema.Fields()))
		for _, f := range schema.Fields() {
			fv, ok := v.FieldByName(f.Name)
			if !ok {
				continue
			}
			nv, err := valueToNative(fv, f.Type)
			if err != nil {
				return nil, err
			}
			obj[f.Name] = nv
		}
		return obj, nil
	default:
		return nil, parseErr("", "unsupported default value for schema kind %s", schema.Kind())
	}
}

func bytesToLatin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
