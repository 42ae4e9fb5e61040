package avro

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Parse parses an Avro schema from JSON text, binding all named references
// and validating the schema's naming and default-value invariants. The
// returned Schema tree is immutable and may be shared freely across
// goroutines.
func Parse(jsonText string) (*Schema, error) {
	return ParseBytes([]byte(jsonText))
}

// ParseBytes is Parse for a []byte, avoiding a string copy for callers that
// already hold the schema JSON as bytes (e.g. reading avro.schema out of a
// data-file header).
func ParseBytes(data []byte) (*Schema, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &SchemaParseError{Err: fmt.Errorf("invalid schema JSON: %w", err)}
	}
	p := &schemaParser{ctx: newSchemaContext()}
	return p.parseType(root, "", "$")
}

type schemaParser struct {
	ctx *SchemaContext
}

func (p *schemaParser) parseType(node any, namespace, path string) (*Schema, error) {
	switch v := node.(type) {
	case string:
		return p.parseNameOrPrimitive(v, namespace, path)
	case []any:
		return p.parseUnion(v, namespace, path)
	case map[string]any:
		return p.parseObject(v, namespace, path)
	default:
		return nil, parseErr(path, "expected a type name, union array, or type object, got %T", node)
	}
}

func (p *schemaParser) parseNameOrPrimitive(name, namespace, path string) (*Schema, error) {
	if prim := PrimitiveByName(name); prim != nil {
		return prim, nil
	}
	if name == "" {
		return nil, parseErr(path, "empty type name")
	}
	if s, ok := p.ctx.lookup(fullname(namespace, name)); ok {
		return s, nil
	}
	if s, ok := p.ctx.lookup(name); ok {
		return s, nil
	}
	return nil, parseErr(path, "%w: %q", ErrUnresolvedReference, name)
}

func (p *schemaParser) parseUnion(items []any, namespace, path string) (*Schema, error) {
	branches := make([]*Schema, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		b, err := p.parseType(item, namespace, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if b.Kind() == KindUnion {
			return nil, parseErr(path, "union may not directly contain another union")
		}
		key := unionDedupeKey(b)
		if seen[key] {
			return nil, parseErr(path, "duplicate branch %s in union", key)
		}
		seen[key] = true
		branches = append(branches, b)
	}
	return NewUnionSchema(branches), nil
}

func unionDedupeKey(s *Schema) string {
	switch {
	case s.Kind().IsNamed():
		return s.Kind().String() + ":" + s.Fullname()
	default:
		return s.Kind().String()
	}
}

func (p *schemaParser) parseObject(obj map[string]any, namespace, path string) (*Schema, error) {
	typVal, ok := obj["type"]
	if !ok {
		return nil, parseErr(path, "type object missing required \"type\" key")
	}
	// A "type" naming a container of type objects (e.g. {"type": {"type": "record", ...}})
	// is not valid Avro; "type" must select a variant by string.
	typStr, ok := typVal.(string)
	if !ok {
		return nil, parseErr(path, "\"type\" must be a string")
	}
	switch typStr {
	case "record":
		return p.parseRecord(obj, namespace, path)
	case "enum":
		return p.parseEnum(obj, namespace, path)
	case "fixed":
		return p.parseFixed(obj, namespace, path)
	case "array":
		return p.parseArray(obj, namespace, path)
	case "map":
		return p.parseMap(obj, namespace, path)
	default:
		return p.parseNameOrPrimitive(typStr, namespace, path)
	}
}

// splitNameAndNamespace applies the Avro naming rules: a dotted "name"
// value is treated as an already-fully-qualified name and wins over any
// "namespace" field or enclosing namespace; otherwise an explicit
// "namespace" field is used, falling back to the enclosing namespace.
func splitNameAndNamespace(obj map[string]any, enclosing, path string) (name, namespace string, err error) {
	rawVal, ok := obj["name"]
	if !ok {
		return "", "", parseErr(path, "missing required \"name\"")
	}
	raw, ok := rawVal.(string)
	if !ok {
		return "", "", parseErr(path, "\"name\" must be a string")
	}
	if raw == "" {
		return "", "", parseErr(path, "\"name\" must not be empty")
	}
	if containsDot(raw) {
		ns, bare := splitFullname(raw)
		if !isValidIdentifier(bare) {
			return "", "", parseErr(path, "invalid name %q", raw)
		}
		return bare, ns, nil
	}
	if !isValidIdentifier(raw) {
		return "", "", parseErr(path, "invalid name %q", raw)
	}
	if nsVal, ok := obj["namespace"]; ok {
		ns, ok := nsVal.(string)
		if !ok {
			return "", "", parseErr(path, "\"namespace\" must be a string")
		}
		return raw, ns, nil
	}
	return raw, enclosing, nil
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

func docString(obj map[string]any) string {
	d, _ := obj["doc"].(string)
	return d
}

func (p *schemaParser) parseRecord(obj map[string]any, enclosing, path string) (*Schema, error) {
	name, ns, err := splitNameAndNamespace(obj, enclosing, path)
	if err != nil {
		return nil, err
	}
	full := fullname(ns, name)
	stub := &Schema{
		kind:      KindRecord,
		name:      name,
		namespace: ns,
		aliases:   parseAliasesJSON(obj["aliases"]),
		doc:       docString(obj),
	}
	if err := p.ctx.register(full, stub); err != nil {
		return nil, parseErr(path, "%s", err)
	}
	if err := p.ctx.registerAliases(stub); err != nil {
		return nil, parseErr(path, "%s", err)
	}
	fieldsRaw, ok := obj["fields"].([]any)
	if !ok {
		return nil, parseErr(path, "record %q missing required \"fields\" array", full)
	}
	fields := make([]*Field, 0, len(fieldsRaw))
	seen := make(map[string]bool, len(fieldsRaw))
	for i, fr := range fieldsRaw {
		fpath := fmt.Sprintf("%s.fields[%d]", path, i)
		fobj, ok := fr.(map[string]any)
		if !ok {
			return nil, parseErr(fpath, "field must be an object")
		}
		fname, ok := fobj["name"].(string)
		if !ok || fname == "" {
			return nil, parseErr(fpath, "field missing required \"name\"")
		}
		if seen[fname] {
			return nil, parseErr(fpath, "duplicate field name %q", fname)
		}
		seen[fname] = true
		typJSON, ok := fobj["type"]
		if !ok {
			return nil, parseErr(fpath, "field %q missing required \"type\"", fname)
		}
		ftype, err := p.parseType(typJSON, ns, fpath+".type")
		if err != nil {
			return nil, err
		}
		field := &Field{Name: fname, Type: ftype, Order: "ascending", Doc: docString(fobj)}
		if orderVal, ok := fobj["order"]; ok {
			orderStr, _ := orderVal.(string)
			switch orderStr {
			case "ascending", "descending", "ignore":
				field.Order = orderStr
			default:
				return nil, parseErr(fpath, "invalid field order %q", orderStr)
			}
		}
		field.Aliases = parseAliasesJSON(fobj["aliases"])
		if defVal, ok := fobj["default"]; ok {
			dv, err := parseDefault(defVal, ftype, fpath+".default")
			if err != nil {
				return nil, err
			}
			field.HasDefault = true
			field.Default = dv
		}
		fields = append(fields, field)
	}
	stub.fields = fields
	return stub, nil
}

func (p *schemaParser) parseEnum(obj map[string]any, enclosing, path string) (*Schema, error) {
	name, ns, err := splitNameAndNamespace(obj, enclosing, path)
	if err != nil {
		return nil, err
	}
	symbolsRaw, ok := obj["symbols"].([]any)
	if !ok {
		return nil, parseErr(path, "enum %q missing required \"symbols\" array", fullname(ns, name))
	}
	symbols := make([]string, 0, len(symbolsRaw))
	seen := make(map[string]bool, len(symbolsRaw))
	for _, sv := range symbolsRaw {
		s, ok := sv.(string)
		if !ok || !isValidIdentifier(s) {
			return nil, parseErr(path, "invalid enum symbol %v", sv)
		}
		if seen[s] {
			return nil, parseErr(path, "duplicate enum symbol %q", s)
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	s := NewEnumSchema(name, ns, symbols, parseAliasesJSON(obj["aliases"]), docString(obj))
	if defVal, ok := obj["default"]; ok {
		def, ok := defVal.(string)
		if !ok || s.SymbolIndex(def) < 0 {
			return nil, parseErr(path, "enum default %v is not a declared symbol", defVal)
		}
		s.enumDefault = def
		s.hasEnumDef = true
	}
	full := fullname(ns, name)
	if err := p.ctx.register(full, s); err != nil {
		return nil, parseErr(path, "%s", err)
	}
	if err := p.ctx.registerAliases(s); err != nil {
		return nil, parseErr(path, "%s", err)
	}
	return s, nil
}

func (p *schemaParser) parseFixed(obj map[string]any, enclosing, path string) (*Schema, error) {
	name, ns, err := splitNameAndNamespace(obj, enclosing, path)
	if err != nil {
		return nil, err
	}
	sizeVal, ok := obj["size"]
	if !ok {
		return nil, parseErr(path, "fixed %q missing required \"size\"", fullname(ns, name))
	}
	sizeNum, ok := sizeVal.(float64)
	if !ok || sizeNum < 0 || sizeNum != float64(int(sizeNum)) {
		return nil, parseErr(path, "fixed \"size\" must be a non-negative integer, got %v", sizeVal)
	}
	s := NewFixedSchema(name, ns, int(sizeNum), parseAliasesJSON(obj["aliases"]))
	full := fullname(ns, name)
	if err := p.ctx.register(full, s); err != nil {
		return nil, parseErr(path, "%s", err)
	}
	if err := p.ctx.registerAliases(s); err != nil {
		return nil, parseErr(path, "%s", err)
	}
	return s, nil
}

func (p *schemaParser) parseArray(obj map[string]any, namespace, path string) (*Schema, error) {
	itemsJSON, ok := obj["items"]
	if !ok {
		return nil, parseErr(path, "array schema missing required \"items\"")
	}
	items, err := p.parseType(itemsJSON, namespace, path+".items")
	if err != nil {
		return nil, err
	}
	return NewArraySchema(items), nil
}

func (p *schemaParser) parseMap(obj map[string]any, namespace, path string) (*Schema, error) {
	valuesJSON, ok := obj["values"]
	if !ok {
		return nil, parseErr(path, "map schema missing required \"values\"")
	}
	values, err := p.parseType(valuesJSON, namespace, path+".values")
	if err != nil {
		return nil, err
	}
	return NewMapSchema(values), nil
}

// parseDefault parses a record field's default JSON literal against its
// declared type. Per the Avro specification, a union-typed field's default
// is always validated against branch 0 regardless of which branch the
// literal might otherwise resemble. Bytes and fixed defaults are JSON
// strings whose code points U+0000..U+00FF each stand for one raw byte.
func parseDefault(v any, schema *Schema, path string) (Value, error) {
	if schema.Kind() == KindUnion {
		if len(schema.Branches()) == 0 {
			return Value{}, parseErr(path, "union has no branches to validate a default against")
		}
		return parseDefault(v, schema.Branches()[0], path)
	}
	switch schema.Kind() {
	case KindNull:
		if v != nil {
			return Value{}, parseErr(path, "expected null default")
		}
		return NewNull(), nil
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return Value{}, parseErr(path, "expected boolean default")
		}
		return NewBoolean(b), nil
	case KindInt:
		n, ok := v.(float64)
		if !ok {
			return Value{}, parseErr(path, "expected int default")
		}
		return NewInt(int32(n)), nil
	case KindLong:
		n, ok := v.(float64)
		if !ok {
			return Value{}, parseErr(path, "expected long default")
		}
		return NewLong(int64(n)), nil
	case KindFloat:
		n, ok := v.(float64)
		if !ok {
			return Value{}, parseErr(path, "expected float default")
		}
		return NewFloat(float32(n)), nil
	case KindDouble:
		n, ok := v.(float64)
		if !ok {
			return Value{}, parseErr(path, "expected double default")
		}
		return NewDouble(n), nil
	case KindBytes, KindFixed:
		s, ok := v.(string)
		if !ok {
			return Value{}, parseErr(path, "expected %s default (encoded as a JSON string)", schema.Kind())
		}
		b := make([]byte, 0, len(s))
		for _, r := range s {
			if r > 0xff {
				return Value{}, parseErr(path, "%s default contains code point U+%04X above U+00FF", schema.Kind(), r)
			}
			b = append(b, byte(r))
		}
		if schema.Kind() == KindFixed {
			return Value{kind: KindFixed, bytesVal: b}, nil
		}
		return NewBytes(b), nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return Value{}, parseErr(path, "expected string default")
		}
		return NewString(s), nil
	case KindEnum:
		s, ok := v.(string)
		if !ok || schema.SymbolIndex(s) < 0 {
			return Value{}, parseErr(path, "default %v is not a symbol of enum %s", v, schema.Fullname())
		}
		return NewEnum(schema, s)
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return Value{}, parseErr(path, "expected array default")
		}
		items := make([]Value, len(arr))
		for i, item := range arr {
			iv, err := parseDefault(item, schema.Items(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return NewArray(items), nil
	case KindMap:
		obj, ok := v.(map[string]any)
		if !ok {
			return Value{}, parseErr(path, "expected map default")
		}
		entries := make([]MapEntry, 0, len(obj))
		for k, item := range obj {
			iv, err := parseDefault(item, schema.Values(), path+"."+k)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: k, Value: iv})
		}
		return NewMap(entries), nil
	case KindRecord:
		obj, ok := v.(map[string]any)
		if !ok {
			return Value{}, parseErr(path, "expected record default")
		}
		fields := make([]NamedValue, 0, len(schema.Fields()))
		for _, f := range schema.Fields() {
			raw, present := obj[f.Name]
			if !present {
				if !f.HasDefault {
					return Value{}, parseErr(path, "record default missing field %q with no field-level default", f.Name)
				}
				fields = append(fields, NamedValue{Name: f.Name, Value: f.Default})
				continue
			}
			fv, err := parseDefault(raw, f.Type, path+"."+f.Name)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, NamedValue{Name: f.Name, Value: fv})
		}
		return NewRecord(fields...), nil
	default:
		return Value{}, parseErr(path, "unsupported default for schema kind %s", schema.Kind())
	}
}
