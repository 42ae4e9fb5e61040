package avro

import "strings"

// Kind identifies the variant of a Schema or Value node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindRecord
	KindEnum
	KindFixed
	KindArray
	KindMap
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindFixed:
		return "fixed"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether k is one of the eight Avro primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k <= KindString
}

// IsNamed reports whether k carries a fullname (record, enum, fixed).
func (k Kind) IsNamed() bool {
	return k == KindRecord || k == KindEnum || k == KindFixed
}

// Field describes one field of a record schema.
type Field struct {
	Name       string
	Type       *Schema
	HasDefault bool
	Default    Value
	Aliases    []string
	Order      string // "ascending", "descending", "ignore"; preserved, unused by the codec
	Doc        string
}

// HasAlias reports whether name matches the field's name or one of its aliases.
func (f *Field) HasAlias(name string) bool {
	if f.Name == name {
		return true
	}
	for _, a := range f.Aliases {
		if a == name {
			return true
		}
	}
	return false
}

// Schema is a node in an Avro schema tree. It is a closed sum over the
// primitive, named, container, and union variants described by the Avro
// specification; Kind selects which fields are meaningful. Schema values
// are immutable once returned from Parse and safe to share across
// goroutines.
type Schema struct {
	kind Kind

	// Named (record, enum, fixed).
	name      string
	namespace string
	aliases   []string
	doc       string

	// Record.
	fields []*Field

	// Enum.
	symbols     []string
	enumDefault string
	hasEnumDef  bool

	// Fixed.
	size int

	// Array.
	items *Schema

	// Map.
	values *Schema

	// Union.
	branches []*Schema
}

// Kind returns the variant tag of the schema node.
func (s *Schema) Kind() Kind { return s.kind }

// Name returns the bare name (without namespace) of a named schema, or ""
// for schema kinds that are not named.
func (s *Schema) Name() string { return s.name }

// Namespace returns the namespace under which Name is scoped.
func (s *Schema) Namespace() string { return s.namespace }

// Doc returns the documentation string attached to a named schema, if any.
func (s *Schema) Doc() string { return s.doc }

// Aliases returns the additional legal fullnames for a named schema.
func (s *Schema) Aliases() []string { return s.aliases }

// Fullname returns "namespace.name" for a named schema (or the bare name
// if there is no namespace), and the primitive/container keyword otherwise.
func (s *Schema) Fullname() string {
	if !s.kind.IsNamed() {
		return s.kind.String()
	}
	return fullname(s.namespace, s.name)
}

// FullAliases returns each alias resolved to a fullname the same way Name
// is resolved to Fullname: an alias containing a dot is used as-is,
// otherwise it is scoped under the schema's own namespace.
func (s *Schema) FullAliases() []string {
	out := make([]string, len(s.aliases))
	for i, a := range s.aliases {
		out[i] = fullname(s.namespace, a)
	}
	return out
}

// HasFullname reports whether name matches the schema's fullname or one of
// its alias fullnames.
func (s *Schema) HasFullname(name string) bool {
	if s.Fullname() == name {
		return true
	}
	for _, a := range s.FullAliases() {
		if a == name {
			return true
		}
	}
	return false
}

// Fields returns the fields of a record schema, in declaration order.
func (s *Schema) Fields() []*Field { return s.fields }

// FieldByName returns the field matching name (by name or alias) in a
// record schema, or nil if there is none.
func (s *Schema) FieldByName(name string) *Field {
	for _, f := range s.fields {
		if f.HasAlias(name) {
			return f
		}
	}
	return nil
}

// Symbols returns the symbol table of an enum schema, in declaration order.
func (s *Schema) Symbols() []string { return s.symbols }

// EnumDefault returns the enum's default symbol and whether one was set.
func (s *Schema) EnumDefault() (string, bool) { return s.enumDefault, s.hasEnumDef }

// SymbolIndex returns the declaration-order index of symbol, or -1.
func (s *Schema) SymbolIndex(symbol string) int {
	for i, sym := range s.symbols {
		if sym == symbol {
			return i
		}
	}
	return -1
}

// Size returns the byte length of a fixed schema.
func (s *Schema) Size() int { return s.size }

// Items returns the element schema of an array schema.
func (s *Schema) Items() *Schema { return s.items }

// Values returns the value schema of a map schema.
func (s *Schema) Values() *Schema { return s.values }

// Branches returns the ordered branch schemas of a union schema.
func (s *Schema) Branches() []*Schema { return s.branches }

// Package-level singletons for the eight primitive kinds, mirroring how a
// closed set of primitives never needs more than one instance each.
var (
	Null    = &Schema{kind: KindNull}
	Boolean = &Schema{kind: KindBoolean}
	Int     = &Schema{kind: KindInt}
	Long    = &Schema{kind: KindLong}
	Float   = &Schema{kind: KindFloat}
	Double  = &Schema{kind: KindDouble}
	Bytes   = &Schema{kind: KindBytes}
	String  = &Schema{kind: KindString}
)

var primitivesByName = map[string]*Schema{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
}

// PrimitiveByName returns the singleton Schema for a primitive type name,
// or nil if name does not name a primitive.
func PrimitiveByName(name string) *Schema { return primitivesByName[name] }

// NewRecordSchema constructs a record schema from already-built fields, so
// no field type can refer back to the record being constructed.
// Self-referential records are produced by Parse.
func NewRecordSchema(name, namespace string, fields []*Field, aliases []string, doc string) *Schema {
	return &Schema{kind: KindRecord, name: name, namespace: namespace, fields: fields, aliases: aliases, doc: doc}
}

// NewEnumSchema constructs an enum schema.
func NewEnumSchema(name, namespace string, symbols []string, aliases []string, doc string) *Schema {
	return &Schema{kind: KindEnum, name: name, namespace: namespace, symbols: symbols, aliases: aliases, doc: doc}
}

// NewEnumSchemaWithDefault constructs an enum schema carrying a default symbol.
func NewEnumSchemaWithDefault(name, namespace string, symbols []string, aliases []string, doc, def string) *Schema {
	s := NewEnumSchema(name, namespace, symbols, aliases, doc)
	s.enumDefault = def
	s.hasEnumDef = true
	return s
}

// NewFixedSchema constructs a fixed schema of the given byte size.
func NewFixedSchema(name, namespace string, size int, aliases []string) *Schema {
	return &Schema{kind: KindFixed, name: name, namespace: namespace, size: size, aliases: aliases}
}

// NewArraySchema constructs an array schema with the given item schema.
func NewArraySchema(items *Schema) *Schema {
	return &Schema{kind: KindArray, items: items}
}

// NewMapSchema constructs a map schema with the given value schema.
func NewMapSchema(values *Schema) *Schema {
	return &Schema{kind: KindMap, values: values}
}

// NewUnionSchema constructs a union schema over the given branches, in order.
func NewUnionSchema(branches []*Schema) *Schema {
	return &Schema{kind: KindUnion, branches: branches}
}

// fullname computes namespace + "." + name per the Avro naming rules: if
// name itself contains a dot it is treated as already fully qualified and
// wins over any enclosing namespace.
func fullname(namespace, name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// splitFullname splits a dotted fullname into namespace and bare name.
func splitFullname(full string) (namespace, name string) {
	i := strings.LastIndex(full, ".")
	if i < 0 {
		return "", full
	}
	return full[:i], full[i+1:]
}
