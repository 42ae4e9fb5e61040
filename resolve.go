package avro

import "fmt"

// planKind selects how a resolution plan node adapts a writer-encoded value
// to a reader schema.
type planKind uint8

const (
	planDirect planKind = iota
	planPromoteIntToLong
	planPromoteIntToFloat
	planPromoteIntToDouble
	planPromoteLongToFloat
	planPromoteLongToDouble
	planPromoteFloatToDouble
	planBytesToString
	planStringToBytes
	planArray
	planMap
	planRecord
	planEnum
	planUnionWriter
	planUnionReaderOnly
	planIncompatible
)

// recordFieldPlan describes how one writer field, in writer declaration
// order (the order values actually appear on the wire), is decoded and
// either routed to a reader field or discarded.
type recordFieldPlan struct {
	writerName string
	readerName string // "" if this writer field has no reader counterpart and is discarded
	sub        *plan
}

// plan is a compiled, memoized description of how to adapt a value decoded
// under writer to conform to reader. Plans are built once per (writer,
// reader) schema-node pair via BuildResolution and reused across
// every value decoded from a stream. Self-referential schemas produce a
// cyclic plan graph built with a tie-the-knot: buildPlan inserts a plan's
// cache entry before recursing into its children, so a record field that
// refers back to the same (writer, reader) pair currently being built
// receives the same *plan pointer instead of recursing forever.
type plan struct {
	kind   planKind
	writer *Schema
	reader *Schema

	itemPlan *plan // array/map

	writerFieldPlans []recordFieldPlan // record, in writer field order
	// Reader fields absent from the writer take the reader Field's Default
	// when executeRecord builds the final record value.

	enumMap        []int // writer symbol index -> reader symbol index, or -1
	enumDefaultIdx int   // reader.SymbolIndex(default), or -1 if reader has none

	unionPlans []*plan // planUnionWriter: one per writer branch, indexed by writer branch index

	readerOnlyPick      *plan // planUnionReaderOnly
	readerOnlyBranchIdx int

	err error // planIncompatible
}

type pairKey struct {
	w, r *Schema
}

// Resolution is a compiled adaptation plan from a writer schema to a
// reader schema, ready to decode any number of values.
type Resolution struct {
	root *plan
}

// BuildResolution compiles the Avro schema-resolution rules between writer
// and reader into a reusable Resolution, or returns a
// ResolutionError describing the first incompatible subtree found.
func BuildResolution(writer, reader *Schema) (*Resolution, error) {
	cache := make(map[pairKey]*plan)
	root := buildPlan(writer, reader, cache)
	if err := validatePlan(root, make(map[*plan]bool)); err != nil {
		return nil, err
	}
	return &Resolution{root: root}, nil
}

// Decode adapts one value from data, decoded under the writer schema, into
// a value conformant to the reader schema.
func (r *Resolution) Decode(data []byte) (Value, int, error) {
	return executePlan(r.root, data, 0)
}

func buildPlan(w, r *Schema, cache map[pairKey]*plan) *plan {
	key := pairKey{w, r}
	if p, ok := cache[key]; ok {
		return p
	}
	p := &plan{writer: w, reader: r}
	cache[key] = p
	fillPlan(p, w, r, cache)
	return p
}

func incompatible(p *plan, format string, args ...interface{}) {
	p.kind = planIncompatible
	p.err = fmt.Errorf(format, args...)
}

func fillPlan(p *plan, w, r *Schema, cache map[pairKey]*plan) {
	if w.Kind() == KindUnion {
		p.kind = planUnionWriter
		p.unionPlans = make([]*plan, len(w.Branches()))
		for i, wb := range w.Branches() {
			p.unionPlans[i] = buildPlan(wb, r, cache)
		}
		return
	}
	if r.Kind() == KindUnion {
		for i, rb := range r.Branches() {
			sub := buildPlan(w, rb, cache)
			if sub.kind != planIncompatible {
				p.kind = planUnionReaderOnly
				p.readerOnlyPick = sub
				p.readerOnlyBranchIdx = i
				return
			}
		}
		incompatible(p, "no reader union branch is compatible with writer type %s", w.Fullname())
		return
	}

	switch w.Kind() {
	case KindNull:
		if r.Kind() == KindNull {
			p.kind = planDirect
			return
		}
	case KindBoolean:
		if r.Kind() == KindBoolean {
			p.kind = planDirect
			return
		}
	case KindInt:
		switch r.Kind() {
		case KindInt:
			p.kind = planDirect
			return
		case KindLong:
			p.kind = planPromoteIntToLong
			return
		case KindFloat:
			p.kind = planPromoteIntToFloat
			return
		case KindDouble:
			p.kind = planPromoteIntToDouble
			return
		}
	case KindLong:
		switch r.Kind() {
		case KindLong:
			p.kind = planDirect
			return
		case KindFloat:
			p.kind = planPromoteLongToFloat
			return
		case KindDouble:
			p.kind = planPromoteLongToDouble
			return
		}
	case KindFloat:
		switch r.Kind() {
		case KindFloat:
			p.kind = planDirect
			return
		case KindDouble:
			p.kind = planPromoteFloatToDouble
			return
		}
	case KindDouble:
		if r.Kind() == KindDouble {
			p.kind = planDirect
			return
		}
	case KindBytes:
		switch r.Kind() {
		case KindBytes:
			p.kind = planDirect
			return
		case KindString:
			p.kind = planBytesToString
			return
		}
	case KindString:
		switch r.Kind() {
		case KindString:
			p.kind = planDirect
			return
		case KindBytes:
			p.kind = planStringToBytes
			return
		}
	case KindFixed:
		if r.Kind() == KindFixed && namesCompatible(w, r) && w.Size() == r.Size() {
			p.kind = planDirect
			return
		}
	case KindEnum:
		if r.Kind() == KindEnum && namesCompatible(w, r) {
			p.kind = planEnum
			p.enumMap = make([]int, len(w.Symbols()))
			for i, sym := range w.Symbols() {
				p.enumMap[i] = r.SymbolIndex(sym)
			}
			p.enumDefaultIdx = -1
			if def, ok := r.EnumDefault(); ok {
				p.enumDefaultIdx = r.SymbolIndex(def)
			}
			return
		}
	case KindArray:
		if r.Kind() == KindArray {
			p.kind = planArray
			p.itemPlan = buildPlan(w.Items(), r.Items(), cache)
			return
		}
	case KindMap:
		if r.Kind() == KindMap {
			p.kind = planMap
			p.itemPlan = buildPlan(w.Values(), r.Values(), cache)
			return
		}
	case KindRecord:
		if r.Kind() == KindRecord && namesCompatible(w, r) {
			fillRecordPlan(p, w, r, cache)
			return
		}
	}
	incompatible(p, "incompatible schema kinds: writer %s (%s), reader %s (%s)", w.Kind(), w.Fullname(), r.Kind(), r.Fullname())
}

// namesCompatible reports whether w and r name the same type, matching by
// fullname or alias in either direction.
func namesCompatible(w, r *Schema) bool {
	if w.Fullname() == r.Fullname() {
		return true
	}
	return r.HasFullname(w.Fullname()) || w.HasFullname(r.Fullname())
}

func fillRecordPlan(p *plan, w, r *Schema, cache map[pairKey]*plan) {
	p.kind = planRecord
	p.writerFieldPlans = make([]recordFieldPlan, 0, len(w.Fields()))
	matchedReaderNames := make(map[string]bool, len(w.Fields()))
	for _, wf := range w.Fields() {
		rf := r.FieldByName(wf.Name)
		if rf == nil {
			for _, alias := range wf.Aliases {
				if rf = r.FieldByName(alias); rf != nil {
					break
				}
			}
		}
		if rf == nil {
			p.writerFieldPlans = append(p.writerFieldPlans, recordFieldPlan{
				writerName: wf.Name,
				sub:        buildPlan(wf.Type, wf.Type, cache), // decode-and-discard: adapt to itself
			})
			continue
		}
		matchedReaderNames[rf.Name] = true
		p.writerFieldPlans = append(p.writerFieldPlans, recordFieldPlan{
			writerName: wf.Name,
			readerName: rf.Name,
			sub:        buildPlan(wf.Type, rf.Type, cache),
		})
	}
	for _, rf := range r.Fields() {
		if matchedReaderNames[rf.Name] {
			continue
		}
		if !rf.HasDefault {
			incompatible(p, "reader field %q is absent from writer %s and has no reader default", rf.Name, w.Fullname())
			return
		}
	}
}

func validatePlan(p *plan, visited map[*plan]bool) error {
	if visited[p] {
		return nil
	}
	visited[p] = true
	switch p.kind {
	case planIncompatible:
		return resolveErr(p.writer.Fullname()+"->"+p.reader.Fullname(), "%s", p.err)
	case planArray, planMap:
		return validatePlan(p.itemPlan, visited)
	case planRecord:
		for _, fp := range p.writerFieldPlans {
			if err := validatePlan(fp.sub, visited); err != nil {
				return err
			}
		}
	case planUnionWriter:
		for _, sp := range p.unionPlans {
			if err := validatePlan(sp, visited); err != nil {
				return err
			}
		}
	case planUnionReaderOnly:
		return validatePlan(p.readerOnlyPick, visited)
	}
	return nil
}

func executePlan(p *plan, data []byte, off int) (Value, int, error) {
	switch p.kind {
	case planDirect:
		return decodeAt(p.writer, data, off)
	case planPromoteIntToLong:
		v, sz, err := decodeAt(Int, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewLong(int64(v.Int())), sz, nil
	case planPromoteIntToFloat:
		v, sz, err := decodeAt(Int, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewFloat(float32(v.Int())), sz, nil
	case planPromoteIntToDouble:
		v, sz, err := decodeAt(Int, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewDouble(float64(v.Int())), sz, nil
	case planPromoteLongToFloat:
		v, sz, err := decodeAt(Long, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewFloat(float32(v.Long())), sz, nil
	case planPromoteLongToDouble:
		v, sz, err := decodeAt(Long, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewDouble(float64(v.Long())), sz, nil
	case planPromoteFloatToDouble:
		v, sz, err := decodeAt(Float, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewDouble(float64(v.Float32())), sz, nil
	case planBytesToString:
		b, sz, err := decodeByteString(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		if !validUTF8(b) {
			return Value{}, 0, decodeErr(off, "invalid UTF-8 in bytes-to-string promotion")
		}
		return NewString(string(b)), sz, nil
	case planStringToBytes:
		b, sz, err := decodeByteString(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewBytes(b), sz, nil
	case planArray:
		return executeArray(p, data, off)
	case planMap:
		return executeMap(p, data, off)
	case planRecord:
		return executeRecord(p, data, off)
	case planEnum:
		return executeEnum(p, data, off)
	case planUnionWriter:
		return executeUnionWriter(p, data, off)
	case planUnionReaderOnly:
		v, sz, err := executePlan(p.readerOnlyPick, data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewUnion(p.readerOnlyBranchIdx, v), sz, nil
	case planIncompatible:
		return Value{}, 0, resolveErr(p.writer.Fullname()+"->"+p.reader.Fullname(), "%s", p.err)
	default:
		return Value{}, 0, resolveErr("", "unhandled resolution plan kind")
	}
}

func executeArray(p *plan, data []byte, off int) (Value, int, error) {
	var items []Value
	total, err := decodeBlocked(data, off, func(itemOff int) (int, error) {
		v, sz, err := executePlan(p.itemPlan, data, itemOff)
		if err != nil {
			return 0, err
		}
		items = append(items, v)
		return sz, nil
	})
	if err != nil {
		return Value{}, 0, err
	}
	return NewArray(items), total, nil
}

func executeMap(p *plan, data []byte, off int) (Value, int, error) {
	var entries []MapEntry
	total, err := decodeBlocked(data, off, func(itemOff int) (int, error) {
		key, ksz, err := decodeByteString(data, itemOff)
		if err != nil {
			return 0, err
		}
		v, vsz, err := executePlan(p.itemPlan, data, itemOff+ksz)
		if err != nil {
			return 0, err
		}
		entries = append(entries, MapEntry{Key: string(key), Value: v})
		return ksz + vsz, nil
	})
	if err != nil {
		return Value{}, 0, err
	}
	return NewMap(entries), total, nil
}

func executeRecord(p *plan, data []byte, off int) (Value, int, error) {
	total := 0
	decoded := make(map[string]Value, len(p.writerFieldPlans))
	for _, fp := range p.writerFieldPlans {
		v, sz, err := executePlan(fp.sub, data, off+total)
		if err != nil {
			return Value{}, 0, err
		}
		total += sz
		if fp.readerName != "" {
			decoded[fp.readerName] = v
		}
	}
	fields := make([]NamedValue, 0, len(p.reader.Fields()))
	for _, rf := range p.reader.Fields() {
		if v, ok := decoded[rf.Name]; ok {
			fields = append(fields, NamedValue{Name: rf.Name, Value: v})
			continue
		}
		if !rf.HasDefault {
			return Value{}, 0, resolveErr(p.reader.Fullname()+"."+rf.Name, "field absent from writer %s has no reader default", p.writer.Fullname())
		}
		def := rf.Default
		if rf.Type.Kind() == KindUnion {
			def = NewUnion(0, def)
		}
		fields = append(fields, NamedValue{Name: rf.Name, Value: def})
	}
	return NewRecord(fields...), total, nil
}

func executeEnum(p *plan, data []byte, off int) (Value, int, error) {
	idx, sz, err := getLong(data, off)
	if err != nil {
		return Value{}, 0, err
	}
	if idx < 0 || int(idx) >= len(p.enumMap) {
		return Value{}, 0, decodeErr(off, "enum index %d out of range", idx)
	}
	readerIdx := p.enumMap[idx]
	if readerIdx < 0 {
		readerIdx = p.enumDefaultIdx
	}
	if readerIdx < 0 {
		return Value{}, 0, resolveErr(p.reader.Fullname(), "writer symbol %q has no reader match and reader has no enum default", p.writer.Symbols()[idx])
	}
	v, err := NewEnumByIndex(p.reader, readerIdx)
	if err != nil {
		return Value{}, 0, decodeErr(off, "%s", err)
	}
	return v, sz, nil
}

func executeUnionWriter(p *plan, data []byte, off int) (Value, int, error) {
	idx, sz, err := getLong(data, off)
	if err != nil {
		return Value{}, 0, err
	}
	if idx < 0 || int(idx) >= len(p.unionPlans) {
		return Value{}, 0, decodeErr(off, "union index %d out of range for %d writer branches", idx, len(p.unionPlans))
	}
	v, isz, err := executePlan(p.unionPlans[idx], data, off+sz)
	if err != nil {
		return Value{}, 0, err
	}
	return v, sz + isz, nil
}
