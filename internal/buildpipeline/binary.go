package buildpipeline

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"hydro/internal/hydro"
	"hydro/internal/value"
)

// Binary is a length-prefixed TLV encoding of a linked *hydro.Module tree:
// every variable-length element (string, array, instruction body) is
// preceded by a uint32 count/length, so Decode never has to scan for a
// terminator. Instruction opcodes are single bytes from the opcode table
// below rather than the textual mnemonics format.go emits, keeping the
// artifact compact the way the teacher's own bytecode chunk format is.
type opcode byte

const (
	opPushValue opcode = iota
	opPopValue
	opDuplicate
	opSwap
	opRotate
	opAdd
	opSubtract
	opMultiply
	opDivide
	opModulo
	opLeftShift
	opRightShift
	opBitwiseAnd
	opBitwiseOr
	opBitwiseXor
	opBitwiseNot
	opAnd
	opOr
	opXor
	opNot
	opEqual
	opNotEqual
	opLessThan
	opGreaterThan
	opLessThanEqual
	opGreaterThanEqual
	opJump
	opBranch
	opCall
	opReturn
	opLoad
	opStore
	opGetArrayIndex
	opSetArrayIndex
	opGetLayoutIndex
	opSetLayoutIndex
	opAllocate
	opAllocateArray
)

// Encode serializes mod (and every module reachable through its Imports)
// into the binary bundle format.
func Encode(mod *hydro.Module) ([]byte, error) {
	var buf bytes.Buffer
	w := &writer{w: &buf}
	if err := w.writeModule(mod, make(map[string]bool)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a bundle produced by Encode back into a *hydro.Module tree.
func Decode(data []byte) (*hydro.Module, error) {
	r := &reader{r: bufio.NewReader(bytes.NewReader(data))}
	return r.readModule()
}

type writer struct{ w *bytes.Buffer }

func (w *writer) u32(n uint32)  { binary.Write(w.w, binary.BigEndian, n) }
func (w *writer) u64(n uint64)  { binary.Write(w.w, binary.BigEndian, n) }
func (w *writer) i64(n int64)   { binary.Write(w.w, binary.BigEndian, n) }
func (w *writer) byte(b byte)   { w.w.WriteByte(b) }
func (w *writer) bytes(b []byte) { w.w.Write(b) }

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.w.WriteString(s)
}

func (w *writer) writeModule(mod *hydro.Module, seen map[string]bool) error {
	if seen[mod.Name] {
		return nil
	}
	seen[mod.Name] = true

	// dependencies first, so Decode can attach them before the dependent
	// module's own `using` list is replayed.
	w.u32(uint32(len(mod.Imports)))
	for _, name := range mod.Imports {
		w.str(name)
	}
	for _, name := range mod.Imports {
		if dep, ok := mod.Modules[name]; ok {
			if err := w.writeModule(dep, seen); err != nil {
				return err
			}
		}
	}

	w.str(mod.Name)

	layoutNames := sortedKeys(mod.Layouts)
	w.u32(uint32(len(layoutNames)))
	for _, name := range layoutNames {
		w.writeLayout(name, mod.Layouts[name])
	}

	intrinsicNames := sortedKeys(mod.Intrinsics)
	w.u32(uint32(len(intrinsicNames)))
	for _, name := range intrinsicNames {
		w.writeIntrinsic(mod.Intrinsics[name])
	}

	fnNames := sortedKeys(mod.Functions)
	w.u32(uint32(len(fnNames)))
	for _, name := range fnNames {
		if err := w.writeFunction(mod.Functions[name]); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeLayout(name string, t *hydro.LayoutTemplate) {
	w.str(name)
	members := sortedKeys(t.Members)
	w.u32(uint32(len(members)))
	for _, m := range members {
		w.str(m)
		w.writeType(t.Members[m])
	}
}

func (w *writer) writeIntrinsic(i *hydro.Intrinsic) {
	w.str(i.Name)
	w.u32(uint32(len(i.Parameters)))
	for _, t := range i.Parameters {
		w.writeType(t)
	}
	w.str(i.TargetMap["vm"])
}

func (w *writer) writeFunction(fn *hydro.Function) error {
	w.str(fn.Name)
	w.u32(uint32(len(fn.Parameters)))
	for _, p := range fn.Parameters {
		w.str(p.Name)
		w.writeType(p.Type)
	}
	w.u32(uint32(len(fn.Body)))
	for _, inst := range fn.Body {
		if err := w.writeInstruction(inst); err != nil {
			return err
		}
	}
	w.u32(uint32(len(fn.JumpLabels)))
	for _, name := range sortedKeys(fn.JumpLabels) {
		w.str(name)
		w.u32(uint32(fn.JumpLabels[name]))
	}
	return nil
}

func (w *writer) writeType(t value.Type) {
	w.byte(byte(t.Kind))
	switch t.Kind {
	case value.KindArray:
		if t.ArrayLength == nil {
			w.byte(0)
		} else {
			w.byte(1)
			w.u64(*t.ArrayLength)
		}
		w.writeType(*t.ArrayElement)
	case value.KindLayout:
		w.str(t.LayoutModule)
		w.str(t.LayoutName)
	case value.KindReference:
		w.writeType(*t.ReferenceTarget)
	case value.KindFunctionPointer:
		w.u32(uint32(len(t.ParamTypes)))
		for _, p := range t.ParamTypes {
			w.writeType(p)
		}
		w.u32(uint32(len(t.ReturnTypes)))
		for _, r := range t.ReturnTypes {
			w.writeType(r)
		}
	}
}

func (w *writer) writeValue(v value.Value) {
	w.byte(byte(v.Kind))
	switch v.Kind {
	case value.KindBoolean:
		if v.Bool {
			w.byte(1)
		} else {
			w.byte(0)
		}
	case value.KindCharacter:
		w.u32(uint32(v.Char))
	case value.KindString:
		w.str(v.Str)
	case value.KindUnsigned8:
		w.byte(v.U8)
	case value.KindUnsigned16:
		w.u32(uint32(v.U16))
	case value.KindUnsigned32:
		w.u32(v.U32)
	case value.KindUnsigned64:
		w.u64(v.U64)
	case value.KindUnsigned128:
		w.u64(v.U128.Hi)
		w.u64(v.U128.Lo)
	case value.KindSigned8:
		w.byte(byte(v.I8))
	case value.KindSigned16:
		w.i64(int64(v.I16))
	case value.KindSigned32:
		w.i64(int64(v.I32))
	case value.KindSigned64:
		w.i64(v.I64)
	case value.KindSigned128:
		w.u64(v.I128.Hi)
		w.u64(v.I128.Lo)
	case value.KindFloat32:
		w.u32(math.Float32bits(v.F32))
	case value.KindFloat64:
		w.u64(math.Float64bits(v.F64))
	case value.KindArray:
		w.writeType(v.Array.Element)
		w.writeValue(v.Array.Default)
		w.u32(uint32(len(v.Array.Items)))
		for _, item := range v.Array.Items {
			w.writeValue(item)
		}
	case value.KindLayout:
		w.str(v.Layout.Module)
		w.str(v.Layout.Name)
		members := sortedKeys(v.Layout.Members)
		w.u32(uint32(len(members)))
		for _, m := range members {
			w.str(m)
			w.writeValue(v.Layout.Members[m])
		}
	case value.KindReference:
		w.writeReference(v.Ref)
	case value.KindFunctionPointer:
		w.str(v.Fn.Module)
		w.str(v.Fn.Function)
	}
}

func (w *writer) writeReference(r value.Reference) {
	w.byte(byte(r.Kind))
	switch r.Kind {
	case value.RefVariable:
		w.str(r.VariableName)
	case value.RefLayoutIndex:
		w.writeReference(*r.ParentRef)
		w.str(r.MemberName)
	case value.RefArrayIndex:
		w.writeReference(*r.ParentRef)
		w.writeValue(*r.IndexValue)
	}
}

func (w *writer) writeTarget(t hydro.Target) {
	w.byte(byte(t.Kind))
	if t.Kind == hydro.TargetLabel {
		w.str(t.Label)
	} else {
		w.u32(uint32(t.Index))
	}
}

func (w *writer) writeInstruction(inst hydro.Instruction) error {
	switch v := inst.(type) {
	case hydro.PushValue:
		w.byte(byte(opPushValue))
		w.writeValue(v.Value)
	case hydro.PopValue:
		w.byte(byte(opPopValue))
	case hydro.Duplicate:
		w.byte(byte(opDuplicate))
		w.u32(uint32(v.Offset))
	case hydro.Swap:
		w.byte(byte(opSwap))
	case hydro.Rotate:
		w.byte(byte(opRotate))
		w.u32(uint32(v.Size))
	case hydro.Add:
		w.byte(byte(opAdd))
	case hydro.Subtract:
		w.byte(byte(opSubtract))
	case hydro.Multiply:
		w.byte(byte(opMultiply))
	case hydro.Divide:
		w.byte(byte(opDivide))
	case hydro.Modulo:
		w.byte(byte(opModulo))
	case hydro.LeftShift:
		w.byte(byte(opLeftShift))
	case hydro.RightShift:
		w.byte(byte(opRightShift))
	case hydro.BitwiseAnd:
		w.byte(byte(opBitwiseAnd))
	case hydro.BitwiseOr:
		w.byte(byte(opBitwiseOr))
	case hydro.BitwiseXor:
		w.byte(byte(opBitwiseXor))
	case hydro.BitwiseNot:
		w.byte(byte(opBitwiseNot))
	case hydro.And:
		w.byte(byte(opAnd))
	case hydro.Or:
		w.byte(byte(opOr))
	case hydro.Xor:
		w.byte(byte(opXor))
	case hydro.Not:
		w.byte(byte(opNot))
	case hydro.Equal:
		w.byte(byte(opEqual))
	case hydro.NotEqual:
		w.byte(byte(opNotEqual))
	case hydro.LessThan:
		w.byte(byte(opLessThan))
	case hydro.GreaterThan:
		w.byte(byte(opGreaterThan))
	case hydro.LessThanEqual:
		w.byte(byte(opLessThanEqual))
	case hydro.GreaterThanEqual:
		w.byte(byte(opGreaterThanEqual))
	case hydro.Jump:
		w.byte(byte(opJump))
		w.writeTarget(v.Target)
	case hydro.Branch:
		w.byte(byte(opBranch))
		w.writeTarget(v.TrueTarget)
		w.writeTarget(v.FalseTarget)
	case hydro.Call:
		w.byte(byte(opCall))
	case hydro.Return:
		w.byte(byte(opReturn))
	case hydro.Load:
		w.byte(byte(opLoad))
	case hydro.Store:
		w.byte(byte(opStore))
	case hydro.GetArrayIndex:
		w.byte(byte(opGetArrayIndex))
	case hydro.SetArrayIndex:
		w.byte(byte(opSetArrayIndex))
	case hydro.GetLayoutIndex:
		w.byte(byte(opGetLayoutIndex))
		w.str(v.Member)
	case hydro.SetLayoutIndex:
		w.byte(byte(opSetLayoutIndex))
		w.str(v.Member)
	case hydro.Allocate:
		w.byte(byte(opAllocate))
		w.writeType(v.AllocatedType)
	case hydro.AllocateArray:
		w.byte(byte(opAllocateArray))
		if v.ArraySize == nil {
			w.byte(0)
		} else {
			w.byte(1)
			w.u64(*v.ArraySize)
		}
		w.writeType(v.ArraySubType)
	default:
		return fmt.Errorf("buildpipeline: unknown instruction type %T", inst)
	}
	return nil
}

type reader struct{ r *bufio.Reader }

func (r *reader) u32() (uint32, error) {
	var n uint32
	err := binary.Read(r.r, binary.BigEndian, &n)
	return n, err
}

func (r *reader) u64() (uint64, error) {
	var n uint64
	err := binary.Read(r.r, binary.BigEndian, &n)
	return n, err
}

func (r *reader) i64() (int64, error) {
	var n int64
	err := binary.Read(r.r, binary.BigEndian, &n)
	return n, err
}

func (r *reader) byte() (byte, error) { return r.r.ReadByte() }

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (r *reader) readModule() (*hydro.Module, error) {
	importCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	imports := make([]string, importCount)
	for i := range imports {
		if imports[i], err = r.str(); err != nil {
			return nil, err
		}
	}

	deps := make(map[string]*hydro.Module, importCount)
	for range imports {
		dep, err := r.readModule()
		if err != nil {
			return nil, err
		}
		deps[dep.Name] = dep
	}

	name, err := r.str()
	if err != nil {
		return nil, err
	}
	mod := hydro.NewModule(name)
	mod.Imports = imports
	for _, n := range imports {
		if dep, ok := deps[n]; ok {
			mod.Modules[n] = dep
		}
	}

	layoutCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < layoutCount; i++ {
		lname, template, err := r.readLayout(mod.Name)
		if err != nil {
			return nil, err
		}
		mod.Layouts[lname] = template
	}

	intrinsicCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < intrinsicCount; i++ {
		in, err := r.readIntrinsic()
		if err != nil {
			return nil, err
		}
		mod.Intrinsics[in.Name] = in
	}

	fnCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < fnCount; i++ {
		fn, err := r.readFunction()
		if err != nil {
			return nil, err
		}
		mod.Functions[fn.Name] = fn
	}

	return mod, nil
}

func (r *reader) readLayout(moduleName string) (string, *hydro.LayoutTemplate, error) {
	name, err := r.str()
	if err != nil {
		return "", nil, err
	}
	template := hydro.NewLayoutTemplate(moduleName, name)
	count, err := r.u32()
	if err != nil {
		return "", nil, err
	}
	for i := uint32(0); i < count; i++ {
		memberName, err := r.str()
		if err != nil {
			return "", nil, err
		}
		t, err := r.readType()
		if err != nil {
			return "", nil, err
		}
		template.Members[memberName] = t
	}
	return name, template, nil
}

func (r *reader) readIntrinsic() (*hydro.Intrinsic, error) {
	name, err := r.str()
	if err != nil {
		return nil, err
	}
	count, err := r.u32()
	if err != nil {
		return nil, err
	}
	params := make([]value.Type, count)
	for i := range params {
		if params[i], err = r.readType(); err != nil {
			return nil, err
		}
	}
	code, err := r.str()
	if err != nil {
		return nil, err
	}
	return hydro.NewIntrinsic(name, params, code), nil
}

func (r *reader) readFunction() (*hydro.Function, error) {
	name, err := r.str()
	if err != nil {
		return nil, err
	}
	fn := hydro.NewFunction(name)

	paramCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < paramCount; i++ {
		pname, err := r.str()
		if err != nil {
			return nil, err
		}
		ptype, err := r.readType()
		if err != nil {
			return nil, err
		}
		fn.Parameters = append(fn.Parameters, hydro.Param{Name: pname, Type: ptype})
	}

	bodyCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < bodyCount; i++ {
		inst, err := r.readInstruction()
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, inst)
	}

	labelCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < labelCount; i++ {
		lname, err := r.str()
		if err != nil {
			return nil, err
		}
		idx, err := r.u32()
		if err != nil {
			return nil, err
		}
		fn.AddLabel(lname, int(idx))
	}

	return fn, nil
}

func (r *reader) readType() (value.Type, error) {
	k, err := r.byte()
	if err != nil {
		return value.Type{}, err
	}
	kind := value.Kind(k)
	switch kind {
	case value.KindArray:
		hasLen, err := r.byte()
		if err != nil {
			return value.Type{}, err
		}
		var length *uint64
		if hasLen == 1 {
			n, err := r.u64()
			if err != nil {
				return value.Type{}, err
			}
			length = &n
		}
		elem, err := r.readType()
		if err != nil {
			return value.Type{}, err
		}
		return value.Array(length, elem), nil
	case value.KindLayout:
		mod, err := r.str()
		if err != nil {
			return value.Type{}, err
		}
		name, err := r.str()
		if err != nil {
			return value.Type{}, err
		}
		return value.Layout(mod, name), nil
	case value.KindReference:
		target, err := r.readType()
		if err != nil {
			return value.Type{}, err
		}
		return value.Reference(target), nil
	case value.KindFunctionPointer:
		paramCount, err := r.u32()
		if err != nil {
			return value.Type{}, err
		}
		params := make([]value.Type, paramCount)
		for i := range params {
			if params[i], err = r.readType(); err != nil {
				return value.Type{}, err
			}
		}
		retCount, err := r.u32()
		if err != nil {
			return value.Type{}, err
		}
		rets := make([]value.Type, retCount)
		for i := range rets {
			if rets[i], err = r.readType(); err != nil {
				return value.Type{}, err
			}
		}
		return value.FunctionPointer(params, rets), nil
	default:
		return value.Type{Kind: kind}, nil
	}
}

func (r *reader) readValue() (value.Value, error) {
	k, err := r.byte()
	if err != nil {
		return value.Value{}, err
	}
	kind := value.Kind(k)
	switch kind {
	case value.KindBoolean:
		b, err := r.byte()
		return value.Bool(b == 1), err
	case value.KindCharacter:
		c, err := r.u32()
		return value.Char(rune(c)), err
	case value.KindString:
		s, err := r.str()
		return value.Str(s), err
	case value.KindUnsigned8:
		b, err := r.byte()
		return value.U8(b), err
	case value.KindUnsigned16:
		n, err := r.u32()
		return value.U16(uint16(n)), err
	case value.KindUnsigned32:
		n, err := r.u32()
		return value.U32(n), err
	case value.KindUnsigned64:
		n, err := r.u64()
		return value.U64(n), err
	case value.KindUnsigned128:
		hi, err := r.u64()
		if err != nil {
			return value.Value{}, err
		}
		lo, err := r.u64()
		return value.Value{Kind: value.KindUnsigned128, U128: value.U128{Hi: hi, Lo: lo}}, err
	case value.KindSigned8:
		b, err := r.byte()
		return value.I8(int8(b)), err
	case value.KindSigned16:
		n, err := r.i64()
		return value.I16(int16(n)), err
	case value.KindSigned32:
		n, err := r.i64()
		return value.I32(int32(n)), err
	case value.KindSigned64:
		n, err := r.i64()
		return value.I64(n), err
	case value.KindSigned128:
		hi, err := r.u64()
		if err != nil {
			return value.Value{}, err
		}
		lo, err := r.u64()
		return value.Value{Kind: value.KindSigned128, I128: value.I128{Hi: hi, Lo: lo}}, err
	case value.KindFloat32:
		n, err := r.u32()
		return value.F32(math.Float32frombits(n)), err
	case value.KindFloat64:
		n, err := r.u64()
		return value.F64(math.Float64frombits(n)), err
	case value.KindArray:
		elem, err := r.readType()
		if err != nil {
			return value.Value{}, err
		}
		def, err := r.readValue()
		if err != nil {
			return value.Value{}, err
		}
		count, err := r.u32()
		if err != nil {
			return value.Value{}, err
		}
		items := make([]value.Value, count)
		for i := range items {
			if items[i], err = r.readValue(); err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{Kind: value.KindArray, Array: &value.ArrayValue{Element: elem, Default: def, Items: items}}, nil
	case value.KindLayout:
		mod, err := r.str()
		if err != nil {
			return value.Value{}, err
		}
		name, err := r.str()
		if err != nil {
			return value.Value{}, err
		}
		count, err := r.u32()
		if err != nil {
			return value.Value{}, err
		}
		members := make(map[string]value.Value, count)
		for i := uint32(0); i < count; i++ {
			mname, err := r.str()
			if err != nil {
				return value.Value{}, err
			}
			mv, err := r.readValue()
			if err != nil {
				return value.Value{}, err
			}
			members[mname] = mv
		}
		return value.Value{Kind: value.KindLayout, Layout: &value.LayoutValue{Module: mod, Name: name, Members: members}}, nil
	case value.KindReference:
		ref, err := r.readReference()
		return value.RefValue(ref), err
	case value.KindFunctionPointer:
		mod, err := r.str()
		if err != nil {
			return value.Value{}, err
		}
		fn, err := r.str()
		return value.FnPtr(mod, fn), err
	default:
		return value.Value{Kind: kind}, nil
	}
}

func (r *reader) readReference() (value.Reference, error) {
	k, err := r.byte()
	if err != nil {
		return value.Reference{}, err
	}
	switch value.ReferenceKind(k) {
	case value.RefVariable:
		name, err := r.str()
		return value.VariableRef(name), err
	case value.RefLayoutIndex:
		parent, err := r.readReference()
		if err != nil {
			return value.Reference{}, err
		}
		member, err := r.str()
		return value.LayoutIndexRef(parent, member), err
	case value.RefArrayIndex:
		parent, err := r.readReference()
		if err != nil {
			return value.Reference{}, err
		}
		idx, err := r.readValue()
		return value.ArrayIndexRef(parent, idx), err
	default:
		return value.Reference{}, fmt.Errorf("buildpipeline: unknown reference kind %d", k)
	}
}

func (r *reader) readTarget() (hydro.Target, error) {
	k, err := r.byte()
	if err != nil {
		return hydro.Target{}, err
	}
	if hydro.TargetKind(k) == hydro.TargetLabel {
		name, err := r.str()
		return hydro.LabelTarget(name), err
	}
	idx, err := r.u32()
	return hydro.IndexTarget(int(idx)), err
}

func (r *reader) readInstruction() (hydro.Instruction, error) {
	b, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch opcode(b) {
	case opPushValue:
		v, err := r.readValue()
		return hydro.PushValue{Value: v}, err
	case opPopValue:
		return hydro.PopValue{}, nil
	case opDuplicate:
		n, err := r.u32()
		return hydro.Duplicate{Offset: int(n)}, err
	case opSwap:
		return hydro.Swap{}, nil
	case opRotate:
		n, err := r.u32()
		return hydro.Rotate{Size: int(n)}, err
	case opAdd:
		return hydro.Add{}, nil
	case opSubtract:
		return hydro.Subtract{}, nil
	case opMultiply:
		return hydro.Multiply{}, nil
	case opDivide:
		return hydro.Divide{}, nil
	case opModulo:
		return hydro.Modulo{}, nil
	case opLeftShift:
		return hydro.LeftShift{}, nil
	case opRightShift:
		return hydro.RightShift{}, nil
	case opBitwiseAnd:
		return hydro.BitwiseAnd{}, nil
	case opBitwiseOr:
		return hydro.BitwiseOr{}, nil
	case opBitwiseXor:
		return hydro.BitwiseXor{}, nil
	case opBitwiseNot:
		return hydro.BitwiseNot{}, nil
	case opAnd:
		return hydro.And{}, nil
	case opOr:
		return hydro.Or{}, nil
	case opXor:
		return hydro.Xor{}, nil
	case opNot:
		return hydro.Not{}, nil
	case opEqual:
		return hydro.Equal{}, nil
	case opNotEqual:
		return hydro.NotEqual{}, nil
	case opLessThan:
		return hydro.LessThan{}, nil
	case opGreaterThan:
		return hydro.GreaterThan{}, nil
	case opLessThanEqual:
		return hydro.LessThanEqual{}, nil
	case opGreaterThanEqual:
		return hydro.GreaterThanEqual{}, nil
	case opJump:
		t, err := r.readTarget()
		return hydro.Jump{Target: t}, err
	case opBranch:
		tt, err := r.readTarget()
		if err != nil {
			return nil, err
		}
		ft, err := r.readTarget()
		return hydro.Branch{TrueTarget: tt, FalseTarget: ft}, err
	case opCall:
		return hydro.Call{}, nil
	case opReturn:
		return hydro.Return{}, nil
	case opLoad:
		return hydro.Load{}, nil
	case opStore:
		return hydro.Store{}, nil
	case opGetArrayIndex:
		return hydro.GetArrayIndex{}, nil
	case opSetArrayIndex:
		return hydro.SetArrayIndex{}, nil
	case opGetLayoutIndex:
		m, err := r.str()
		return hydro.GetLayoutIndex{Member: m}, err
	case opSetLayoutIndex:
		m, err := r.str()
		return hydro.SetLayoutIndex{Member: m}, err
	case opAllocate:
		t, err := r.readType()
		return hydro.Allocate{AllocatedType: t}, err
	case opAllocateArray:
		hasSize, err := r.byte()
		if err != nil {
			return nil, err
		}
		var size *uint64
		if hasSize == 1 {
			n, err := r.u64()
			if err != nil {
				return nil, err
			}
			size = &n
		}
		t, err := r.readType()
		return hydro.AllocateArray{ArraySize: size, ArraySubType: t}, err
	default:
		return nil, fmt.Errorf("buildpipeline: unknown opcode %d", b)
	}
}
