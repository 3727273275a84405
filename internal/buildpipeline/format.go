// Package buildpipeline turns a linked *hydro.Module tree into an
// artifact: either the textual source it was parsed from (`--format
// source`), grounded on `internal/formatter/formatter.go`'s indent-tracking
// pretty-printer, or a content-addressed binary bundle (binary.go).
package buildpipeline

import (
	"fmt"
	"sort"
	"strings"

	"hydro/internal/hydro"
	"hydro/internal/value"
)

// SourcePrinter renders a *hydro.Module back into Hydro textual form.
type SourcePrinter struct {
	indent int
	out    strings.Builder
}

func NewSourcePrinter() *SourcePrinter {
	return &SourcePrinter{}
}

// Print renders mod and every module transitively attached under its
// Modules map, each as its own top-level `module` block, deepest imports
// first. frontend.Parse reads only the first `module` block of a text, so
// the output parses back into mod itself only when mod has no attached
// imports.
func Print(mod *hydro.Module) string {
	p := NewSourcePrinter()
	seen := make(map[string]bool)
	p.printDeps(mod, seen)
	p.printModule(mod)
	return p.out.String()
}

func (p *SourcePrinter) printDeps(mod *hydro.Module, seen map[string]bool) {
	for _, name := range mod.Imports {
		dep, ok := mod.Modules[name]
		if !ok || seen[dep.Name] {
			continue
		}
		seen[dep.Name] = true
		p.printDeps(dep, seen)
		p.printModule(dep)
	}
}

func (p *SourcePrinter) writeIndent() {
	p.out.WriteString(strings.Repeat("    ", p.indent))
}

func (p *SourcePrinter) printModule(mod *hydro.Module) {
	fmt.Fprintf(&p.out, "module %s {\n", mod.Name)
	p.indent++

	for _, name := range mod.Imports {
		p.writeIndent()
		fmt.Fprintf(&p.out, "using %s\n", name)
	}

	for _, name := range sortedKeys(mod.Layouts) {
		p.printLayout(name, mod.Layouts[name])
	}
	for _, name := range sortedKeys(mod.Intrinsics) {
		p.printIntrinsic(mod.Intrinsics[name])
	}
	for _, name := range sortedKeys(mod.Functions) {
		p.printFunction(mod.Functions[name])
	}

	p.indent--
	p.writeIndent()
	p.out.WriteString("}\n")
}

func (p *SourcePrinter) printLayout(name string, t *hydro.LayoutTemplate) {
	p.writeIndent()
	fmt.Fprintf(&p.out, "layout %s {\n", name)
	p.indent++
	members := sortedKeys(t.Members)
	for i, member := range members {
		p.writeIndent()
		sep := ","
		if i == len(members)-1 {
			sep = ""
		}
		fmt.Fprintf(&p.out, "%s: %s%s\n", member, t.Members[member].String(), sep)
	}
	p.indent--
	p.writeIndent()
	p.out.WriteString("}\n")
}

func (p *SourcePrinter) printIntrinsic(i *hydro.Intrinsic) {
	p.writeIndent()
	var params []string
	for _, t := range i.Parameters {
		params = append(params, t.String())
	}
	fmt.Fprintf(&p.out, "intrinsic %s(%s) -> %q\n", i.Name, strings.Join(params, ", "), i.TargetMap["vm"])
}

func (p *SourcePrinter) printFunction(fn *hydro.Function) {
	p.writeIndent()
	var params []string
	for _, param := range fn.Parameters {
		params = append(params, fmt.Sprintf("%s: %s", param.Name, param.Type.String()))
	}
	fmt.Fprintf(&p.out, "function %s(%s) {\n", fn.Name, strings.Join(params, ", "))
	p.indent++

	labelsAt := make(map[int][]string)
	for name, idx := range fn.JumpLabels {
		labelsAt[idx] = append(labelsAt[idx], name)
	}

	for idx, inst := range fn.Body {
		for _, name := range labelsAt[idx] {
			p.writeIndent()
			fmt.Fprintf(&p.out, "label %s:\n", name)
		}
		p.writeIndent()
		p.out.WriteString(renderInstruction(inst))
		p.out.WriteString("\n")
	}
	for _, name := range labelsAt[len(fn.Body)] {
		p.writeIndent()
		fmt.Fprintf(&p.out, "label %s:\n", name)
	}

	p.indent--
	p.writeIndent()
	p.out.WriteString("}\n")
}

func renderInstruction(inst hydro.Instruction) string {
	switch v := inst.(type) {
	case hydro.PushValue:
		return "pushvalue " + literalText(v.Value)
	case hydro.Duplicate:
		return fmt.Sprintf("duplicate %d", v.Offset)
	case hydro.Rotate:
		return fmt.Sprintf("rotate %d", v.Size)
	case hydro.Jump:
		return "jump " + targetText(v.Target)
	case hydro.Branch:
		return fmt.Sprintf("branch %s %s", targetText(v.TrueTarget), targetText(v.FalseTarget))
	case hydro.GetLayoutIndex:
		return "getlayoutindex " + v.Member
	case hydro.SetLayoutIndex:
		return "setlayoutindex " + v.Member
	case hydro.Allocate:
		return "allocate " + v.AllocatedType.String()
	case hydro.AllocateArray:
		if v.ArraySize != nil {
			return fmt.Sprintf("allocatearray %d %s", *v.ArraySize, v.ArraySubType.String())
		}
		return "allocatearray " + v.ArraySubType.String()
	default:
		return strings.ToLower(inst.Tag())
	}
}

func targetText(t hydro.Target) string {
	if t.Kind == hydro.TargetLabel {
		return "label " + t.Label
	}
	return fmt.Sprintf("%d", t.Index)
}

func literalText(v value.Value) string {
	if v.Kind == value.KindReference {
		return "&" + v.Ref.String()
	}
	return v.GoString()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
