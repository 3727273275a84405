package hydro

import "hydro/internal/value"

// LayoutTemplate names the member set of a record (Layout) type; resolving
// it produces the member-name->Type map a Type's LayoutMembers field needs
// before value.Default can build a concrete Layout value.
type LayoutTemplate struct {
	Module  string
	Name    string
	Members map[string]value.Type
}

func NewLayoutTemplate(module, name string) *LayoutTemplate {
	return &LayoutTemplate{Module: module, Name: name, Members: make(map[string]value.Type)}
}

func (l *LayoutTemplate) Member(name string, t value.Type) *LayoutTemplate {
	l.Members[name] = t
	return l
}

func (l *LayoutTemplate) ResolvedType() value.Type {
	return value.ResolvedLayout(l.Module, l.Name, l.Members)
}
