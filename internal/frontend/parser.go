package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"hydro/internal/hydro"
	"hydro/internal/value"
)

// Parser is a one-token-lookahead recursive-descent parser over the Hydro
// textual format (spec section 6.4), grounded on `internal/parser/parser.go`'s
// error-accumulation convention (`p.Errors` collects every problem found
// instead of aborting on the first one). It lowers straight to
// *hydro.Module/*hydro.Function/hydro.Instruction values: there is no
// separate AST, since the instruction set already is the target
// representation.
type Parser struct {
	tokens  []Token
	current int
	Errors  []string
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a single textual Hydro source file into its one top-level
// Module declaration.
func Parse(source string) (*hydro.Module, []string) {
	scanner := NewScanner(source)
	tokens, scanErrs := scanner.ScanTokens()
	p := NewParser(tokens)
	p.Errors = append(p.Errors, scanErrs...)
	mod := p.parseModule()
	return mod, p.Errors
}

func (p *Parser) peek() Token { return p.tokens[p.current] }

func (p *Parser) previous() Token { return p.tokens[p.current-1] }

func (p *Parser) atEnd() bool { return p.peek().Type == TokenEOF }

func (p *Parser) check(t TokenType) bool { return !p.atEnd() && p.peek().Type == t }

func (p *Parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) matchAny(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t TokenType, context string) Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorf("expected %s %s but found %s", t, context, p.peek())
	return p.advance()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

func (p *Parser) parseModule() *hydro.Module {
	p.expect(TokenModule, "to start a module declaration")
	name := p.expect(TokenIdent, "as the module name").Lexeme
	mod := hydro.NewModule(name)

	p.expect(TokenLBrace, "to open the module body")
	for !p.check(TokenRBrace) && !p.atEnd() {
		switch {
		case p.check(TokenUsing):
			p.parseUsing(mod)
		case p.check(TokenLayout):
			p.parseLayout(mod)
		case p.check(TokenIntrinsic):
			p.parseIntrinsic(mod)
		case p.check(TokenFunction):
			p.parseFunction(mod)
		default:
			p.errorf("unexpected token %s inside module %q", p.peek(), name)
			p.advance()
		}
	}
	p.expect(TokenRBrace, "to close the module body")
	return mod
}

func (p *Parser) parseUsing(mod *hydro.Module) {
	p.advance()
	name := p.expect(TokenIdent, "as an imported module name").Lexeme
	mod.Imports = append(mod.Imports, name)
}

func (p *Parser) parseLayout(mod *hydro.Module) {
	p.advance()
	name := p.expect(TokenIdent, "as the layout name").Lexeme
	template := hydro.NewLayoutTemplate(mod.Name, name)
	p.expect(TokenLBrace, "to open the layout body")
	for !p.check(TokenRBrace) && !p.atEnd() {
		memberName := p.expect(TokenIdent, "as a layout member name").Lexeme
		p.expect(TokenColon, "before the member's type")
		memberType := p.parseType()
		template.Member(memberName, memberType)
		if !p.matchAny(TokenComma) {
			break
		}
	}
	p.expect(TokenRBrace, "to close the layout body")
	mod.Layouts[name] = template
}

func (p *Parser) parseIntrinsic(mod *hydro.Module) {
	p.advance()
	name := p.expect(TokenIdent, "as the intrinsic name").Lexeme
	params := p.parseParamTypes()
	code := name
	if p.matchAny(TokenArrow) {
		code = unescape(p.expect(TokenString, "naming the host handler code").Lexeme)
	}
	mod.Intrinsics[name] = hydro.NewIntrinsic(name, params, code)
}

func (p *Parser) parseParamTypes() []value.Type {
	p.expect(TokenLParen, "to open a parameter list")
	var types []value.Type
	for !p.check(TokenRParen) && !p.atEnd() {
		types = append(types, p.parseType())
		if !p.matchAny(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen, "to close a parameter list")
	return types
}

func (p *Parser) parseFunction(mod *hydro.Module) {
	p.advance()
	name := p.expect(TokenIdent, "as the function name").Lexeme
	fn := hydro.NewFunction(name)

	p.expect(TokenLParen, "to open the parameter list")
	for !p.check(TokenRParen) && !p.atEnd() {
		paramName := p.expect(TokenIdent, "as a parameter name").Lexeme
		p.expect(TokenColon, "before the parameter's type")
		paramType := p.parseType()
		fn.Parameters = append(fn.Parameters, hydro.Param{Name: paramName, Type: paramType})
		if !p.matchAny(TokenComma) {
			break
		}
	}
	p.expect(TokenRParen, "to close the parameter list")

	p.expect(TokenLBrace, "to open the function body")
	p.parseBody(fn)
	p.expect(TokenRBrace, "to close the function body")

	mod.Functions[name] = fn
}

func (p *Parser) parseBody(fn *hydro.Function) {
	for !p.check(TokenRBrace) && !p.atEnd() {
		if p.check(TokenLabel) {
			p.advance()
			labelName := p.expect(TokenIdent, "as a label name").Lexeme
			p.expect(TokenColon, "after a label declaration")
			fn.AddLabel(labelName, len(fn.Body))
			continue
		}
		inst := p.parseInstruction()
		if inst != nil {
			fn.Body = append(fn.Body, inst)
		}
	}
}

func (p *Parser) parseType() value.Type {
	switch {
	case p.check(TokenAmp):
		p.advance()
		return value.Reference(p.parseType())
	case p.check(TokenLBracket):
		p.advance()
		var length *uint64
		if p.check(TokenInt) {
			n, _ := strconv.ParseUint(p.advance().Lexeme, 10, 64)
			length = &n
		}
		p.expect(TokenRBracket, "to close an array type")
		return value.Array(length, p.parseType())
	case p.check(TokenTypeName):
		return primitiveType(p.advance().Lexeme)
	case p.check(TokenIdent):
		moduleOrName := p.advance().Lexeme
		if p.matchAny(TokenDot) {
			layoutName := p.expect(TokenIdent, "as a layout name").Lexeme
			return value.Layout(moduleOrName, layoutName)
		}
		return value.Layout("", moduleOrName)
	default:
		p.errorf("expected a type but found %s", p.peek())
		p.advance()
		return value.Any()
	}
}

func primitiveType(name string) value.Type {
	switch name {
	case "u8":
		return value.Unsigned8()
	case "u16":
		return value.Unsigned16()
	case "u32":
		return value.Unsigned32()
	case "u64":
		return value.Unsigned64()
	case "u128":
		return value.Unsigned128()
	case "i8":
		return value.Signed8()
	case "i16":
		return value.Signed16()
	case "i32":
		return value.Signed32()
	case "i64":
		return value.Signed64()
	case "i128":
		return value.Signed128()
	case "f32":
		return value.Float32Type()
	case "f64":
		return value.Float64Type()
	case "bool":
		return value.Boolean()
	case "char":
		return value.Character()
	case "string":
		return value.StringType()
	default:
		return value.Any()
	}
}

// mnemonics with no operands, keyed by their lowercase Tag().
var nullary = map[string]func() hydro.Instruction{
	"popvalue":         func() hydro.Instruction { return hydro.PopValue{} },
	"swap":             func() hydro.Instruction { return hydro.Swap{} },
	"add":              func() hydro.Instruction { return hydro.Add{} },
	"subtract":         func() hydro.Instruction { return hydro.Subtract{} },
	"multiply":         func() hydro.Instruction { return hydro.Multiply{} },
	"divide":           func() hydro.Instruction { return hydro.Divide{} },
	"modulo":           func() hydro.Instruction { return hydro.Modulo{} },
	"leftshift":        func() hydro.Instruction { return hydro.LeftShift{} },
	"rightshift":       func() hydro.Instruction { return hydro.RightShift{} },
	"bitwiseand":       func() hydro.Instruction { return hydro.BitwiseAnd{} },
	"bitwiseor":        func() hydro.Instruction { return hydro.BitwiseOr{} },
	"bitwisexor":       func() hydro.Instruction { return hydro.BitwiseXor{} },
	"bitwisenot":       func() hydro.Instruction { return hydro.BitwiseNot{} },
	"and":              func() hydro.Instruction { return hydro.And{} },
	"or":               func() hydro.Instruction { return hydro.Or{} },
	"xor":              func() hydro.Instruction { return hydro.Xor{} },
	"not":               func() hydro.Instruction { return hydro.Not{} },
	"equal":            func() hydro.Instruction { return hydro.Equal{} },
	"notequal":         func() hydro.Instruction { return hydro.NotEqual{} },
	"lessthan":         func() hydro.Instruction { return hydro.LessThan{} },
	"greaterthan":      func() hydro.Instruction { return hydro.GreaterThan{} },
	"lessthanequal":    func() hydro.Instruction { return hydro.LessThanEqual{} },
	"greaterthanequal": func() hydro.Instruction { return hydro.GreaterThanEqual{} },
	"call":             func() hydro.Instruction { return hydro.Call{} },
	"return":           func() hydro.Instruction { return hydro.Return{} },
	"load":             func() hydro.Instruction { return hydro.Load{} },
	"store":            func() hydro.Instruction { return hydro.Store{} },
	"getarrayindex":    func() hydro.Instruction { return hydro.GetArrayIndex{} },
	"setarrayindex":    func() hydro.Instruction { return hydro.SetArrayIndex{} },
}

func (p *Parser) parseInstruction() hydro.Instruction {
	tok := p.expect(TokenIdent, "as an instruction mnemonic")
	mnemonic := strings.ToLower(tok.Lexeme)

	if ctor, ok := nullary[mnemonic]; ok {
		return ctor()
	}

	switch mnemonic {
	case "pushvalue":
		return hydro.PushValue{Value: p.parseLiteralOrReference()}
	case "duplicate":
		return hydro.Duplicate{Offset: p.parseIntOperand()}
	case "rotate":
		return hydro.Rotate{Size: p.parseIntOperand()}
	case "jump":
		return hydro.Jump{Target: p.parseTarget()}
	case "branch":
		trueT := p.parseTarget()
		falseT := p.parseTarget()
		return hydro.Branch{TrueTarget: trueT, FalseTarget: falseT}
	case "getlayoutindex":
		return hydro.GetLayoutIndex{Member: p.expect(TokenIdent, "as a layout member name").Lexeme}
	case "setlayoutindex":
		return hydro.SetLayoutIndex{Member: p.expect(TokenIdent, "as a layout member name").Lexeme}
	case "allocate":
		return hydro.Allocate{AllocatedType: p.parseType()}
	case "allocatearray":
		var size *uint64
		if p.check(TokenInt) {
			n, _ := strconv.ParseUint(p.advance().Lexeme, 10, 64)
			size = &n
		}
		return hydro.AllocateArray{ArraySize: size, ArraySubType: p.parseType()}
	default:
		p.errorf("unknown instruction mnemonic %q", tok.Lexeme)
		return nil
	}
}

func (p *Parser) parseIntOperand() int {
	tok := p.expect(TokenInt, "as an integer operand")
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		p.errorf("invalid integer operand %q", tok.Lexeme)
	}
	return n
}

func (p *Parser) parseTarget() hydro.Target {
	if p.matchAny(TokenLabel) {
		return hydro.LabelTarget(p.expect(TokenIdent, "as a label name").Lexeme)
	}
	return hydro.IndexTarget(p.parseIntOperand())
}

func (p *Parser) parseLiteralOrReference() value.Value {
	switch {
	case p.check(TokenAmp):
		p.advance()
		return value.RefValue(p.parseReference())
	case p.matchAny(TokenTrue):
		return value.Bool(true)
	case p.matchAny(TokenFalse):
		return value.Bool(false)
	case p.check(TokenString):
		return value.Str(unescape(p.advance().Lexeme))
	case p.check(TokenChar):
		text := unescape(p.advance().Lexeme)
		r := rune(0)
		if len(text) > 0 {
			r = []rune(text)[0]
		}
		return value.Char(r)
	case p.check(TokenInt), p.check(TokenFloat):
		return p.parseNumericLiteral()
	case p.check(TokenIdent) && p.peek().Lexeme == "fn":
		p.advance()
		moduleName := ""
		funcName := p.expect(TokenIdent, "as a function name").Lexeme
		if p.matchAny(TokenDot) {
			moduleName = funcName
			funcName = p.expect(TokenIdent, "as a function name").Lexeme
		}
		return value.FnPtr(moduleName, funcName)
	default:
		p.errorf("expected a literal value but found %s", p.peek())
		p.advance()
		return value.Value{}
	}
}

func (p *Parser) parseReference() value.Reference {
	name := p.expect(TokenIdent, "as a variable name").Lexeme
	ref := value.VariableRef(name)
	for {
		switch {
		case p.matchAny(TokenDot):
			member := p.expect(TokenIdent, "as a layout member name").Lexeme
			ref = value.LayoutIndexRef(ref, member)
		case p.matchAny(TokenLBracket):
			idx := p.parseNumericLiteral()
			p.expect(TokenRBracket, "to close an array index")
			ref = value.ArrayIndexRef(ref, idx)
		default:
			return ref
		}
	}
}

func (p *Parser) parseNumericLiteral() value.Value {
	tok := p.advance()
	lexeme := tok.Lexeme
	kindStart := 0
	for kindStart < len(lexeme) && !isSuffixByte(lexeme[kindStart]) {
		kindStart++
	}
	// only treat the run from the first letter onward as a kind suffix if it
	// matches a known numeric kind name; otherwise the whole lexeme is the number.
	suffix := lexeme[kindStart:]
	if !knownNumericSuffix(suffix) {
		kindStart = len(lexeme)
		suffix = ""
	}
	numPart := lexeme[:kindStart]

	if suffix == "" {
		if tok.Type == TokenFloat {
			suffix = "f64"
		} else {
			suffix = "u32"
		}
	}

	switch suffix {
	case "u8", "u16", "u32", "u64":
		n, _ := strconv.ParseUint(numPart, 10, 64)
		return intKindValue(suffix, n)
	case "i8", "i16", "i32", "i64":
		n, _ := strconv.ParseInt(numPart, 10, 64)
		return sintKindValue(suffix, n)
	case "f32", "f64":
		f, _ := strconv.ParseFloat(numPart, 64)
		if suffix == "f32" {
			return value.F32(float32(f))
		}
		return value.F64(f)
	default:
		n, _ := strconv.ParseUint(numPart, 10, 64)
		return value.U32(uint32(n))
	}
}

func isSuffixByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func knownNumericSuffix(s string) bool {
	switch s {
	case "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f32", "f64":
		return true
	default:
		return false
	}
}

func intKindValue(kind string, n uint64) value.Value {
	switch kind {
	case "u8":
		return value.U8(uint8(n))
	case "u16":
		return value.U16(uint16(n))
	case "u32":
		return value.U32(uint32(n))
	default:
		return value.U64(n)
	}
}

func sintKindValue(kind string, n int64) value.Value {
	switch kind {
	case "i8":
		return value.I8(int8(n))
	case "i16":
		return value.I16(int16(n))
	case "i32":
		return value.I32(int32(n))
	default:
		return value.I64(n)
	}
}
