package frontend

import "testing"

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func assertTypes(t *testing.T, got []Token, want ...TokenType) {
	t.Helper()
	gotTypes := tokenTypes(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("expected %d tokens %v, got %d: %v", len(want), want, len(gotTypes), gotTypes)
	}
	for i, w := range want {
		if gotTypes[i] != w {
			t.Fatalf("token %d: expected %s, got %s (%v)", i, w, gotTypes[i], got)
		}
	}
}

func TestScanKeywords(t *testing.T) {
	tokens, errs := NewScanner("module using layout intrinsic function label true false").ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected scan errors: %v", errs)
	}
	assertTypes(t, tokens,
		TokenModule, TokenUsing, TokenLayout, TokenIntrinsic, TokenFunction, TokenLabel,
		TokenTrue, TokenFalse, TokenEOF)
}

func TestScanTypeNames(t *testing.T) {
	tokens, _ := NewScanner("u8 u16 u32 u64 u128 i8 i16 i32 i64 i128 f32 f64 bool char string any").ScanTokens()
	for _, tok := range tokens[:len(tokens)-1] {
		if tok.Type != TokenTypeName {
			t.Fatalf("expected %q to scan as a type name, got %s", tok.Lexeme, tok.Type)
		}
	}
}

func TestScanIdentifierIsNotAKeywordOrType(t *testing.T) {
	tokens, _ := NewScanner("myFunction").ScanTokens()
	assertTypes(t, tokens, TokenIdent, TokenEOF)
}

func TestScanPunctuation(t *testing.T) {
	tokens, errs := NewScanner("(){}[]:,.-> &").ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected scan errors: %v", errs)
	}
	assertTypes(t, tokens,
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenColon, TokenComma, TokenDot, TokenArrow, TokenAmp, TokenEOF)
}

func TestScanIntegerWithKindSuffix(t *testing.T) {
	tokens, _ := NewScanner("420u32").ScanTokens()
	assertTypes(t, tokens, TokenInt, TokenEOF)
	if tokens[0].Lexeme != "420u32" {
		t.Fatalf("expected lexeme 420u32, got %q", tokens[0].Lexeme)
	}
}

func TestScanFloatWithKindSuffix(t *testing.T) {
	tokens, _ := NewScanner("3.5f64").ScanTokens()
	assertTypes(t, tokens, TokenFloat, TokenEOF)
	if tokens[0].Lexeme != "3.5f64" {
		t.Fatalf("expected lexeme 3.5f64, got %q", tokens[0].Lexeme)
	}
}

func TestScanPlainIntegerHasNoSuffix(t *testing.T) {
	tokens, _ := NewScanner("42").ScanTokens()
	assertTypes(t, tokens, TokenInt, TokenEOF)
	if tokens[0].Lexeme != "42" {
		t.Fatalf("expected lexeme 42, got %q", tokens[0].Lexeme)
	}
}

func TestScanStringLiteralWithEscape(t *testing.T) {
	tokens, errs := NewScanner(`"hello\nworld"`).ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected scan errors: %v", errs)
	}
	assertTypes(t, tokens, TokenString, TokenEOF)
	if got, want := unescape(tokens[0].Lexeme), "hello\nworld"; got != want {
		t.Fatalf("expected unescaped %q, got %q", want, got)
	}
}

func TestScanUnterminatedStringIsAnError(t *testing.T) {
	_, errs := NewScanner(`"unterminated`).ScanTokens()
	if len(errs) == 0 {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestScanCharLiteral(t *testing.T) {
	tokens, errs := NewScanner(`'x'`).ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected scan errors: %v", errs)
	}
	assertTypes(t, tokens, TokenChar, TokenEOF)
	if got, want := unescape(tokens[0].Lexeme), "x"; got != want {
		t.Fatalf("expected unescaped %q, got %q", want, got)
	}
}

func TestScanSkipsCommentsToEndOfLine(t *testing.T) {
	tokens, errs := NewScanner("add % this is a comment\nsubtract").ScanTokens()
	if len(errs) != 0 {
		t.Fatalf("unexpected scan errors: %v", errs)
	}
	assertTypes(t, tokens, TokenIdent, TokenIdent, TokenEOF)
	if tokens[0].Lexeme != "add" || tokens[1].Lexeme != "subtract" {
		t.Fatalf("expected add/subtract identifiers around the comment, got %v", tokens)
	}
}

func TestScanTracksLineNumbers(t *testing.T) {
	tokens, _ := NewScanner("add\nsubtract\nmultiply").ScanTokens()
	if tokens[0].Line != 1 || tokens[1].Line != 2 || tokens[2].Line != 3 {
		t.Fatalf("expected lines 1,2,3, got %d,%d,%d", tokens[0].Line, tokens[1].Line, tokens[2].Line)
	}
}
