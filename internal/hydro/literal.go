package hydro

import (
	"fmt"
	"strconv"
	"strings"

	"hydro/internal/value"
)

// parsePushLiteral implements the debugger `push` command's literal syntax
// (spec section 6.5): a bare numeric literal suffixed with its kind tag
// (u8/u16/u32/u64/i8/i16/i32/i64/f32/f64), `true`/`false`, a single-quoted
// character, or a double-quoted string. This is the same textual shape
// value.Value.GoString renders, so round-tripping a printed value back
// through push reproduces it.
func parsePushLiteral(text string) (value.Value, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "true":
		return value.Bool(true), nil
	case text == "false":
		return value.Bool(false), nil
	case strings.HasPrefix(text, "\"") && strings.HasSuffix(text, "\"") && len(text) >= 2:
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid string literal %q", text)
		}
		return value.Str(unquoted), nil
	case strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'") && len(text) >= 2:
		unquoted, err := strconv.Unquote(text)
		if err != nil || len(unquoted) == 0 {
			return value.Value{}, fmt.Errorf("invalid character literal %q", text)
		}
		return value.Char([]rune(unquoted)[0]), nil
	}

	for _, kind := range []string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64"} {
		if strings.HasSuffix(text, kind) {
			numPart := strings.TrimSuffix(text, kind)
			n, err := strconv.ParseInt(numPart, 10, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("invalid integer literal %q", text)
			}
			return intLiteral(kind, n)
		}
	}
	for _, kind := range []string{"f32", "f64"} {
		if strings.HasSuffix(text, kind) {
			numPart := strings.TrimSuffix(text, kind)
			f, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("invalid float literal %q", text)
			}
			if kind == "f32" {
				return value.F32(float32(f)), nil
			}
			return value.F64(f), nil
		}
	}

	return value.Value{}, fmt.Errorf("unrecognized literal %q: expected a u8/u16/u32/u64/i8/i16/i32/i64/f32/f64 suffixed number, true/false, 'c', or \"string\"", text)
}

func intLiteral(kind string, n int64) (value.Value, error) {
	switch kind {
	case "u8":
		return value.U8(uint8(n)), nil
	case "u16":
		return value.U16(uint16(n)), nil
	case "u32":
		return value.U32(uint32(n)), nil
	case "u64":
		return value.U64(uint64(n)), nil
	case "i8":
		return value.I8(int8(n)), nil
	case "i16":
		return value.I16(int16(n)), nil
	case "i32":
		return value.I32(int32(n)), nil
	case "i64":
		return value.I64(n), nil
	default:
		return value.Value{}, fmt.Errorf("unknown integer kind %q", kind)
	}
}
