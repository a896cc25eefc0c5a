package bindgen

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/uplink-community/uplink-cgo/pkg/cparse"
)

// cgo spells multi-word C primitives with its own mangled names
var primitiveMap = map[string]string{
	"char":               "C.char",
	"signed char":        "C.schar",
	"unsigned char":      "C.uchar",
	"short":              "C.short",
	"short int":          "C.short",
	"unsigned short":     "C.ushort",
	"int":                "C.int",
	"unsigned":           "C.uint",
	"unsigned int":       "C.uint",
	"long":               "C.long",
	"long int":           "C.long",
	"unsigned long":      "C.ulong",
	"long long":          "C.longlong",
	"unsigned long long": "C.ulonglong",
	"float":              "C.float",
	"double":             "C.double",
	"_Bool":              "C.bool",
	"bool":               "C.bool",
	"size_t":             "C.size_t",
	"ssize_t":            "C.ssize_t",
	"intptr_t":           "C.intptr_t",
	"uintptr_t":          "C.uintptr_t",
	"int8_t":             "C.int8_t",
	"uint8_t":            "C.uint8_t",
	"int16_t":            "C.int16_t",
	"uint16_t":           "C.uint16_t",
	"int32_t":            "C.int32_t",
	"uint32_t":           "C.uint32_t",
	"int64_t":            "C.int64_t",
	"uint64_t":           "C.uint64_t",
}

func validGoIdent(name string) bool {
	if name == "" {
		return false
	}
	for idx := 0; idx < len(name); idx++ {
		c := name[idx]
		ok := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (idx > 0 && c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// goType translates a C type reference to the cgo type used in the
// generated wrappers. void (as a value type) maps to the empty string and
// is only legal as a return type.
func goType(typ cparse.Type) (string, error) {
	if typ.IsVoid() {
		return "", nil
	}

	if typ.Base == "void" {
		// void*, void** and so on
		return strings.Repeat("*", typ.Pointers-1) + "unsafe.Pointer", nil
	}

	base, ok := primitiveMap[typ.Base]
	if !ok {
		if !validGoIdent(typ.Base) {
			return "", eris.Errorf("cannot map C type %q", typ.Base)
		}
		base = "C." + typ.Base
	}

	return strings.Repeat("*", typ.Pointers) + base, nil
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// paramName returns a safe Go name for the given parameter, falling back to
// a positional name for anonymous parameters.
func paramName(param cparse.Param, idx int) string {
	name := param.Name
	if name == "" {
		return "arg" + strconv.Itoa(idx)
	}
	if goKeywords[name] {
		return name + "_"
	}
	return name
}
