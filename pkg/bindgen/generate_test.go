package bindgen

import (
	"strings"
	"testing"

	"github.com/uplink-community/uplink-cgo/pkg/cparse"
)

const testHeader = `
#define UPLINK_ERROR_INTERNAL 0x02
#define UPLINK_ERROR_CANCELED 0x03
#define UPLINK_INTERNAL_VERSION (1 << 8)

typedef const char uplink_const_char;

typedef struct UplinkAccess UplinkAccess;

typedef struct UplinkError {
    int32_t code;
    char *message;
} UplinkError;

typedef struct UplinkAccessResult {
    UplinkAccess *access;
    UplinkError *error;
} UplinkAccessResult;

typedef struct InternalState InternalState;

UplinkAccessResult uplink_parse_access(uplink_const_char *access_string);
void uplink_free_access_result(UplinkAccessResult result);
void uplink_internal_reset(InternalState *state);
`

func parseTestHeader(t *testing.T) *cparse.Header {
	t.Helper()

	header, err := cparse.Parse(testHeader)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return header
}

func testAllowList() AllowList {
	return AllowList{
		Types:     []string{"Uplink.*", "uplink_const_char"},
		Functions: []string{"uplink_parse_access", "uplink_free_access_result"},
		Defines:   []string{"UPLINK_ERROR_.*", "UPLINK_INTERNAL_VERSION"},
	}
}

func TestAllowListPatternsAreAnchored(t *testing.T) {
	filter, err := AllowList{Types: []string{"Uplink.*"}}.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	header, err := filter.Apply(parseTestHeader(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, strct := range header.Structs {
		if strct.Name == "InternalState" {
			t.Fatalf("InternalState must not match Uplink.*")
		}
	}
	if len(header.Structs) != 3 {
		t.Fatalf("expected 3 structs, got %+v", header.Structs)
	}
}

func TestAllowListEmpty(t *testing.T) {
	_, err := AllowList{}.Compile()
	if err == nil {
		t.Fatalf("expected error for empty allow list")
	}
}

func TestAllowListInvalidPattern(t *testing.T) {
	_, err := AllowList{Types: []string{"Uplink["}}.Compile()
	if err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestApplyRejectsFilteredDependencies(t *testing.T) {
	// uplink_internal_reset needs InternalState which no pattern allows
	list := testAllowList()
	list.Functions = append(list.Functions, "uplink_internal_reset")

	filter, err := list.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = filter.Apply(parseTestHeader(t))
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	if !strings.Contains(err.Error(), "InternalState") {
		t.Fatalf("expected InternalState in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "uplink_internal_reset") {
		t.Fatalf("expected the dependent function in error, got %v", err)
	}
}

func generateTestBindings(t *testing.T) *Result {
	t.Helper()

	filter, err := testAllowList().Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	header, err := filter.Apply(parseTestHeader(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := Generate(header, Options{
		Package: "uplink",
		Include: "uplink/uplink.h",
		Source:  "uplink.h",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestGenerateBanner(t *testing.T) {
	result := generateTestBindings(t)

	code := string(result.Code)
	if !strings.HasPrefix(code, "// Code generated by uplink-cgo from uplink.h. DO NOT EDIT.") {
		t.Fatalf("missing banner:\n%s", code)
	}
	if !strings.Contains(code, "// #include <uplink/uplink.h>\nimport \"C\"") {
		t.Fatalf("missing cgo preamble:\n%s", code)
	}
}

func TestGenerateConstants(t *testing.T) {
	result := generateTestBindings(t)

	code := string(result.Code)
	if !strings.Contains(code, "UPLINK_ERROR_INTERNAL") {
		t.Fatalf("missing error constant:\n%s", code)
	}
	if strings.Contains(code, "UPLINK_INTERNAL_VERSION") {
		t.Fatalf("non-literal define must be skipped:\n%s", code)
	}

	found := false
	for _, skipped := range result.Skipped {
		if strings.Contains(skipped, "UPLINK_INTERNAL_VERSION") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UPLINK_INTERNAL_VERSION in skip list, got %v", result.Skipped)
	}
}

func TestGenerateTypeAliases(t *testing.T) {
	result := generateTestBindings(t)

	code := string(result.Code)
	for _, alias := range []string{
		"type uplink_const_char = C.uplink_const_char",
		"type UplinkAccess = C.UplinkAccess",
		"type UplinkAccessResult = C.UplinkAccessResult",
	} {
		if !strings.Contains(code, alias) {
			t.Fatalf("missing alias %q:\n%s", alias, code)
		}
	}
}

func TestGenerateWrappers(t *testing.T) {
	result := generateTestBindings(t)

	code := string(result.Code)
	if !strings.Contains(code, "func Uplink_parse_access(access_string *C.uplink_const_char) C.UplinkAccessResult {") {
		t.Fatalf("missing parse wrapper:\n%s", code)
	}
	if !strings.Contains(code, "return C.uplink_parse_access(access_string)") {
		t.Fatalf("missing parse wrapper body:\n%s", code)
	}
	if !strings.Contains(code, "func Uplink_free_access_result(result C.UplinkAccessResult) {") {
		t.Fatalf("missing free wrapper:\n%s", code)
	}
	if strings.Contains(code, "import \"unsafe\"") {
		t.Fatalf("unsafe must only be imported when used:\n%s", code)
	}
}

func TestGenerateSkipsVariadic(t *testing.T) {
	header, err := cparse.Parse(`void uplink_logf(uplink_const_char *format, ...);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := Generate(header, Options{Package: "uplink", Include: "uplink/uplink.h", Source: "uplink.h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(string(result.Code), "uplink_logf") {
		t.Fatalf("variadic function must not be wrapped:\n%s", result.Code)
	}
	if len(result.Skipped) != 1 || !strings.Contains(result.Skipped[0], "variadic") {
		t.Fatalf("expected a variadic skip entry, got %v", result.Skipped)
	}
}

func TestGenerateUnsafePointer(t *testing.T) {
	header, err := cparse.Parse(`UplinkWriteResult uplink_upload_write(UplinkUpload *upload, void *bytes, size_t length);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := Generate(header, Options{Package: "uplink", Include: "uplink/uplink.h", Source: "uplink.h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code := string(result.Code)
	if !strings.Contains(code, "import \"unsafe\"") {
		t.Fatalf("missing unsafe import:\n%s", code)
	}
	if !strings.Contains(code, "bytes unsafe.Pointer") {
		t.Fatalf("void* must map to unsafe.Pointer:\n%s", code)
	}
}

func TestGoTypeMapping(t *testing.T) {
	cases := []struct {
		typ  cparse.Type
		want string
	}{
		{cparse.Type{Base: "void"}, ""},
		{cparse.Type{Base: "void", Pointers: 1}, "unsafe.Pointer"},
		{cparse.Type{Base: "void", Pointers: 2}, "*unsafe.Pointer"},
		{cparse.Type{Base: "size_t"}, "C.size_t"},
		{cparse.Type{Base: "unsigned long long"}, "C.ulonglong"},
		{cparse.Type{Base: "UplinkAccess", Pointers: 1}, "*C.UplinkAccess"},
		{cparse.Type{Base: "uplink_const_char", Pointers: 1, Const: true}, "*C.uplink_const_char"},
	}

	for _, tc := range cases {
		got, err := goType(tc.typ)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", tc.typ, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q for %+v, got %q", tc.want, tc.typ, got)
		}
	}
}

func TestParamNames(t *testing.T) {
	if name := paramName(cparse.Param{Name: "access"}, 0); name != "access" {
		t.Fatalf("unexpected name %q", name)
	}
	if name := paramName(cparse.Param{}, 2); name != "arg2" {
		t.Fatalf("unexpected fallback name %q", name)
	}
	if name := paramName(cparse.Param{Name: "type"}, 0); name != "type_" {
		t.Fatalf("keyword must be renamed, got %q", name)
	}
}
