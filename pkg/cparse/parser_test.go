package cparse

import (
	"strings"
	"testing"
)

const sampleHeader = `
// Copyright notice.

#ifndef UPLINK_HEADER_H
#define UPLINK_HEADER_H

#include <stdint.h>

#define UPLINK_ERROR_INTERNAL 0x02
#define UPLINK_ERROR_CANCELED 0x03
#define UPLINK_CHECK(x) ((x) != 0)

#ifdef __cplusplus
extern "C" {
#endif

typedef const char uplink_const_char;

typedef struct UplinkHandle {
    size_t _handle;
} UplinkHandle;

typedef struct UplinkAccess UplinkAccess;

typedef struct UplinkConfig {
    uplink_const_char *user_agent;
    int32_t dial_timeout_milliseconds;
    uplink_const_char *temp_directory;
} UplinkConfig;

typedef struct UplinkAccessResult {
    UplinkAccess *access;
    UplinkError *error;
} UplinkAccessResult;

UplinkAccessResult uplink_parse_access(uplink_const_char *access_string);
UplinkError *uplink_close_project(UplinkProject *project);
void uplink_free_access_result(UplinkAccessResult result);
bool uplink_bucket_iterator_next(UplinkBucketIterator *iterator);

#ifdef __cplusplus
}
#endif

#endif
`

func TestParseDefines(t *testing.T) {
	header, err := Parse(sampleHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// include guard and function-like macro must not show up
	if len(header.Defines) != 2 {
		t.Fatalf("expected 2 defines, got %d: %v", len(header.Defines), header.Defines)
	}
	if header.Defines[0].Name != "UPLINK_ERROR_INTERNAL" || header.Defines[0].Value != "0x02" {
		t.Fatalf("unexpected first define: %+v", header.Defines[0])
	}
	if header.Defines[1].Name != "UPLINK_ERROR_CANCELED" {
		t.Fatalf("unexpected second define: %+v", header.Defines[1])
	}
}

func TestParseTypedefs(t *testing.T) {
	header, err := Parse(sampleHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(header.Typedefs) != 1 {
		t.Fatalf("expected 1 typedef, got %d", len(header.Typedefs))
	}
	td := header.Typedefs[0]
	if td.Name != "uplink_const_char" {
		t.Fatalf("unexpected typedef name %q", td.Name)
	}
	if td.Target.Base != "char" || !td.Target.Const {
		t.Fatalf("unexpected typedef target: %+v", td.Target)
	}
}

func TestParseStructs(t *testing.T) {
	header, err := Parse(sampleHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(header.Structs) != 4 {
		t.Fatalf("expected 4 structs, got %d", len(header.Structs))
	}

	handle := header.Structs[0]
	if handle.Name != "UplinkHandle" || handle.Opaque {
		t.Fatalf("unexpected handle struct: %+v", handle)
	}
	if len(handle.Fields) != 1 || handle.Fields[0].Name != "_handle" {
		t.Fatalf("unexpected handle fields: %+v", handle.Fields)
	}

	access := header.Structs[1]
	if access.Name != "UplinkAccess" || !access.Opaque || access.Tag != "UplinkAccess" {
		t.Fatalf("expected opaque forward declaration, got %+v", access)
	}

	config := header.Structs[2]
	if len(config.Fields) != 3 {
		t.Fatalf("unexpected config fields: %+v", config.Fields)
	}
	if config.Fields[0].Type.Base != "uplink_const_char" || config.Fields[0].Type.Pointers != 1 {
		t.Fatalf("unexpected user_agent type: %+v", config.Fields[0].Type)
	}
	if config.Fields[1].Type.Base != "int32_t" {
		t.Fatalf("unexpected timeout type: %+v", config.Fields[1].Type)
	}
}

func TestParseFunctions(t *testing.T) {
	header, err := Parse(sampleHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(header.Functions) != 4 {
		t.Fatalf("expected 4 functions, got %d", len(header.Functions))
	}

	parse := header.Functions[0]
	if parse.Name != "uplink_parse_access" {
		t.Fatalf("unexpected function name %q", parse.Name)
	}
	if parse.Return.Base != "UplinkAccessResult" || parse.Return.Pointers != 0 {
		t.Fatalf("unexpected return type: %+v", parse.Return)
	}
	if len(parse.Params) != 1 || parse.Params[0].Name != "access_string" {
		t.Fatalf("unexpected params: %+v", parse.Params)
	}

	closeProject := header.Functions[1]
	if closeProject.Return.Base != "UplinkError" || closeProject.Return.Pointers != 1 {
		t.Fatalf("unexpected return type: %+v", closeProject.Return)
	}

	free := header.Functions[2]
	if !free.Return.IsVoid() {
		t.Fatalf("expected void return, got %+v", free.Return)
	}
	if free.Params[0].Type.Pointers != 0 {
		t.Fatalf("expected by-value parameter, got %+v", free.Params[0].Type)
	}
}

func TestParseMultiwordTypes(t *testing.T) {
	header, err := Parse(`
UplinkAccessResult uplink_access_share(UplinkAccess *access, long long prefixes_count);
unsigned long long uplink_reserved(void);
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	share := header.Functions[0]
	if share.Params[1].Type.Base != "long long" {
		t.Fatalf("unexpected count type: %+v", share.Params[1].Type)
	}

	reserved := header.Functions[1]
	if reserved.Return.Base != "unsigned long long" {
		t.Fatalf("unexpected return type: %+v", reserved.Return)
	}
	if len(reserved.Params) != 0 {
		t.Fatalf("(void) parameter list should be empty, got %+v", reserved.Params)
	}
}

func TestParseVariadicFunction(t *testing.T) {
	header, err := Parse(`void uplink_logf(uplink_const_char *format, ...);`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(header.Functions) != 1 || !header.Functions[0].Variadic {
		t.Fatalf("expected a variadic function, got %+v", header.Functions)
	}
}

func TestParseEnum(t *testing.T) {
	header, err := Parse(`
typedef enum UplinkListDirection {
    UPLINK_BEFORE = -2,
    UPLINK_BACKWARD = -1,
    UPLINK_FORWARD = 1,
    UPLINK_AFTER
} UplinkListDirection;
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(header.Enums) != 1 {
		t.Fatalf("expected 1 enum, got %d", len(header.Enums))
	}
	e := header.Enums[0]
	if e.Name != "UplinkListDirection" || len(e.Members) != 4 {
		t.Fatalf("unexpected enum: %+v", e)
	}
	if e.Members[0].Value != "- 2" {
		t.Fatalf("unexpected member value %q", e.Members[0].Value)
	}
	if e.Members[1].Name != "UPLINK_BACKWARD" || e.Members[1].Value != "- 1" {
		t.Fatalf("unexpected member: %+v", e.Members[1])
	}
	if e.Members[3].Name != "UPLINK_AFTER" || e.Members[3].Value != "" {
		t.Fatalf("unexpected auto-increment member: %+v", e.Members[3])
	}
}

func TestParseFunctionPointerField(t *testing.T) {
	header, err := Parse(`
typedef struct UplinkCallbacks {
    void (*on_progress)(int64_t transferred, void *userdata);
} UplinkCallbacks;
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	field := header.Structs[0].Fields[0]
	if !field.FuncPtr || field.Name != "on_progress" {
		t.Fatalf("expected function pointer field, got %+v", field)
	}
	if len(field.Params) != 2 {
		t.Fatalf("unexpected callback params: %+v", field.Params)
	}
}

func TestParseArrayField(t *testing.T) {
	header, err := Parse(`
typedef struct UplinkEncryptionKey {
    uint8_t bytes[32];
} UplinkEncryptionKey;
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	field := header.Structs[0].Fields[0]
	if field.Type.ArrayLen != "32" {
		t.Fatalf("expected array length 32, got %+v", field.Type)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(`typedef struct Name;`)
	if err == nil {
		t.Fatalf("expected error for forward declaration without a typedef name")
	}

	_, err = Parse(`typedef enum { UPLINK_A, } UplinkBroken;`)
	if err == nil {
		t.Fatalf("expected error for trailing comma")
	}
	if !strings.Contains(err.Error(), "trailing comma") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = Parse(`typedef struct Broken { int32_t field `)
	if err == nil {
		t.Fatalf("expected error for unterminated struct")
	}

	_, err = Parse(`typedef struct Empty {} Empty;`)
	if err == nil {
		t.Fatalf("expected error for empty struct body")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTypeNames(t *testing.T) {
	header, err := Parse(sampleHeader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := header.TypeNames()
	want := []string{"uplink_const_char", "UplinkHandle", "UplinkAccess", "UplinkConfig", "UplinkAccessResult"}
	if len(names) != len(want) {
		t.Fatalf("expected %d type names, got %v", len(want), names)
	}
	for idx, name := range want {
		if names[idx] != name {
			t.Fatalf("expected %q at %d, got %v", name, idx, names)
		}
	}
}
