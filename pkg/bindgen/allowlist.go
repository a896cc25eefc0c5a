package bindgen

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/uplink-community/uplink-cgo/pkg/cparse"
)

// AllowList holds the symbol name patterns that select which declarations
// become part of the generated interface. The patterns are anchored, so
// "Uplink.*" matches UplinkAccess but not EdgeUplinkAccess.
type AllowList struct {
	Types     []string
	Functions []string
	Defines   []string
}

// Filter is a compiled AllowList.
type Filter struct {
	types     []*regexp.Regexp
	functions []*regexp.Regexp
	defines   []*regexp.Regexp
}

func compilePatterns(patterns []string, class string) ([]*regexp.Regexp, error) {
	result := make([]*regexp.Regexp, len(patterns))
	for idx, pattern := range patterns {
		compiled, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return nil, eris.Wrapf(err, "invalid %s pattern %s", class, pattern)
		}
		result[idx] = compiled
	}
	return result, nil
}

// Compile validates the allow list patterns.
func (l AllowList) Compile() (*Filter, error) {
	if len(l.Types) == 0 && len(l.Functions) == 0 && len(l.Defines) == 0 {
		return nil, eris.New("the allow list is empty; refusing to generate an empty interface")
	}

	types, err := compilePatterns(l.Types, "type")
	if err != nil {
		return nil, err
	}

	functions, err := compilePatterns(l.Functions, "function")
	if err != nil {
		return nil, err
	}

	defines, err := compilePatterns(l.Defines, "define")
	if err != nil {
		return nil, err
	}

	return &Filter{types: types, functions: functions, defines: defines}, nil
}

func matchAny(patterns []*regexp.Regexp, name string) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Apply returns a copy of the header reduced to the allowed declarations.
// A function or struct that refers to a declared type which the allow list
// filtered out makes the whole run fail: generating a wrapper around a type
// that doesn't exist in the output would only move the error to the
// consumer's build.
func (f *Filter) Apply(header *cparse.Header) (*cparse.Header, error) {
	declared := make(map[string]bool)
	for _, name := range header.TypeNames() {
		declared[name] = true
	}

	allowed := make(map[string]bool)
	result := new(cparse.Header)

	for _, typedef := range header.Typedefs {
		if matchAny(f.types, typedef.Name) {
			result.Typedefs = append(result.Typedefs, typedef)
			allowed[typedef.Name] = true
		}
	}
	for _, strct := range header.Structs {
		if matchAny(f.types, strct.Name) {
			result.Structs = append(result.Structs, strct)
			allowed[strct.Name] = true
		}
	}
	for _, enum := range header.Enums {
		if matchAny(f.types, enum.Name) {
			result.Enums = append(result.Enums, enum)
			allowed[enum.Name] = true
		}
	}

	for _, fn := range header.Functions {
		if matchAny(f.functions, fn.Name) {
			result.Functions = append(result.Functions, fn)
		}
	}

	for _, define := range header.Defines {
		if matchAny(f.defines, define.Name) {
			result.Defines = append(result.Defines, define)
		}
	}

	missing := map[string][]string{}
	record := func(owner, typeName string) {
		if declared[typeName] && !allowed[typeName] {
			missing[typeName] = append(missing[typeName], owner)
		}
	}

	for _, fn := range result.Functions {
		record(fn.Name, fn.Return.Base)
		for _, param := range fn.Params {
			record(fn.Name, param.Type.Base)
		}
	}
	for _, strct := range result.Structs {
		for _, field := range strct.Fields {
			record(strct.Name, field.Type.Base)
			for _, param := range field.Params {
				record(strct.Name, param.Type.Base)
			}
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name, owners := range missing {
			sort.Strings(owners)
			names = append(names, name+" (used by "+strings.Join(owners, ", ")+")")
		}
		sort.Strings(names)

		return nil, eris.Errorf("allowed declarations depend on filtered types: %s", strings.Join(names, "; "))
	}

	return result, nil
}
