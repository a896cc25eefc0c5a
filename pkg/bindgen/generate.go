// Package bindgen generates typed cgo wrappers from a parsed C-ABI header.
// Declarations are selected through name-based allow lists, mirroring the
// naming discipline of the wrapped library: everything the library exports
// shares a small set of prefixes, so an allow list is much easier to keep
// correct than a block list.
package bindgen

import (
	"go/format"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/uplink-community/uplink-cgo/pkg/cparse"
)

// Options configures a generator run.
type Options struct {
	// Package is the name of the generated Go package.
	Package string
	// Include is the header path placed in the cgo preamble, relative to
	// the include search path set up by the per-platform flag files.
	Include string
	// Source names the input header in the generated-code banner.
	Source string
}

// Result is the outcome of a generator run.
type Result struct {
	Code []byte
	// Skipped lists declarations that were allowed but cannot be expressed
	// through cgo, with a reason each.
	Skipped []string
}

// integer literals, optionally parenthesized; anything more complex than
// that (casts, expressions) can't be turned into a Go constant verbatim
var literalValue = regexp.MustCompile(`^\(?(?:0[xX][0-9a-fA-F]+|[0-9]+)\)?$`)

// Generate renders the Go source for the given (already filtered) header.
func Generate(header *cparse.Header, opts Options) (*Result, error) {
	if opts.Package == "" {
		return nil, eris.New("output package name is empty")
	}
	if opts.Include == "" {
		return nil, eris.New("header include path is empty")
	}

	result := new(Result)
	buf := new(strings.Builder)

	body, needsUnsafe, err := renderBody(header, result)
	if err != nil {
		return nil, err
	}

	buf.WriteString("// Code generated by uplink-cgo from ")
	buf.WriteString(opts.Source)
	buf.WriteString(". DO NOT EDIT.\n\n")
	buf.WriteString("package ")
	buf.WriteString(opts.Package)
	buf.WriteString("\n\n")
	buf.WriteString("// #include <")
	buf.WriteString(opts.Include)
	buf.WriteString(">\n")
	buf.WriteString("import \"C\"\n")
	if needsUnsafe {
		buf.WriteString("\nimport \"unsafe\"\n")
	}
	buf.WriteString(body)

	code, err := format.Source([]byte(buf.String()))
	if err != nil {
		return nil, eris.Wrap(err, "generated code does not parse")
	}

	result.Code = code
	return result, nil
}

func renderBody(header *cparse.Header, result *Result) (string, bool, error) {
	buf := new(strings.Builder)
	needsUnsafe := false

	if len(header.Defines) > 0 {
		buf.WriteString("\nconst (\n")
		for _, define := range header.Defines {
			if !literalValue.MatchString(define.Value) {
				result.Skipped = append(result.Skipped,
					define.Name+": value is not an integer literal")
				continue
			}

			buf.WriteString("\t")
			buf.WriteString(define.Name)
			buf.WriteString(" = ")
			buf.WriteString(define.Value)
			buf.WriteString("\n")
		}
		buf.WriteString(")\n")
	}

	for _, typedef := range header.Typedefs {
		buf.WriteString("\ntype ")
		buf.WriteString(typedef.Name)
		buf.WriteString(" = C.")
		buf.WriteString(typedef.Name)
		buf.WriteString("\n")
	}

	for _, strct := range header.Structs {
		buf.WriteString("\ntype ")
		buf.WriteString(strct.Name)
		buf.WriteString(" = C.")
		buf.WriteString(strct.Name)
		buf.WriteString("\n")
	}

	for _, enum := range header.Enums {
		buf.WriteString("\ntype ")
		buf.WriteString(enum.Name)
		buf.WriteString(" = C.")
		buf.WriteString(enum.Name)
		buf.WriteString("\n")

		buf.WriteString("\nconst (\n")
		for _, member := range enum.Members {
			buf.WriteString("\t")
			buf.WriteString(member.Name)
			buf.WriteString(" = C.")
			buf.WriteString(member.Name)
			buf.WriteString("\n")
		}
		buf.WriteString(")\n")
	}

	for _, fn := range header.Functions {
		if fn.Variadic {
			result.Skipped = append(result.Skipped,
				fn.Name+": cgo cannot call variadic C functions")
			continue
		}

		code, unsafeUsed, err := renderFunction(fn)
		if err != nil {
			return "", false, err
		}

		needsUnsafe = needsUnsafe || unsafeUsed
		buf.WriteString(code)
	}

	return buf.String(), needsUnsafe, nil
}

// exportName capitalizes the first letter of a C identifier. The rest is
// kept verbatim so the generated name stays greppable against the header.
func exportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func renderFunction(fn cparse.Function) (string, bool, error) {
	buf := new(strings.Builder)
	needsUnsafe := false

	retType, err := goType(fn.Return)
	if err != nil {
		return "", false, eris.Wrapf(err, "return type of %s", fn.Name)
	}
	needsUnsafe = needsUnsafe || strings.Contains(retType, "unsafe.Pointer")

	buf.WriteString("\nfunc ")
	buf.WriteString(exportName(fn.Name))
	buf.WriteString("(")

	args := make([]string, len(fn.Params))
	for idx, param := range fn.Params {
		paramType, err := goType(param.Type)
		if err != nil {
			return "", false, eris.Wrapf(err, "parameter %d of %s", idx, fn.Name)
		}
		if paramType == "" {
			return "", false, eris.Errorf("parameter %d of %s has type void", idx, fn.Name)
		}
		needsUnsafe = needsUnsafe || strings.Contains(paramType, "unsafe.Pointer")

		name := paramName(param, idx)
		args[idx] = name
		if idx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(name)
		buf.WriteString(" ")
		buf.WriteString(paramType)
	}

	buf.WriteString(")")
	if retType != "" {
		buf.WriteString(" ")
		buf.WriteString(retType)
	}
	buf.WriteString(" {\n\t")
	if retType != "" {
		buf.WriteString("return ")
	}
	buf.WriteString("C.")
	buf.WriteString(fn.Name)
	buf.WriteString("(")
	buf.WriteString(strings.Join(args, ", "))
	buf.WriteString(")\n}\n")

	return buf.String(), needsUnsafe, nil
}
