package manifest

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
)

// normalizePath resolves a manifest path relative to the manifest file.
// Paths starting with // are relative to the project root instead.
func normalizePath(ctx *parserCtx, pathList ...string) string {
	result := filepath.Dir(ctx.filepath)

	for _, path := range pathList {
		if strings.HasPrefix(path, "//") {
			result = filepath.Join(ctx.projectRoot, path[2:])
		} else if strings.HasPrefix(path, "/") {
			result = filepath.Join(filepath.VolumeName(result), path)
		} else if !filepath.IsAbs(path) {
			result = filepath.Join(result, path)
		} else {
			result = path
		}
	}

	return filepath.Clean(result)
}

func simplifyPath(ctx *parserCtx, path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	if strings.HasPrefix(absPath, ctx.projectRoot) {
		return "//" + absPath[len(ctx.projectRoot)+1:]
	}
	return path
}

type starlarkIterable interface {
	Len() int
	Iterate() starlark.Iterator
}

func iterableToStrings(input starlarkIterable, field string) ([]string, error) {
	if value, ok := input.(*starlark.List); ok && value == nil {
		return []string{}, nil
	}

	result := make([]string, 0, input.Len())
	iter := input.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		switch value := item.(type) {
		case starlark.String:
			result = append(result, value.GoString())
		case Path:
			result = append(result, string(value))
		default:
			return nil, eris.Errorf("expected all items in %s to be strings but found %s", field, item.Type())
		}
	}
	return result, nil
}

func argsToStrings(args starlark.Tuple, fnName string) ([]string, error) {
	result := make([]string, len(args))
	for idx, arg := range args {
		switch value := arg.(type) {
		case starlark.String:
			result[idx] = value.GoString()
		case Path:
			result[idx] = string(value)
		default:
			return nil, eris.Errorf("%s only accepts string arguments but argument %d was a %s", fnName, idx, arg.Type())
		}
	}
	return result, nil
}
