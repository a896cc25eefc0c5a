// Package manifest loads the binding manifest (bindings.star), a Starlark
// script that declares the wrapped library, the symbol allow lists, the
// platform linkage and the native build steps. Starlark keeps the manifest
// declarative while still allowing platform switches without inventing a
// custom condition syntax.
package manifest

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	starsyntax "go.starlark.net/syntax"

	"github.com/uplink-community/uplink-cgo/pkg/bindgen"
)

// Library describes the wrapped C project.
type Library struct {
	// Name is the library base name (libuplink.a / libuplink.dll).
	Name string
	// Source is the absolute path of the C project checkout.
	Source string
	// BuildDir is the staging directory, relative to Source.
	BuildDir string
	// Header is the main API header, relative to BuildDir. The generator
	// only parses this file; the build tool's preprocessor already folded
	// the nested includes into it.
	Header string
}

// LinkSpec describes the linkage for one GOOS.
type LinkSpec struct {
	OS         string
	Static     bool
	Libs       []string
	Frameworks []string
}

// HeaderCopy stages one header file into the build directory.
type HeaderCopy struct {
	Src      string
	Dest     string
	Optional bool
}

// BuildStep is one native build invocation. Cmds entries are shell
// fragments executed through the embedded interpreter.
type BuildStep struct {
	Name    string
	Desc    string
	Only    string
	Base    string
	Env     map[string]string
	Cmds    []string
	Inputs  []string
	Outputs []string
}

// Manifest is the processed result of evaluating bindings.star.
type Manifest struct {
	Library Library
	Allow   bindgen.AllowList
	Links   []LinkSpec
	Copies  []HeaderCopy
	Steps   []BuildStep
}

// LinkFor returns the linkage spec for the given GOOS, falling back to a
// static default when the manifest doesn't mention the platform.
func (m *Manifest) LinkFor(goos string) LinkSpec {
	for _, link := range m.Links {
		if link.OS == goos {
			return link
		}
	}
	return LinkSpec{OS: goos, Static: true}
}

// ScriptOption is an option() declaration from the manifest.
type ScriptOption struct {
	DefaultValue starlark.String
	Help         string
}

func (o ScriptOption) Default() string {
	return o.DefaultValue.GoString()
}

// Implement starlark.Value for *Library so library() can hand the value
// back to the script.

func (l *Library) String() string {
	return fmt.Sprintf("<library %s>", l.Name)
}

func (l *Library) Type() string {
	return "library"
}

func (l *Library) Freeze() {}

func (l *Library) Truth() starlark.Bool {
	return starlark.True
}

func (l *Library) Hash() (uint32, error) {
	return 0, eris.New("library is not a hashable type")
}

// Path is a project-relative path value produced by resolve_path.
type Path string

func (p Path) String() string {
	return starlark.String(p).String()
}

func (p Path) Type() string {
	return "path"
}

func (p Path) Freeze() {}

func (p Path) Truth() starlark.Bool {
	return p != ""
}

func (p Path) Hash() (uint32, error) {
	return starlark.String(p).Hash()
}

func (p Path) CompareSameType(op starsyntax.Token, y_ starlark.Value, depth int) (bool, error) {
	y := y_.(Path)

	switch op {
	case starsyntax.EQL:
		return p == y, nil
	case starsyntax.NEQ:
		return p != y, nil
	case starsyntax.LT:
		return p < y, nil
	case starsyntax.LE:
		return p <= y, nil
	case starsyntax.GT:
		return p > y, nil
	case starsyntax.GE:
		return p >= y, nil
	}

	return false, eris.Errorf("unknown operator %v", op)
}
