package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	"mvdan.cc/sh/v3/syntax"

	"github.com/uplink-community/uplink-cgo/pkg"
)

type parserCtx struct {
	ctx          context.Context
	options      map[string]ScriptOption
	optionValues map[string]string
	envOverrides map[string]string
	filepath     string
	projectRoot  string
	manifest     *Manifest
	initPhase    bool
}

func getCtx(thread *starlark.Thread) *parserCtx {
	return thread.Local("parserCtx").(*parserCtx)
}

func info(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	pkg.Log(ctx.ctx).Info().
		Msgf("%s:%d:%d: %s", simplifyPath(ctx, ctx.filepath), pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

func warn(thread *starlark.Thread, msg string, args ...interface{}) {
	ctx := getCtx(thread)
	pos := thread.CallFrame(1).Pos

	pkg.Log(ctx.ctx).Warn().
		Msgf("%s:%d:%d: %s", simplifyPath(ctx, ctx.filepath), pos.Line, pos.Col, fmt.Sprintf(msg, args...))
}

// * Builtin functions

func library(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, source, header, buildDir string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name, "source", &source, "header", &header, "build_dir?", &buildDir)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("library() can only be called during the init phase (in the global scope)")
	}
	if ctx.manifest.Library.Name != "" {
		return nil, eris.New("library() was already called; only one library per manifest is supported")
	}

	if buildDir == "" {
		buildDir = ".build"
	}

	ctx.manifest.Library = Library{
		Name:     name,
		Source:   normalizePath(ctx, source),
		BuildDir: buildDir,
		Header:   header,
	}

	return &ctx.manifest.Library, nil
}

func allowPatterns(dest *[]string) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, eris.Errorf("%s does not accept keyword arguments", fn.Name())
		}

		ctx := getCtx(thread)
		if !ctx.initPhase {
			return nil, eris.Errorf("%s can only be called during the init phase (in the global scope)", fn.Name())
		}

		patterns, err := argsToStrings(args, fn.Name())
		if err != nil {
			return nil, err
		}

		*dest = append(*dest, patterns...)
		return starlark.None, nil
	}
}

func link(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var osName string
	var static bool
	var libs *starlark.List
	var frameworks *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"os", &osName, "static?", &static, "libs?", &libs, "frameworks?", &frameworks)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("link() can only be called during the init phase (in the global scope)")
	}

	for _, existing := range ctx.manifest.Links {
		if existing.OS == osName {
			return nil, eris.Errorf("link() was already called for %s", osName)
		}
	}

	spec := LinkSpec{OS: osName, Static: static}
	spec.Libs, err = iterableToStrings(libs, "libs")
	if err != nil {
		return nil, err
	}

	spec.Frameworks, err = iterableToStrings(frameworks, "frameworks")
	if err != nil {
		return nil, err
	}

	if len(spec.Frameworks) > 0 && osName != "darwin" {
		warn(thread, "link(%s): frameworks only have an effect on darwin", osName)
	}

	ctx.manifest.Links = append(ctx.manifest.Links, spec)
	return starlark.None, nil
}

func copyHeader(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var src, dest string
	var optional bool

	err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"src", &src, "dest?", &dest, "optional?", &optional)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("copy_header() can only be called during the init phase (in the global scope)")
	}

	if dest == "" {
		dest = filepath.Base(src)
	}

	ctx.manifest.Copies = append(ctx.manifest.Copies, HeaderCopy{
		Src:      src,
		Dest:     dest,
		Optional: optional,
	})
	return starlark.None, nil
}

// cmdToScript turns a (prog, arg, ...) tuple into a shell fragment. Path
// values are relativized against the step base since absolute paths cause
// issues on Windows.
func cmdToScript(parts starlark.Tuple, base string) (string, error) {
	words := make([]string, len(parts))
	for idx, part := range parts {
		var value string

		switch part := part.(type) {
		case starlark.String:
			value = part.GoString()
		case Path:
			value = string(part)
			if filepath.IsAbs(value) {
				relValue, err := filepath.Rel(base, value)
				if err == nil {
					value = relValue
				}
			}
			value = filepath.ToSlash(value)
		default:
			return "", eris.Errorf("found argument of type %s but only strings and paths are supported: %s", part.Type(), part.String())
		}

		quoted, err := syntax.Quote(value, syntax.LangBash)
		if err != nil {
			return "", eris.Wrapf(err, "cannot quote argument %s", value)
		}
		words[idx] = quoted
	}

	result := ""
	for idx, word := range words {
		if idx > 0 {
			result += " "
		}
		result += word
	}
	return result, nil
}

func buildStep(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var inputs *starlark.List
	var outputs *starlark.List
	var env *starlark.Dict
	var cmds *starlark.List

	step := BuildStep{}
	err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name??", &step.Name, "desc?", &step.Desc, "only?", &step.Only, "base?", &step.Base,
		"env?", &env, "inputs?", &inputs, "outputs?", &outputs, "cmds", &cmds)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if ctx.initPhase {
		return nil, eris.New("build_step() can only be called from the configure function")
	}

	if step.Name == "" {
		step.Name = "step#" + nanoid.New()
	}

	if step.Base == "" {
		step.Base = "."
	}
	step.Base = normalizePath(ctx, step.Base)

	step.Inputs, err = iterableToStrings(inputs, "inputs")
	if err != nil {
		return nil, err
	}

	step.Outputs, err = iterableToStrings(outputs, "outputs")
	if err != nil {
		return nil, err
	}

	step.Env = map[string]string{}
	if env != nil {
		for _, rawKey := range env.Keys() {
			key, ok := rawKey.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found key type %s in env map but only strings are supported", rawKey.Type())
			}

			rawValue, _, err := env.Get(rawKey)
			if err != nil {
				return nil, err
			}
			value, ok := rawValue.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found value of type %s for key %s but only strings are supported", rawValue.Type(), key.GoString())
			}

			step.Env[key.GoString()] = value.GoString()
		}
	}

	step.Cmds = make([]string, 0, cmds.Len())
	iter := cmds.Iterate()
	defer iter.Done()

	var item starlark.Value
	idx := 0
	for iter.Next(&item) {
		switch value := item.(type) {
		case starlark.String:
			step.Cmds = append(step.Cmds, value.GoString())
		case starlark.Tuple:
			script, err := cmdToScript(value, step.Base)
			if err != nil {
				return nil, eris.Wrapf(err, "failed to process command #%d", idx)
			}
			step.Cmds = append(step.Cmds, script)
		default:
			return nil, eris.Errorf("%s: unexpected type %s. Only strings and tuples are valid", fn.Name(), item.Type())
		}
		idx++
	}

	if len(step.Inputs) > 0 && len(step.Outputs) == 0 {
		warn(thread, "%s: found inputs but no outputs", step.Name)
	}

	ctx.manifest.Steps = append(ctx.manifest.Steps, step)
	return starlark.None, nil
}

func option(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var defaultValue starlark.String
	var help string

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &defaultValue, "help?", &help)
	if err != nil {
		return nil, err
	}

	ctx := getCtx(thread)
	if !ctx.initPhase {
		return nil, eris.New("option() can only be called during the init phase (in the global scope)")
	}

	ctx.options[name] = ScriptOption{
		DefaultValue: defaultValue,
		Help:         help,
	}

	value, ok := ctx.optionValues[name]
	if ok {
		return starlark.String(value), nil
	}

	return defaultValue, nil
}

func resolvePath(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, eris.Errorf("%s does not accept keyword arguments", fn.Name())
	}
	if len(args) < 1 {
		return nil, eris.New("expects at least one argument")
	}

	parts, err := argsToStrings(args, fn.Name())
	if err != nil {
		return nil, err
	}

	return Path(normalizePath(getCtx(thread), parts...)), nil
}

func getenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &key)
	if err != nil {
		return nil, err
	}

	envOverrides := getCtx(thread).envOverrides
	value, ok := envOverrides[key]
	if !ok {
		value = os.Getenv(key)
	}

	return starlark.String(value), nil
}

func setenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	var value string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &key, &value)
	if err != nil {
		return nil, err
	}

	getCtx(thread).envOverrides[key] = value
	return starlark.True, nil
}

func starInfo(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	info(thread, message)
	return starlark.None, nil
}

func starWarn(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	warn(thread, message)
	return starlark.None, nil
}

func starError(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	return nil, eris.New(message)
}

func starIsdir(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dirPath string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &dirPath)
	if err != nil {
		return nil, err
	}

	dirPath = normalizePath(getCtx(thread), dirPath)
	fi, err := os.Stat(dirPath)
	if err == nil && fi.IsDir() {
		return starlark.True, nil
	}
	return starlark.False, nil
}

func starIsfile(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var filePath string

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &filePath)
	if err != nil {
		return nil, err
	}

	filePath = normalizePath(getCtx(thread), filePath)
	fi, err := os.Stat(filePath)
	if err == nil && fi.Mode().IsRegular() {
		return starlark.True, nil
	}
	return starlark.False, nil
}

// Load evaluates the manifest script. The script's global scope declares
// the library, allow lists and linkage; the configure function declares the
// build steps (it runs after all options are known, so it can branch on
// them and on OS/ARCH).
func Load(ctx context.Context, filename, projectRoot string, options map[string]string) (*Manifest, map[string]ScriptOption, error) {
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, nil, err
	}

	filename, err = filepath.Abs(filename)
	if err != nil {
		return nil, nil, err
	}

	threadCtx := parserCtx{
		ctx:          ctx,
		filepath:     filename,
		projectRoot:  projectRoot,
		options:      make(map[string]ScriptOption),
		optionValues: options,
		envOverrides: make(map[string]string),
		manifest:     new(Manifest),
		initPhase:    true,
	}

	builtins := starlark.StringDict{
		"OS":              starlark.String(runtime.GOOS),
		"ARCH":            starlark.String(runtime.GOARCH),
		"library":         starlark.NewBuiltin("library", library),
		"allow_types":     starlark.NewBuiltin("allow_types", allowPatterns(&threadCtx.manifest.Allow.Types)),
		"allow_functions": starlark.NewBuiltin("allow_functions", allowPatterns(&threadCtx.manifest.Allow.Functions)),
		"allow_defines":   starlark.NewBuiltin("allow_defines", allowPatterns(&threadCtx.manifest.Allow.Defines)),
		"link":            starlark.NewBuiltin("link", link),
		"copy_header":     starlark.NewBuiltin("copy_header", copyHeader),
		"build_step":      starlark.NewBuiltin("build_step", buildStep),
		"option":          starlark.NewBuiltin("option", option),
		"resolve_path":    starlark.NewBuiltin("resolve_path", resolvePath),
		"getenv":          starlark.NewBuiltin("getenv", getenv),
		"setenv":          starlark.NewBuiltin("setenv", setenv),
		"info":            starlark.NewBuiltin("info", starInfo),
		"warn":            starlark.NewBuiltin("warn", starWarn),
		"error":           starlark.NewBuiltin("error", starError),
		"isdir":           starlark.NewBuiltin("isdir", starIsdir),
		"isfile":          starlark.NewBuiltin("isfile", starIsfile),
	}

	thread := &starlark.Thread{
		Name: "manifest",
		Print: func(thread *starlark.Thread, msg string) {
			pkg.Log(ctx).Info().Str("thread", thread.Name).Msg(msg)
		},
	}
	thread.SetLocal("parserCtx", &threadCtx)

	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, eris.Wrap(err, "failed to read file")
	}

	globals, err := starlark.ExecFile(thread, simplifyPath(&threadCtx, filename), script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, nil, eris.Errorf("failed to execute %s:\n%s", simplifyPath(&threadCtx, filename), evalError.Backtrace())
		}
		return nil, nil, eris.Wrap(err, "failed to execute")
	}

	if threadCtx.manifest.Library.Name == "" {
		return nil, nil, eris.Errorf("%s did not declare a library", simplifyPath(&threadCtx, filename))
	}

	configure, ok := globals["configure"]
	if !ok {
		return nil, nil, eris.Errorf("%s did not declare a configure function", simplifyPath(&threadCtx, filename))
	}

	configureFunc, ok := configure.(starlark.Callable)
	if !ok {
		return nil, nil, eris.Errorf("%s did declare a configure value but it's not a function", simplifyPath(&threadCtx, filename))
	}

	threadCtx.initPhase = false
	_, err = starlark.Call(thread, configureFunc, make(starlark.Tuple, 0), make([]starlark.Tuple, 0))
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, nil, eris.New(evalError.Backtrace())
		}
		return nil, nil, eris.Wrapf(err, "failed configure call in %s", simplifyPath(&threadCtx, filename))
	}

	for idx := range threadCtx.manifest.Steps {
		step := &threadCtx.manifest.Steps[idx]
		for name, value := range threadCtx.envOverrides {
			_, present := step.Env[name]
			if !present {
				step.Env[name] = value
			}
		}
	}

	return threadCtx.manifest, threadCtx.options, nil
}
