package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/uplink-community/uplink-cgo/pkg"
)

const sampleManifest = `
library(name="uplink", source="//uplink-c", header="uplink/uplink.h")

allow_types("Uplink.*", "uplink_const_char")
allow_functions("uplink_.*")
allow_defines("UPLINK_ERROR_.*")

link(os="linux", static=True)
link(os="windows", libs=["ws2_32", "bcrypt"])
link(os="darwin", static=True, frameworks=["CoreFoundation", "Security"])

copy_header(src="uplink_definitions.h")
copy_header(src=".build/uplink.h", dest="uplink/uplink.h", optional=True)

def configure():
    setenv("CGO_ENABLED", "1")
    build_step(
        name="build",
        desc="Build the static library",
        base="//uplink-c",
        env={"GOFLAGS": "-trimpath"},
        inputs=["*.go"],
        outputs=[".build/libuplink.a"],
        cmds=["make build", ("echo", "hello world")],
    )
    build_step(cmds=["true"])
`

func testContext() context.Context {
	logger := zerolog.Nop()
	return pkg.WithLogger(context.Background(), &logger)
}

func loadScript(t *testing.T, script string, options map[string]string) (*Manifest, map[string]ScriptOption, error) {
	t.Helper()

	root := t.TempDir()
	filename := filepath.Join(root, "bindings.star")
	err := os.WriteFile(filename, []byte(script), 0o600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return Load(testContext(), filename, root, options)
}

func TestLoadLibrary(t *testing.T) {
	m, _, err := loadScript(t, sampleManifest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Library.Name != "uplink" {
		t.Fatalf("unexpected library name %q", m.Library.Name)
	}
	if filepath.Base(m.Library.Source) != "uplink-c" || !filepath.IsAbs(m.Library.Source) {
		t.Fatalf("// paths must resolve against the project root, got %q", m.Library.Source)
	}
	if m.Library.BuildDir != ".build" {
		t.Fatalf("expected the default build dir, got %q", m.Library.BuildDir)
	}
	if m.Library.Header != "uplink/uplink.h" {
		t.Fatalf("unexpected header %q", m.Library.Header)
	}
}

func TestLoadAllowLists(t *testing.T) {
	m, _, err := loadScript(t, sampleManifest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Allow.Types) != 2 || m.Allow.Types[0] != "Uplink.*" {
		t.Fatalf("unexpected type patterns: %v", m.Allow.Types)
	}
	if len(m.Allow.Functions) != 1 || m.Allow.Functions[0] != "uplink_.*" {
		t.Fatalf("unexpected function patterns: %v", m.Allow.Functions)
	}
	if len(m.Allow.Defines) != 1 {
		t.Fatalf("unexpected define patterns: %v", m.Allow.Defines)
	}
}

func TestLoadLinks(t *testing.T) {
	m, _, err := loadScript(t, sampleManifest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	windows := m.LinkFor("windows")
	if windows.Static {
		t.Fatalf("windows must link dynamically: %+v", windows)
	}
	if len(windows.Libs) != 2 || windows.Libs[0] != "ws2_32" {
		t.Fatalf("unexpected windows libs: %v", windows.Libs)
	}

	darwin := m.LinkFor("darwin")
	if !darwin.Static || len(darwin.Frameworks) != 2 {
		t.Fatalf("unexpected darwin link spec: %+v", darwin)
	}

	// platforms the manifest doesn't mention default to static
	fallback := m.LinkFor("freebsd")
	if !fallback.Static || fallback.OS != "freebsd" {
		t.Fatalf("unexpected fallback link spec: %+v", fallback)
	}
}

func TestLoadHeaderCopies(t *testing.T) {
	m, _, err := loadScript(t, sampleManifest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Copies) != 2 {
		t.Fatalf("expected 2 header copies, got %v", m.Copies)
	}
	if m.Copies[0].Dest != "uplink_definitions.h" {
		t.Fatalf("dest must default to the source base name, got %q", m.Copies[0].Dest)
	}
	if !m.Copies[1].Optional || m.Copies[1].Dest != "uplink/uplink.h" {
		t.Fatalf("unexpected second copy: %+v", m.Copies[1])
	}
}

func TestLoadBuildSteps(t *testing.T) {
	m, _, err := loadScript(t, sampleManifest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(m.Steps))
	}

	step := m.Steps[0]
	if step.Name != "build" || step.Desc != "Build the static library" {
		t.Fatalf("unexpected step: %+v", step)
	}
	if filepath.Base(step.Base) != "uplink-c" || !filepath.IsAbs(step.Base) {
		t.Fatalf("step base must be resolved, got %q", step.Base)
	}
	if len(step.Cmds) != 2 || step.Cmds[0] != "make build" {
		t.Fatalf("unexpected cmds: %v", step.Cmds)
	}
	if step.Cmds[1] != "echo 'hello world'" {
		t.Fatalf("tuple commands must be shell-quoted, got %q", step.Cmds[1])
	}
	if step.Env["GOFLAGS"] != "-trimpath" {
		t.Fatalf("unexpected step env: %v", step.Env)
	}
	if step.Env["CGO_ENABLED"] != "1" {
		t.Fatalf("setenv overrides must be merged into steps: %v", step.Env)
	}
	if len(step.Inputs) != 1 || len(step.Outputs) != 1 {
		t.Fatalf("unexpected inputs/outputs: %v %v", step.Inputs, step.Outputs)
	}

	auto := m.Steps[1]
	if !strings.HasPrefix(auto.Name, "step#") {
		t.Fatalf("unnamed steps must get a generated name, got %q", auto.Name)
	}
}

func TestLoadOptions(t *testing.T) {
	script := `
PROFILE = option(name="profile", default="debug", help="build profile")

library(name="uplink", source="//uplink-c", header="uplink/uplink.h")
allow_functions("uplink_.*")

def configure():
    build_step(name="build", cmds=["make " + PROFILE])
`

	m, options, err := loadScript(t, script, map[string]string{"profile": "release"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opt, ok := options["profile"]
	if !ok || opt.Default() != "debug" || opt.Help != "build profile" {
		t.Fatalf("unexpected option declarations: %+v", options)
	}
	if m.Steps[0].Cmds[0] != "make release" {
		t.Fatalf("passed option value must win over the default, got %q", m.Steps[0].Cmds[0])
	}
}

func TestLoadRequiresLibrary(t *testing.T) {
	script := `
allow_functions("uplink_.*")

def configure():
    pass
`

	_, _, err := loadScript(t, script, nil)
	if err == nil {
		t.Fatalf("expected error for missing library()")
	}
	if !strings.Contains(err.Error(), "did not declare a library") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRequiresConfigure(t *testing.T) {
	script := `library(name="uplink", source="//uplink-c", header="uplink/uplink.h")`

	_, _, err := loadScript(t, script, nil)
	if err == nil {
		t.Fatalf("expected error for missing configure()")
	}
	if !strings.Contains(err.Error(), "configure") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadPhaseChecks(t *testing.T) {
	script := `
library(name="uplink", source="//uplink-c", header="uplink/uplink.h")
build_step(name="early", cmds=["true"])

def configure():
    pass
`

	_, _, err := loadScript(t, script, nil)
	if err == nil {
		t.Fatalf("expected error for build_step() outside configure")
	}
	if !strings.Contains(err.Error(), "configure function") {
		t.Fatalf("unexpected error: %v", err)
	}

	script = `
library(name="uplink", source="//uplink-c", header="uplink/uplink.h")

def configure():
    link(os="linux", static=True)
`

	_, _, err = loadScript(t, script, nil)
	if err == nil {
		t.Fatalf("expected error for link() inside configure")
	}
}

func TestLoadDuplicateLink(t *testing.T) {
	script := `
library(name="uplink", source="//uplink-c", header="uplink/uplink.h")
link(os="linux", static=True)
link(os="linux")

def configure():
    pass
`

	_, _, err := loadScript(t, script, nil)
	if err == nil {
		t.Fatalf("expected error for duplicate link()")
	}
	if !strings.Contains(err.Error(), "already called for linux") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	m, _, err := loadScript(t, sampleManifest, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cacheFile := filepath.Join(t.TempDir(), "bindings.cache")
	options := map[string]string{"profile": "release"}
	err = WriteCache(cacheFile, options, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cachedOptions, cached, err := ReadCache(cacheFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cachedOptions["profile"] != "release" {
		t.Fatalf("unexpected cached options: %v", cachedOptions)
	}
	if cached.Library != m.Library {
		t.Fatalf("cached library differs: %+v != %+v", cached.Library, m.Library)
	}
	if len(cached.Steps) != len(m.Steps) || cached.Steps[0].Cmds[0] != m.Steps[0].Cmds[0] {
		t.Fatalf("cached steps differ: %+v", cached.Steps)
	}
	if len(cached.Allow.Types) != len(m.Allow.Types) {
		t.Fatalf("cached allow list differs: %+v", cached.Allow)
	}
}
