// Package builder executes the manifest's native build steps and stages
// the resulting headers and libraries for the binding generator.
package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/uplink-community/uplink-cgo/pkg"
	"github.com/uplink-community/uplink-cgo/pkg/manifest"
)

// RunOptions controls step execution.
type RunOptions struct {
	ProjectRoot string
	// DryRun only prints the commands that would run.
	DryRun bool
	// Force runs every step even when its outputs are newer than its inputs.
	Force bool
	// Only restricts steps to the given GOOS. Empty means the host OS.
	Only string
}

func getStepEnv(step manifest.BuildStep) expand.Environ {
	envVars := os.Environ()

	for name, value := range step.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	return expand.ListEnviron(envVars...)
}

var defaultExecHandler = interp.DefaultExecHandler(2)

func execHandler(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "mv":
			fallthrough
		case "rm":
			fallthrough
		case "mkdir":
			// always use our cross-platform implementation for these operations to make sure
			// they behave consistently
			args = append([]string{"uplink-cgo"}, args...)
		}
	}

	return defaultExecHandler(ctx, args)
}

var defaultOpenHandler = interp.DefaultOpenHandler()

func openHandler(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

func shellReadDir(path string) ([]os.FileInfo, error) {
	if path == "" {
		path = "."
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// resolvePatterns expands glob patterns relative to base. Patterns starting
// with // are relative to the project root. Patterns that match nothing are
// dropped.
func resolvePatterns(projectRoot, base string, patterns []string) ([]string, error) {
	result := []string{}
	cfg := expand.Config{
		ReadDir:  shellReadDir,
		GlobStar: true,
	}

	parser := syntax.NewParser()
	for _, item := range patterns {
		if strings.HasPrefix(item, "//") {
			item = filepath.Join(projectRoot, item[2:])
		} else if !filepath.IsAbs(item) {
			item = filepath.Join(base, item)
		}
		item = filepath.ToSlash(item)

		words := make([]*syntax.Word, 0)
		parser.Words(strings.NewReader(item), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})

		matches, err := expand.Fields(&cfg, words...)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to resolve pattern %s", item)
		}

		for _, match := range matches {
			// If a pattern didn't match anything, it's returned as a result. Skip those results.
			if !strings.Contains(match, "*") {
				result = append(result, match)
			}
		}
	}
	return result, nil
}

// upToDate reports whether all outputs are newer than the newest input.
// Steps without inputs or outputs never count as up to date.
func upToDate(ctx context.Context, step manifest.BuildStep, projectRoot string) (bool, error) {
	if len(step.Inputs) == 0 || len(step.Outputs) == 0 {
		return false, nil
	}

	inputList, err := resolvePatterns(projectRoot, step.Base, step.Inputs)
	if err != nil {
		return false, eris.Wrap(err, "failed to resolve inputs")
	}

	outputList, err := resolvePatterns(projectRoot, step.Base, step.Outputs)
	if err != nil {
		return false, eris.Wrap(err, "failed to resolve outputs")
	}

	var newestInput time.Time
	for _, item := range inputList {
		info, err := os.Stat(item)
		if err != nil {
			return false, eris.Wrapf(err, "Failed to check input %s", item)
		}

		if info.ModTime().Sub(newestInput) > 0 {
			newestInput = info.ModTime()
		}
	}

	if newestInput.IsZero() {
		return false, nil
	}

	var newestOutput time.Time
	missing := false
	for _, item := range outputList {
		info, err := os.Stat(item)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				missing = true
				continue
			}
			return false, eris.Wrapf(err, "Failed to check output %s", item)
		}

		if info.ModTime().Sub(newestOutput) > 0 {
			newestOutput = info.ModTime()
		}
	}

	if missing || len(outputList) == 0 {
		return false, nil
	}

	if newestOutput.Sub(newestInput) > 0 {
		pkg.Log(ctx).Info().
			Str("step", step.Name).
			Msgf("nothing to do (output is %f seconds newer)", newestOutput.Sub(newestInput).Seconds())
		return true, nil
	}

	return false, nil
}

// RunSteps executes the manifest's build steps in declaration order.
func RunSteps(ctx context.Context, m *manifest.Manifest, opts RunOptions) error {
	only := opts.Only
	if only == "" {
		only = hostOS()
	}

	for _, step := range m.Steps {
		if step.Only != "" && step.Only != only {
			pkg.Log(ctx).Debug().
				Str("step", step.Name).
				Msgf("skipped, only runs on %s", step.Only)
			continue
		}

		err := runStep(ctx, step, opts)
		if err != nil {
			return eris.Wrapf(err, "Step %s failed", step.Name)
		}
	}

	return nil
}

func runStep(ctx context.Context, step manifest.BuildStep, opts RunOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !opts.Force {
		done, err := upToDate(ctx, step, opts.ProjectRoot)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	runner, err := interp.New(
		interp.Dir(step.Base),
		interp.Env(getStepEnv(step)),
		interp.ExecHandlers(func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
			return execHandler
		}),
		interp.OpenHandler(openHandler),
		interp.StdIO(nil, os.Stdout, os.Stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return eris.Wrap(err, "Failed to initialize runner")
	}

	parser := syntax.NewParser()
	printer := syntax.NewPrinter(syntax.Minify(true))
	strBuffer := strings.Builder{}

	for idx, item := range step.Cmds {
		result, err := parser.Parse(strings.NewReader(item), fmt.Sprintf("%s:%d", step.Name, idx))
		if err != nil {
			return eris.Wrapf(err, "failed to parse command %s", item)
		}

		for _, stmt := range result.Stmts {
			strBuffer.Reset()
			printer.Print(&strBuffer, stmt)
			pkg.Log(ctx).Info().
				Str("step", step.Name).
				Bool("command", true).
				Msg(strBuffer.String())

			if opts.DryRun {
				continue
			}

			err = runner.Run(ctx, stmt)
			if err != nil {
				return err
			}

			if runner.Exited() {
				return nil
			}
		}

		if err = ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
