package cmd

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/uplink-community/uplink-cgo/pkg"
	"github.com/uplink-community/uplink-cgo/pkg/bindgen"
	"github.com/uplink-community/uplink-cgo/pkg/builder"
	"github.com/uplink-community/uplink-cgo/pkg/cparse"
	"github.com/uplink-community/uplink-cgo/pkg/manifest"
)

var buildCmd = &cobra.Command{
	Use:   "build [option=value...]",
	Short: "Compiles the native library and regenerates the bindings",
	Long: `Runs the full pipeline declared in bindings.star: executes the native
build steps, stages the headers and libraries in the build directory and
generates the cgo interface from the staged API header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, options := splitOptionArgs(args)

		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return err
		}
		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}
		outDir, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		ctx := newContext()
		m, root, err := loadManifest(ctx, options, noCache)
		if err != nil {
			return err
		}

		_, err = os.Stat(m.Library.Source)
		if err != nil {
			return eris.Wrapf(err, "The library source directory %s is missing; run fetch-deps first", m.Library.Source)
		}

		pkg.PrintTask("Building " + m.Library.Name)
		err = builder.RunSteps(ctx, m, builder.RunOptions{
			ProjectRoot: root,
			DryRun:      dryRun,
			Force:       force,
		})
		if err != nil {
			return err
		}

		if dryRun {
			return nil
		}

		pkg.PrintTask("Staging artifacts")
		header, err := builder.StageArtifacts(ctx, m, runtime.GOOS)
		if err != nil {
			return err
		}

		pkg.PrintTask("Generating bindings")
		return generateBindings(ctx, m, header, filepath.Join(root, outDir))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolP("dry", "n", false, "dry run; only print the build commands, don't execute anything")
	buildCmd.Flags().BoolP("force", "f", false, "always run every build step even if its outputs are up to date")
	buildCmd.Flags().Bool("no-cache", false, "re-evaluate bindings.star even if a cached result exists")
	buildCmd.Flags().StringP("out", "o", "uplink", "output directory for the generated package")
}

func generateBindings(ctx context.Context, m *manifest.Manifest, headerPath, outDir string) error {
	header, err := cparse.ParseFile(headerPath)
	if err != nil {
		return err
	}

	filter, err := m.Allow.Compile()
	if err != nil {
		return err
	}

	filtered, err := filter.Apply(header)
	if err != nil {
		return err
	}

	result, err := bindgen.Generate(filtered, bindgen.Options{
		Package: filepath.Base(outDir),
		Include: m.Library.Header,
		Source:  filepath.Base(headerPath),
	})
	if err != nil {
		return err
	}

	for _, skipped := range result.Skipped {
		pkg.Log(ctx).Warn().Msgf("skipped %s", skipped)
	}

	err = os.MkdirAll(outDir, 0770)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", outDir)
	}

	dest := filepath.Join(outDir, "bindings.go")
	err = os.WriteFile(dest, result.Code, 0660)
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", dest)
	}

	pkg.Log(ctx).Info().
		Str("path", dest).
		Msgf("wrote %s", dest)
	return nil
}
