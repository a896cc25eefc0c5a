package cmd

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/uplink-community/uplink-cgo/pkg"
	"github.com/uplink-community/uplink-cgo/pkg/builder"
)

var packDistCmd = &cobra.Command{
	Use:   "pack-dist <output file> [option=value...]",
	Short: "Bundles the staged build artifacts for distribution",
	Long: `Packs the staged headers and libraries into a compressed bundle.
Consumers that can't build the native library themselves unpack such a
bundle with unpack-dist instead of running build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, options := splitOptionArgs(args)
		if len(plain) != 1 {
			return eris.Errorf("Expected exactly one output file but got %d arguments!", len(plain))
		}

		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}

		ctx := newContext()
		m, _, err := loadManifest(ctx, options, noCache)
		if err != nil {
			return err
		}

		buildDir := builder.BuildDir(m)
		info, err := os.Stat(buildDir)
		if err != nil || !info.IsDir() {
			return eris.Errorf("The build directory %s is missing; run build first", buildDir)
		}

		pkg.PrintTask("Packing " + plain[0])
		writer, err := pkg.NewDistWriter(plain[0])
		if err != nil {
			return err
		}

		count := 0
		err = filepath.WalkDir(buildDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(buildDir, path)
			if err != nil {
				return err
			}

			handle, err := os.Open(path)
			if err != nil {
				return eris.Wrapf(err, "Failed to open %s", path)
			}
			defer handle.Close()

			pkg.PrintSubtask(rel)
			count++
			return writer.WriteFile(rel, handle)
		})
		if err != nil {
			writer.Close()
			return err
		}

		if count == 0 {
			writer.Close()
			return eris.Errorf("The build directory %s is empty", buildDir)
		}

		return writer.Close()
	},
}

var unpackDistCmd = &cobra.Command{
	Use:   "unpack-dist <bundle> [option=value...]",
	Short: "Unpacks a distribution bundle into the build directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, options := splitOptionArgs(args)
		if len(plain) != 1 {
			return eris.Errorf("Expected exactly one bundle file but got %d arguments!", len(plain))
		}

		noCache, err := cmd.Flags().GetBool("no-cache")
		if err != nil {
			return err
		}

		ctx := newContext()
		m, _, err := loadManifest(ctx, options, noCache)
		if err != nil {
			return err
		}

		reader, err := pkg.OpenDist(plain[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		buildDir := builder.BuildDir(m)
		pkg.PrintTask("Unpacking into " + buildDir)
		for _, name := range reader.Entries() {
			pkg.PrintSubtask(name)
		}

		return reader.Extract(buildDir)
	},
}

func init() {
	rootCmd.AddCommand(packDistCmd)
	rootCmd.AddCommand(unpackDistCmd)
	packDistCmd.Flags().Bool("no-cache", false, "re-evaluate bindings.star even if a cached result exists")
	unpackDistCmd.Flags().Bool("no-cache", false, "re-evaluate bindings.star even if a cached result exists")
}
