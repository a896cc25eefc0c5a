package cmd

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/uplink-community/uplink-cgo/pkg/builder"
)

var generateCmd = &cobra.Command{
	Use:   "generate [option=value...]",
	Short: "Regenerates the bindings from the staged API header",
	Long: `Parses the staged API header and regenerates the cgo interface without
rebuilding the native library. Useful after tweaking the allow lists in
bindings.star.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, options := splitOptionArgs(args)

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

		header := builder.HeaderPath(m)
		_, err = os.Stat(header)
		if err != nil {
			return eris.Wrapf(err, "The staged header %s is missing; run build first", header)
		}

		return generateBindings(ctx, m, header, filepath.Join(root, outDir))
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Bool("no-cache", false, "re-evaluate bindings.star even if a cached result exists")
	generateCmd.Flags().StringP("out", "o", "uplink", "output directory for the generated package")
}
