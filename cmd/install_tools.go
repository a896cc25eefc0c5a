package cmd

import (
	"github.com/spf13/cobra"

	"github.com/uplink-community/uplink-cgo/pkg"
)

var installToolsCmd = &cobra.Command{
	Use:   "install-tools",
	Short: "Installs Go CLI tools",
	Long: `Installs the tools listed in tools.go into the workspace .tools
directory. If you have direnv enabled, they will be available in your PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg.PrintTask("Installing tools")
		return pkg.InstallTools()
	},
}

func init() {
	rootCmd.AddCommand(installToolsCmd)
}
