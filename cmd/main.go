package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/uplink-community/uplink-cgo/pkg"
	"github.com/uplink-community/uplink-cgo/pkg/manifest"
)

var rootCmd = &cobra.Command{
	Use:   "uplink-cgo",
	Short: "Build tools for the uplink cgo bindings",
	Long: `This command bundles the tools that build the uplink cgo bindings.
This includes tools to download the uplink-c source, compile it, stage the
build artifacts and generate the typed cgo interface from the API header.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// newContext returns a context with a console logger attached.
func newContext() context.Context {
	logger := zerolog.New(NewConsoleWriter())
	return pkg.WithLogger(context.Background(), &logger)
}

// splitOptionArgs splits key=value arguments from plain arguments.
func splitOptionArgs(args []string) ([]string, map[string]string) {
	plain := make([]string, 0)
	options := make(map[string]string)

	for _, part := range args {
		pos := strings.Index(part, "=")
		if pos > -1 {
			options[part[:pos]] = part[pos+1:]
		} else {
			plain = append(plain, part)
		}
	}

	return plain, options
}

const manifestCacheName = ".bindings.cache"

// loadManifest evaluates bindings.star in the project root. The parsed
// result is cached; the cache is used when the passed options match the
// cached ones.
func loadManifest(ctx context.Context, options map[string]string, noCache bool) (*manifest.Manifest, string, error) {
	root, err := pkg.GetProjectRoot()
	if err != nil {
		return nil, "", err
	}

	cachePath := filepath.Join(root, manifestCacheName)
	if !noCache {
		cachedOptions, cached, err := manifest.ReadCache(cachePath)
		if err == nil && cached != nil && optionsEqual(cachedOptions, options) {
			manifestPath := filepath.Join(root, "bindings.star")
			manifestInfo, mErr := os.Stat(manifestPath)
			cacheInfo, cErr := os.Stat(cachePath)
			if mErr == nil && cErr == nil && cacheInfo.ModTime().After(manifestInfo.ModTime()) {
				pkg.Log(ctx).Debug().Msg("using cached manifest")
				return cached, root, nil
			}
		}
	}

	result, _, err := manifest.Load(ctx, filepath.Join(root, "bindings.star"), root, options)
	if err != nil {
		return nil, "", err
	}

	err = manifest.WriteCache(cachePath, options, result)
	if err != nil {
		pkg.Log(ctx).Warn().Err(err).Msg("failed to write the manifest cache")
	}

	return result, root, nil
}

func optionsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for key, value := range a {
		if b[key] != value {
			return false
		}
	}
	return true
}
