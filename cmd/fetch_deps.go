package cmd

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"
	"gopkg.in/yaml.v3"

	"github.com/uplink-community/uplink-cgo/pkg"
)

// depSpec is one entry of DEPS.yml. Condition and Rejections are
// comma-separated variable names that must (or must not) be set for the
// entry to apply on this host.
type depSpec struct {
	Condition  string `yaml:"if,omitempty"`
	Rejections string `yaml:"ifNot,omitempty"`
	URL        string
	Dest       string
	Sha256     string
	Strip      int
	MarkExec   []string `yaml:"markExec,omitempty"`
}

type depConfig struct {
	Vars map[string]string
	Deps map[string]depSpec
}

var fetchDepsCmd = &cobra.Command{
	Use:   "fetch-deps",
	Short: "Downloads and unpacks the native dependencies",
	Long: `Downloads and unpacks the dependencies listed in DEPS.yml. This includes
the uplink-c source checkout that the build command compiles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := cmd.Flags().GetBool("update")
		if err != nil {
			return err
		}

		pkg.PrintTask("Loading config")
		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		cfg, cfgData, stamps, err := getDepConfig(root)
		if err != nil {
			return err
		}

		pkg.PrintTask("Downloading dependencies")
		err = downloadAndExtract(cfg, cfgData, stamps, root, update)

		stampPath := filepath.Join(root, "DEPS.stamps")
		stampData, jErr := json.Marshal(stamps)
		if jErr != nil {
			pkg.PrintError(jErr.Error())
		}

		jErr = os.WriteFile(stampPath, stampData, 0660)
		if jErr != nil {
			pkg.PrintError(jErr.Error())
		}

		pkg.PrintTask("Done")

		return err
	},
}

func init() {
	rootCmd.AddCommand(fetchDepsCmd)
	fetchDepsCmd.Flags().BoolP("update", "u", false, "update the checksums in DEPS.yml")
}

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		// progress bars only clutter CI logs
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}

func getDepConfig(projectRoot string) (depConfig, string, map[string]string, error) {
	var cfg depConfig
	cfgPath := filepath.Join(projectRoot, "DEPS.yml")
	cfgData, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfg, "", nil, eris.Wrapf(err, "Could not open file %s.", cfgPath)
	}

	err = yaml.Unmarshal(cfgData, &cfg)
	if err != nil {
		return cfg, "", nil, eris.Wrapf(err, "Failed to parse %s.", cfgPath)
	}

	stamps := map[string]string{}
	stampPath := filepath.Join(projectRoot, "DEPS.stamps")
	stampData, err := os.ReadFile(stampPath)
	if err != nil {
		if !eris.Is(err, os.ErrNotExist) {
			return cfg, "", nil, eris.Wrapf(err, "Failed to read stamps file %s.", stampPath)
		}
	} else {
		err = json.Unmarshal(stampData, &stamps)
		if err != nil {
			return cfg, "", nil, eris.Wrapf(err, "Failed to parse JSON file %s.", stampPath)
		}
	}

	return cfg, string(cfgData), stamps, nil
}

var depVarMatcher = regexp.MustCompile(`\{([A-Z0-9_]+)\}`)

// evalDepConditions substitutes variable placeholders in the URL and
// evaluates the if/ifNot lists. It returns false when the entry doesn't
// apply on this host.
func evalDepConditions(meta *depSpec, vars map[string]string) bool {
	meta.URL = depVarMatcher.ReplaceAllStringFunc(meta.URL, func(varName string) string {
		return vars[varName[1:len(varName)-1]]
	})

	for _, condition := range strings.Split(meta.Condition, ",") {
		if condition == "" {
			continue
		}

		value, ok := vars[strings.TrimSpace(condition)]
		if !ok || value == "" {
			return false
		}
	}

	for _, condition := range strings.Split(meta.Rejections, ",") {
		if condition == "" {
			continue
		}

		value, ok := vars[strings.TrimSpace(condition)]
		if ok && value != "" {
			return false
		}
	}
	return true
}

func downloadDep(client *http.Client, meta depSpec) (*os.File, string, error) {
	handle, err := os.CreateTemp("", "uplink-cgo-dl")
	if err != nil {
		return nil, "", eris.Wrap(err, "Failed to create a download buffer file")
	}

	resp, err := client.Get(meta.URL)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to start download for %s", meta.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", eris.Errorf("Download of %s failed with status %s", meta.URL, resp.Status)
	}

	hash := sha256.New()
	bar := getProgressBar(resp.ContentLength, "     download")
	_, err = io.Copy(io.MultiWriter(handle, hash, bar), resp.Body)
	bar.Finish()
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed during download of %s", meta.URL)
	}

	return handle, hex.EncodeToString(hash.Sum(nil)), nil
}

func downloadAndExtract(cfg depConfig, cfgData string, stamps map[string]string, projectRoot string, update bool) error {
	client := &http.Client{
		Timeout: time.Minute * 30,
	}

	vars := cfg.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	vars[runtime.GOARCH] = "true"
	vars[runtime.GOOS] = "true"
	if os.Getenv("CI") == "true" {
		vars["ci"] = "true"
	}

	changes := map[string]string{}
	for name, meta := range cfg.Deps {
		// conditions are evaluated even in update mode because they also
		// substitute the URL placeholders
		skip := !evalDepConditions(&meta, vars)
		if skip && !update {
			continue
		}

		destPath := filepath.Join(projectRoot, meta.Dest)
		destInfo, err := os.Stat(destPath)
		destExists := err == nil

		stampToken := meta.URL + "#" + meta.Sha256
		stamp, ok := stamps[name]
		if ok && stampToken == stamp && destExists {
			continue
		}

		pkg.PrintSubtask(name + ":  " + meta.URL)
		if meta.Sha256 == "" && !update {
			return eris.Errorf("Dependency %s doesn't have a checksum", name)
		}

		handle, digest, err := downloadDep(client, meta)
		if handle != nil {
			defer func() {
				handle.Close()
				os.Remove(handle.Name())
			}()
		}
		if err != nil {
			return err
		}

		if digest != meta.Sha256 {
			if !update {
				return eris.Errorf("Checksum check failed for %s", name)
			}

			fmt.Println("      Updating checksum")
			changes[name] = digest
		}

		if skip {
			continue
		}

		if destExists {
			pkg.PrintSubtask(fmt.Sprintf("Remove %s", destPath))
			if destInfo.IsDir() {
				err = os.RemoveAll(destPath)
			} else {
				err = os.Remove(destPath)
			}
			if err != nil {
				return err
			}
		}

		extractor, err := getExtractor(meta.URL)
		if err != nil {
			return err
		}

		_, err = handle.Seek(0, io.SeekStart)
		if err != nil {
			return err
		}

		bar := getProgressBar(-1, "      extract")
		err = extractor(handle, bar, projectRoot, meta)
		bar.Finish()
		if err != nil {
			return err
		}

		if runtime.GOOS != "windows" {
			// .zip files don't carry permissions which means we have to manually fix permissions for binaries in .zip files
			for _, binPath := range meta.MarkExec {
				binPath = filepath.Join(projectRoot, meta.Dest, binPath)
				fi, err := os.Stat(binPath)
				if err != nil {
					return eris.Wrapf(err, "Failed to read permissions for %s", binPath)
				}

				err = os.Chmod(binPath, fi.Mode()|0700)
				if err != nil {
					return eris.Wrapf(err, "Failed to mark %s as executable", binPath)
				}
			}
		}

		stamps[name] = stampToken
	}

	if update && len(changes) > 0 {
		pkg.PrintTask("Updating DEPS.yml")
		generated := cfgData
		for name, newChecksum := range changes {
			pos := strings.Index(generated, name+":\n")
			if pos == -1 {
				return eris.Errorf("Failed to find the section for %s!", name)
			}

			oldChecksum := "sha256: " + cfg.Deps[name].Sha256
			subPos := strings.Index(generated[pos:], oldChecksum)
			if subPos == -1 {
				fmt.Printf("     Couldn't find the checksum section for %s.\n", name)
				continue
			}

			start := pos + subPos + len("sha256: ")
			end := start + len(cfg.Deps[name].Sha256)
			generated = generated[:start] + newChecksum + generated[end:]
		}

		err := os.WriteFile(filepath.Join(projectRoot, "DEPS.yml"), []byte(generated), 0660)
		if err != nil {
			return eris.Wrap(err, "Failed to write DEPS.yml")
		}
	}

	return nil
}

type archiveExtractor func(*os.File, *progressbar.ProgressBar, string, depSpec) error

// stripEntryPath normalizes an archive entry path and strips the
// configured number of leading elements.
func stripEntryPath(destPath, item string, ds depSpec) (string, bool) {
	pathParts := strings.Split(filepath.Clean(filepath.FromSlash(item)), string(filepath.Separator))
	if len(pathParts) <= ds.Strip {
		return "", false
	}

	dest := filepath.Join(destPath, strings.Join(pathParts[ds.Strip:], string(filepath.Separator)))
	if dest == destPath {
		return "", false
	}
	return dest, true
}

func createExtractorDest(destPath, item string, ds depSpec) (*os.File, string, error) {
	dest, ok := stripEntryPath(destPath, item, ds)
	if !ok {
		return nil, "", nil
	}

	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, 0770)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create directory %s", destParent)
	}

	destHandle, err := os.Create(dest)
	if err != nil {
		return nil, "", eris.Wrapf(err, "Failed to create file %s", dest)
	}

	return destHandle, dest, nil
}

func getExtractor(url string) (archiveExtractor, error) {
	switch {
	case strings.HasSuffix(url, ".zip"):
		return extractZip, nil
	case strings.HasSuffix(url, ".tar.gz"):
		return func(f *os.File, bar *progressbar.ProgressBar, projectRoot string, ds depSpec) error {
			reader, err := gzip.NewReader(f)
			if err != nil {
				return err
			}
			defer reader.Close()

			return extractTar(reader, bar, projectRoot, ds)
		}, nil
	case strings.HasSuffix(url, ".tar.bz2"):
		return func(f *os.File, bar *progressbar.ProgressBar, projectRoot string, ds depSpec) error {
			return extractTar(bzip2.NewReader(f), bar, projectRoot, ds)
		}, nil
	case strings.HasSuffix(url, ".tar.xz"):
		return func(f *os.File, bar *progressbar.ProgressBar, projectRoot string, ds depSpec) error {
			reader, err := xz.NewReader(f)
			if err != nil {
				return err
			}

			return extractTar(reader, bar, projectRoot, ds)
		}, nil
	}

	return nil, eris.Errorf("Archive format of %s is not supported", url)
}

func extractZip(f *os.File, bar *progressbar.ProgressBar, projectRoot string, ds depSpec) error {
	stat, err := f.Stat()
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(f, stat.Size())
	if err != nil {
		return err
	}

	destPath := filepath.Join(projectRoot, ds.Dest)
	for _, item := range archive.File {
		if strings.HasSuffix(item.Name, "/") {
			continue
		}

		destHandle, dest, err := createExtractorDest(destPath, item.Name, ds)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		itemHandle, err := item.Open()
		if err != nil {
			destHandle.Close()
			return eris.Wrap(err, "Failed to open archive entry")
		}

		_, err = io.Copy(io.MultiWriter(destHandle, bar), itemHandle)
		itemHandle.Close()
		destHandle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to extract %s to %s", item.Name, dest)
		}
	}

	return nil
}

func extractTar(r io.Reader, bar *progressbar.ProgressBar, projectRoot string, ds depSpec) error {
	archive := tar.NewReader(r)
	destPath := filepath.Join(projectRoot, ds.Dest)

	for {
		item, err := archive.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return eris.Wrap(err, "Failed to read archive entry")
		}

		fi := item.FileInfo()
		if fi.IsDir() {
			continue
		}

		if item.Typeflag == tar.TypeSymlink {
			dest, ok := stripEntryPath(destPath, item.Name, ds)
			if !ok {
				continue
			}

			err = os.MkdirAll(filepath.Dir(dest), 0770)
			if err != nil {
				return eris.Wrapf(err, "Failed to create directory %s", filepath.Dir(dest))
			}

			os.Remove(dest)
			err = os.Symlink(item.Linkname, dest)
			if err != nil {
				return eris.Wrapf(err, "Failed to create symlink %s pointing to %s", dest, item.Linkname)
			}
			continue
		}

		destHandle, dest, err := createExtractorDest(destPath, item.Name, ds)
		if err != nil {
			return err
		}
		if destHandle == nil {
			continue
		}

		_, err = io.Copy(io.MultiWriter(destHandle, bar), archive)
		destHandle.Close()
		if err != nil {
			return eris.Wrapf(err, "Failed to extract %s to %s", item.Name, dest)
		}

		os.Chmod(dest, fi.Mode())
	}

	return nil
}
