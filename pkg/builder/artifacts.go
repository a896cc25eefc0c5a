package builder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"

	"github.com/uplink-community/uplink-cgo/pkg"
	"github.com/uplink-community/uplink-cgo/pkg/manifest"
)

func hostOS() string {
	return runtime.GOOS
}

// BuildDir returns the absolute staging directory of the manifest's library.
func BuildDir(m *manifest.Manifest) string {
	return filepath.Join(m.Library.Source, m.Library.BuildDir)
}

// HeaderPath returns the absolute path of the staged API header.
func HeaderPath(m *manifest.Manifest) string {
	return filepath.Join(BuildDir(m), filepath.FromSlash(m.Library.Header))
}

// LibraryArtifact returns the library file the build is expected to
// produce for the given GOOS.
func LibraryArtifact(m *manifest.Manifest, goos string) string {
	name := "lib" + m.Library.Name
	if m.LinkFor(goos).Static {
		return filepath.Join(BuildDir(m), name+".a")
	}

	switch goos {
	case "windows":
		return filepath.Join(BuildDir(m), name+".dll")
	case "darwin":
		return filepath.Join(BuildDir(m), name+".dylib")
	default:
		return filepath.Join(BuildDir(m), name+".so")
	}
}

func copyFile(src, dest string) error {
	source, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", src)
	}
	defer source.Close()

	err = os.MkdirAll(filepath.Dir(dest), 0770)
	if err != nil {
		return eris.Wrapf(err, "Failed to create directory %s", filepath.Dir(dest))
	}

	handle, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}
	defer handle.Close()

	_, err = io.Copy(handle, source)
	if err != nil {
		return eris.Wrapf(err, "Failed to copy %s to %s", src, dest)
	}

	return handle.Close()
}

// StageArtifacts copies the manifest's header files into the build
// directory and verifies that the build produced the expected library.
// It returns the path of the staged API header.
func StageArtifacts(ctx context.Context, m *manifest.Manifest, goos string) (string, error) {
	source := m.Library.Source
	info, err := os.Stat(source)
	if err != nil {
		return "", eris.Wrapf(err, "The library source directory %s is missing; run fetch-deps first", source)
	}
	if !info.IsDir() {
		return "", eris.Errorf("%s is not a directory", source)
	}

	buildDir := BuildDir(m)
	for _, hc := range m.Copies {
		src := filepath.Join(source, filepath.FromSlash(hc.Src))
		dest := filepath.Join(buildDir, filepath.FromSlash(hc.Dest))

		_, err := os.Stat(src)
		if err != nil {
			if hc.Optional && eris.Is(err, os.ErrNotExist) {
				pkg.Log(ctx).Debug().Msgf("optional header %s not present", src)
				continue
			}
			return "", eris.Wrapf(err, "Failed to check header %s", src)
		}

		pkg.Log(ctx).Debug().Msgf("staging %s", hc.Dest)
		err = copyFile(src, dest)
		if err != nil {
			return "", err
		}
	}

	header := HeaderPath(m)
	_, err = os.Stat(header)
	if err != nil {
		return "", eris.Wrapf(err, "The build did not produce the API header %s", header)
	}

	artifact := LibraryArtifact(m, goos)
	_, err = os.Stat(artifact)
	if err != nil {
		return "", eris.Wrapf(err, "The build did not produce the library %s", artifact)
	}

	return header, nil
}
