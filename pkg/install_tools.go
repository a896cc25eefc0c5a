package pkg

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// InstallTools installs the blank imports of the repository's tools.go
// into the .tools directory.
func InstallTools() error {
	projectRoot, err := GetProjectRoot()
	if err != nil {
		return err
	}

	binPath := filepath.Join(projectRoot, ".tools")
	toolsFile := filepath.Join(projectRoot, "tools.go")

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, toolsFile, nil, parser.ImportsOnly)
	if err != nil {
		return eris.Wrapf(err, "Failed to parse %s", toolsFile)
	}

	for _, path := range f.Imports {
		dep := strings.Trim(path.Path.Value, `"`)
		PrintSubtask(dep)

		cmd := exec.Command("go", "install", dep)
		cmd.Dir = projectRoot
		cmd.Env = append(os.Environ(), fmt.Sprintf("GOBIN=%s", binPath))
		cmd.Stderr = os.Stderr
		cmd.Stdout = os.Stdout
		err := cmd.Run()
		if err != nil {
			return eris.Wrapf(err, "Failed to install %s", dep)
		}
	}

	return nil
}
