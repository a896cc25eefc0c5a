package pkg

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
)

// GetProjectRoot walks up from the working directory until it finds the
// binding manifest. The .git check is a fallback for commands that run
// before the manifest exists (fetch-deps on a fresh checkout).
func GetProjectRoot() (string, error) {
	path, err := os.Getwd()
	if err != nil {
		return "", eris.Wrap(err, "Failed to retrieve the current working directory")
	}

	for {
		for _, marker := range []string{"bindings.star", ".git"} {
			_, err := os.Stat(filepath.Join(path, marker))
			if err == nil {
				return path, nil
			}

			if !eris.Is(err, os.ErrNotExist) {
				return "", eris.Wrapf(err, "Error occurred while searching for the project root in %s", path)
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	return "", eris.New("Project root not found")
}

func PrintTask(msg string) {
	colorstring.Printf("[blue][bold]==>[default] %s\n", msg)
}

func PrintSubtask(msg string) {
	colorstring.Printf("[green][bold]  ->[reset] %s\n", msg)
}

func PrintError(msg string) {
	colorstring.Printf("[red][bold]  ->[reset] %s\n", msg)
}
