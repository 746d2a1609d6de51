package discovery

import (
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher/ignorefile"
)

// ignoreNames are the ignore files consulted in a checked directory.
// .nuspecignore wins; .nugetignore is accepted for repos that already
// keep one next to their packaging scripts.
var ignoreNames = []string{
	".nuspecignore",
	".nugetignore",
}

// LoadIgnore reads patterns from the first existing ignore file in dir.
// Returns nil if no ignore file exists. An existing empty file is valid and
// stops the lookup.
func LoadIgnore(dir string) ([]string, error) {
	for _, name := range ignoreNames {
		patterns, err := loadIgnoreFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return patterns, nil
	}
	return nil, nil
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ignorefile.ReadAll(f)
}
