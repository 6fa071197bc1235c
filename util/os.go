package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MkExclDir creates a new child directory of parent that did not exist prior to this invocation.
//
// Stem is the desired name of the directory, usually taken from an archive so it must be a single path element. The
// actual directory might have a numeric suffix such as stem-1, stem-2, etc. The return value "name" is the path to the
// newly created directory.
func MkExclDir(parent, stem string, perm os.FileMode) (name string, err error) {
	if stem == "" || stem == "." || stem == ".." || strings.ContainsAny(stem, `/\`) {
		return "", fmt.Errorf(`invalid directory name "%s"`, stem)
	}

	for i := 0; ; i++ {
		name = filepath.Join(parent, stem)
		if i > 0 {
			name += "-" + strconv.Itoa(i)
		}

		if err = os.Mkdir(name, perm); err == nil {
			return name, nil
		} else if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create directory error: %w", err)
		}
	}
}
