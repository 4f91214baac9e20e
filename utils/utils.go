// Package utils provides the small filesystem helpers shared by the
// mtc executables.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes buf to a new file at filename. It refuses to
// overwrite an existing file.
func WriteFile(filename string, buf []byte, perm os.FileMode) error {
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("Can't write file. File '%s' already exists\n", filename)
	}
	return os.WriteFile(filename, buf, perm)
}

// ResolvePath returns file unchanged when it is absolute; otherwise it
// joins file to the directory of other.
func ResolvePath(file, other string) string {
	if !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(other), file)
	}
	return file
}
