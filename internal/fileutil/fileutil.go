// Package fileutil provides file and path utility functions.
package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Stem returns the base name of path without its extension.
//
// Examples:
//   - "/docs/report.pdf" -> "report"
//   - "scan.v2.pdf" -> "scan.v2"
//   - "README" -> "README"
//   - ".config" -> ".config"
func Stem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// Dotfiles: Ext eats the whole name, keep it instead.
		return base
	}
	return stem
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
