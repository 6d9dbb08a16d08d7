package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/alnah/go-pdfflatten/internal/fileutil"
)

// Sentinel errors for input discovery.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrInputMissing = errors.New("input not found")
)

// discoverInputs expands the positional arguments into a deduplicated,
// sorted list of PDF files. A directory argument contributes every *.pdf
// directly inside it.
func discoverInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	seen := make(map[string]bool)
	var inputs []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			inputs = append(inputs, path)
		}
	}

	for _, arg := range args {
		switch {
		case fileutil.DirExists(arg):
			matches, err := filepath.Glob(filepath.Join(arg, "*.pdf"))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInputMissing, arg, err)
			}
			for _, m := range matches {
				if fileutil.FileExists(m) {
					add(m)
				}
			}
		case fileutil.FileExists(arg):
			add(arg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, arg)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no PDF files found", ErrNoInput)
	}

	sort.Strings(inputs)
	return inputs, nil
}
