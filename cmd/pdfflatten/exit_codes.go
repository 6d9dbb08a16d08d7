package main

import (
	"errors"
	"os"

	pdfflatten "github.com/alnah/go-pdfflatten"
	"github.com/alnah/go-pdfflatten/internal/config"
)

// Exit codes for the pdfflatten CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful run
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied, unwritable output
	ExitDocument = 4 // Document open/render errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Document errors (exit 4)
	if errors.Is(err, pdfflatten.ErrDocumentOpen) ||
		errors.Is(err, pdfflatten.ErrDocumentClosed) ||
		errors.Is(err, pdfflatten.ErrPageOutOfRange) ||
		errors.Is(err, pdfflatten.ErrPageRender) {
		return ExitDocument
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, pdfflatten.ErrWriteOutput) ||
		errors.Is(err, pdfflatten.ErrEncode) ||
		errors.Is(err, pdfflatten.ErrAssemble) ||
		errors.Is(err, ErrInputMissing) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigTooLarge) ||
		errors.Is(err, pdfflatten.ErrInvalidDPI) ||
		errors.Is(err, pdfflatten.ErrInvalidFormat) ||
		errors.Is(err, pdfflatten.ErrInvalidWatermarkSize) {
		return ExitUsage
	}

	return ExitGeneral
}
