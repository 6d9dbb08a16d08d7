package pdfflatten

import "errors"

// Sentinel errors for library operations.
var (
	ErrDocumentOpen   = errors.New("failed to open document")
	ErrDocumentClosed = errors.New("document is closed")
	ErrPageOutOfRange = errors.New("page index out of range")
	ErrPageRender     = errors.New("page rendering failed")
	ErrEncode         = errors.New("image encoding failed")
	ErrAssemble       = errors.New("document assembly failed")
	ErrWriteOutput    = errors.New("failed to write output file")
	ErrNoDocument     = errors.New("no document loaded")

	// Options validation errors.
	ErrInvalidDPI           = errors.New("invalid DPI")
	ErrInvalidFormat        = errors.New("invalid export format")
	ErrInvalidWatermarkSize = errors.New("invalid watermark size")
)
