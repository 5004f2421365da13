package document

import "errors"

// Sentinel kinds for document extraction errors.
var (
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrExtract         = errors.New("document text extraction failed")
)
