package resume

import "errors"

// Sentinel kinds for résumé parsing errors.
var (
	ErrEntityExtraction = errors.New("entity extraction failed")
)
