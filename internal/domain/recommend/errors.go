package recommend

import "errors"

// ErrVectorise is returned when the TF-IDF model cannot be built.
var ErrVectorise = errors.New("tf-idf vectorisation failed")
