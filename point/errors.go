package point

import "fmt"

// IngestError is returned when the dataset source cannot be opened or read.
//
// The original underlying error can be accessed via errors.Unwrap.
type IngestError struct {
	Source string
	cause  error
}

func (e *IngestError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("ingest failed: %v", e.cause)
	}
	return fmt.Sprintf("ingest %q failed: %v", e.Source, e.cause)
}

func (e *IngestError) Unwrap() error { return e.cause }
