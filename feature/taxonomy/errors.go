package taxonomy

import "fmt"

// MalformedTaxonomyError reports a catalog payload that does not have the
// expected nested tree shape. It is fatal for the whole sync run; the
// flattener performs no partial mutation before returning it.
type MalformedTaxonomyError struct {
	Reason string
	Err    error
}

func (e *MalformedTaxonomyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed taxonomy payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed taxonomy payload: %s", e.Reason)
}

func (e *MalformedTaxonomyError) Unwrap() error { return e.Err }

// InvalidBreadcrumbError reports a breadcrumb value that is not a string.
// It is fatal for the affected item only.
type InvalidBreadcrumbError struct {
	Value any
}

func (e *InvalidBreadcrumbError) Error() string {
	return fmt.Sprintf("breadcrumb must be a string, got %T", e.Value)
}

// CategoryCreationError reports a failed remote category creation. The
// failing segment is attached; segments after it were not attempted.
// Callers fall back to the configured root category and continue the run.
type CategoryCreationError struct {
	Segment string
	Err     error
}

func (e *CategoryCreationError) Error() string {
	return fmt.Sprintf("failed to create category %q: %v", e.Segment, e.Err)
}

func (e *CategoryCreationError) Unwrap() error { return e.Err }
