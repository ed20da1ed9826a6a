package maintenance

import "fmt"

// InvalidDateError is returned when an explicitly requested maintenance
// date does not match YYYY-MM-DD. It aborts the whole run before any date
// is touched.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("maintenance: invalid date %q (want YYYY-MM-DD)", e.Input)
}

// DayError is a failure isolated to a single date's processing. The date
// stays unmarked in the watermark and is retried on the next run.
type DayError struct {
	Date  string
	Stage string
	Cause error
}

func (e *DayError) Error() string {
	return fmt.Sprintf("maintenance: %s failed at %s: %v", e.Date, e.Stage, e.Cause)
}

func (e *DayError) Unwrap() error { return e.Cause }
