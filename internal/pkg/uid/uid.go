// Package uid generates identifiers: numeric snowflake IDs for records and
// UUID strings for correlation and delivery IDs.
package uid

// NumberID generates unique, roughly time-ordered int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
