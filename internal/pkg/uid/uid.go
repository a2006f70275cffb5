// Package uid provides unique identifier generators.
//
// Two flavors are available behind small interfaces: NumberID for sortable
// numeric identifiers (snowflake) used as database primary keys, and StringID
// for opaque string identifiers (UUID) used for token and correlation IDs.
package uid

// NumberID generates unique numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
