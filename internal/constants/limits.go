// Package constants defines numerical limits.
package constants

// Limits and counts for various operations
const (
	// Maximum adapters in a single user configuration
	MaxAdapters = 20

	// Catalog page size used to turn skip into page numbers
	CatalogPageSize = 20

	// Maximum number of raw results to log per adapter for debugging
	MaxResultsToLog = 5

	// EZTV pages fetched per series lookup
	EZTVMaxPages = 3
)
