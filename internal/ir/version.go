package ir

// Version constants for fingerprints and emitted artifacts.
const (
	// CatalogVersion is bumped whenever DDL rendering changes in a way that
	// alters fingerprints for an unchanged catalog.
	CatalogVersion = "1"

	// ToolVersion is the strata release version.
	ToolVersion = "0.1.0"
)
