// Package ir provides the value types shared by the schema, query and DDL
// packages.
//
// This package contains leaf types only. All other internal packages may
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Parameter values are sealed IRValue types, never bare interface{}
//   - NO float types (Spanner FLOAT64 is not a supported column type)
//   - Canonical JSON is the only serialization used for fingerprints
package ir
