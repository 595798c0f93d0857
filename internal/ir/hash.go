package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainCatalog   = "strata/catalog/v1"
	DomainStatement = "strata/statement/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CatalogFingerprint hashes an ordered list of DDL statements.
// Two registries that emit the same DDL in the same order share a
// fingerprint regardless of how their definitions were loaded.
func CatalogFingerprint(statements []string) (string, error) {
	obj := IRObject{
		"version":    IRString(CatalogVersion),
		"statements": toStringArray(statements),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CatalogFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCatalog, canonical), nil
}

// StatementFingerprint hashes query text together with its parameter types.
// Parameter values are excluded so every execution of the same query shape
// shares a fingerprint.
func StatementFingerprint(sql string, paramTypes map[string]string) (string, error) {
	types := make(IRObject, len(paramTypes))
	for name, typ := range paramTypes {
		types[name] = IRString(typ)
	}
	obj := IRObject{
		"sql":         IRString(sql),
		"param_types": types,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StatementFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// MustCatalogFingerprint is like CatalogFingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCatalogFingerprint(statements []string) string {
	fp, err := CatalogFingerprint(statements)
	if err != nil {
		panic(err)
	}
	return fp
}

func toStringArray(ss []string) IRArray {
	arr := make(IRArray, len(ss))
	for i, s := range ss {
		arr[i] = IRString(s)
	}
	return arr
}
