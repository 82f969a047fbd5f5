// Package util provides small shared helpers: string sanitization for
// parameter values, name normalization for stack/branch identifiers, and
// generic convenience functions.
package util
