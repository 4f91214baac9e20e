// Package internal defines constants shared across the mtc
// executables.
package internal

// Version is the current version of the mtc tools.
const Version = "0.1.0"
