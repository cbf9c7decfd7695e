// Package source enumerates imaging series on disk.
//
// Scan walks a source root for data files, groups bare and compressed
// variants under one stem, and returns records in natural filename order so
// downstream run counters advance the way an operator reads the folder.
// Locate resolves a mapped stem back to its files for placement.
package source
