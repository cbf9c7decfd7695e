// Package textutil provides text helpers shared by the scanner, classifier, and
// naming engine.
//
// The primary use cases are:
//   - Natural ordering of filenames so series 0002 sorts before 0010
//   - Sanitizing labels (task names, subject IDs) into filesystem-safe tokens
package textutil
