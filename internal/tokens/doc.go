// Package tokens extracts naming tokens from series stems.
//
// Every extractor is a pure function over a normalized stem (see Normalize)
// and evaluates an ordered pattern table: the first entry that matches wins.
// Matching is boundary safe, meaning a pattern never matches when a letter or
// digit sits directly before or after it. Underscores, dashes, dots and spaces
// count as separators.
package tokens
