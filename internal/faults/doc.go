// Package faults defines the error markers shared by the scanner, mapping
// codec, and placement driver.
//
// Two classes exist. Configuration and path failures are fatal and are always
// raised before anything is written. Missing series files, classification
// ambiguities, and rename collisions are recoverable: callers log them as
// warnings and keep going. Wrap attaches component and operation context while
// keeping the marker reachable through errors.Is.
package faults
