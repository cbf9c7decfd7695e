// Package classify sorts scanned series into mapping sections.
//
// Rules run in a fixed priority order and the first match wins:
//
//  1. skip patterns (localizers, scouts, configured extras) drop the series
//  2. the paired-reference pattern holds the series for the next BOLD run
//  3. field map
//  4. anatomical
//  5. functional
//
// A series matching nothing is left out without comment. Functional matches
// receive a task label and a per-task run label, field maps a role.
package classify
