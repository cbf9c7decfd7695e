// Package naming synthesizes destination names for flat mappings.
//
// An Engine owns one RunCounterTable for the lifetime of a placement pass.
// Resolve is called once per series and the returned Name is reused for the
// data file and its sidecar so both share a run number.
package naming
