// Package main hosts the bidsmap CLI entrypoint and command graph.
//
// generate scans a folder of scanner series and proposes a mapping file,
// place materializes a mapping into a destination tree, config scaffolds and
// checks the TOML tool configuration, and journal reads back recorded place
// passes. Configuration and logger setup live in commandContext so each
// command only wires flags to the internal packages.
package main
