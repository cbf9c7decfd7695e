// Package placement materializes a loaded mapping into a destination tree.
//
// A Driver walks mapping entries anat, func then fmap in declared order,
// resolves each stem to its data files and sidecar under the source root,
// names the destination (nested layouts use fixed entity names, flat layouts
// ask the naming engine) and hands the pair to fileutil. Missing files,
// destination clashes and per-file failures are logged and counted; they never
// stop the pass.
//
// Outside dry-run, a pass holds an advisory lock keyed by the destination root
// and may record its work in the journal. Dry-run touches nothing on disk.
package placement
