// Package mapping models the series-to-role mapping file.
//
// A Mapping is one of two layouts, fixed when it is built or loaded:
//
//	nested: anat: {label: [stem]}, func: {task: {run: {bold, sbref}}}, fmap: {type: {role: stem}}
//	flat:   anat: [stem], func: [stem], fmap: [stem]
//
// Files are YAML (.yaml, .yml) or JSON (.json). Both formats decode through an
// ordered tree so the declared key order survives a load and save, and
// duplicate keys are rejected instead of silently collapsed.
package mapping
