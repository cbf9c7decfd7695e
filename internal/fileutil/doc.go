// Package fileutil materializes source files at destination paths by copy,
// hard link or relative symlink.
package fileutil
