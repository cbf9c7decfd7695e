package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Method selects how a source file is materialized at its destination.
type Method string

const (
	MethodCopy    Method = "copy"
	MethodLink    Method = "link"
	MethodSymlink Method = "symlink"
)

// ParseMethod validates a method name.
func ParseMethod(value string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(value))); m {
	case MethodCopy, MethodLink, MethodSymlink:
		return m, nil
	default:
		return "", fmt.Errorf("unknown method %q (want copy, link or symlink)", value)
	}
}

// Materialize places src at dst using method, creating parent directories.
// Link and symlink replace any existing entry at dst; copy overwrites it.
func Materialize(method Method, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	switch method {
	case MethodCopy:
		return CopyFile(src, dst)
	case MethodLink:
		return LinkFile(src, dst)
	case MethodSymlink:
		return SymlinkFile(src, dst)
	default:
		return fmt.Errorf("unknown method %q", method)
	}
}

// CopyFile streams src to dst and carries over the permission bits and
// modification time. A destination that is a symlink or the same file as src
// is removed first so the source is never truncated.
func CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if dstInfo, err := os.Lstat(dst); err == nil {
		if dstInfo.Mode()&fs.ModeSymlink != 0 || os.SameFile(srcInfo, dstInfo) {
			if err := os.Remove(dst); err != nil {
				return fmt.Errorf("remove existing destination: %w", err)
			}
		}
	}
	if err := CopyFileMode(src, dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod destination: %w", err)
	}
	mtime := srcInfo.ModTime()
	if err := os.Chtimes(dst, mtime, mtime); err != nil {
		return fmt.Errorf("set destination times: %w", err)
	}
	return nil
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// LinkFile hard-links src at dst, replacing an existing entry.
func LinkFile(src, dst string) error {
	if err := removeExisting(dst); err != nil {
		return err
	}
	return os.Link(src, dst)
}

// SymlinkFile creates a relative symlink at dst pointing to src, replacing an
// existing entry.
func SymlinkFile(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	target, err := filepath.Rel(filepath.Dir(absDst), absSrc)
	if err != nil {
		return fmt.Errorf("relative link target: %w", err)
	}
	if err := removeExisting(dst); err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("destination is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove existing destination: %w", err)
	}
	return nil
}
