package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"bidsmap/internal/textutil"
)

// Locate finds stem+ext directly under root, falling back to a recursive search.
// When several nested copies exist, the first in natural path order wins.
// Unreadable subtrees are skipped; LocateSeries reports them.
func Locate(root, stem, ext string) (string, bool) {
	path, ok, _ := locate(root, stem+ext)
	return path, ok
}

// locate also returns the errors met while walking, joined.
func locate(root, name string) (string, bool, error) {
	direct := filepath.Join(root, name)
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, true, nil
	}

	var matches []string
	var walkErrs []error
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			walkErrs = append(walkErrs, err)
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		walkErrs = append(walkErrs, err)
	}
	walkErr := errors.Join(walkErrs...)
	if len(matches) == 0 {
		return "", false, walkErr
	}
	textutil.SortNatural(matches)
	return matches[0], true, walkErr
}

// SeriesFiles holds the on-disk files resolved for one stem.
type SeriesFiles struct {
	Stem string
	// Data lists data files found, in DataExtensions order.
	Data []string
	// Sidecar is the metadata file, empty when missing.
	Sidecar string
	// WalkErr joins the errors met while searching subdirectories.
	WalkErr error
}

// Files returns every resolved path, data files first.
func (f SeriesFiles) Files() []string {
	out := append([]string{}, f.Data...)
	if f.Sidecar != "" {
		out = append(out, f.Sidecar)
	}
	return out
}

// LocateSeries resolves all data variants and the sidecar for stem.
func LocateSeries(root, stem string) SeriesFiles {
	files := SeriesFiles{Stem: stem}
	var errs []error
	for _, ext := range DataExtensions {
		path, ok, err := locate(root, stem+ext)
		errs = append(errs, err)
		if ok {
			files.Data = append(files.Data, path)
		}
	}
	path, ok, err := locate(root, stem+ExtSidecar)
	errs = append(errs, err)
	if ok {
		files.Sidecar = path
	}
	files.WalkErr = errors.Join(errs...)
	return files
}

// Extension returns the recognized extension of path (".nii.gz", ".nii",
// ".json") or filepath.Ext for anything else.
func Extension(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{ExtNiftiGz, ExtNifti, ExtSidecar} {
		if len(base) > len(ext) && base[len(base)-len(ext):] == ext {
			return ext
		}
	}
	return filepath.Ext(base)
}
