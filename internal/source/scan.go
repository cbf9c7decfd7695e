package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bidsmap/internal/faults"
	"bidsmap/internal/textutil"
)

// Data and sidecar extensions, longest first so ".nii.gz" wins over ".nii".
const (
	ExtNiftiGz = ".nii.gz"
	ExtNifti   = ".nii"
	ExtSidecar = ".json"
)

// DataExtensions lists recognized data file extensions in preference order.
var DataExtensions = []string{ExtNiftiGz, ExtNifti}

// SeriesRecord is one scanner acquisition found under the source root.
type SeriesRecord struct {
	// Stem is the filename without data extension; the series identifier.
	Stem string
	// Dir is the directory holding the first data file seen for Stem.
	Dir string
	// Extensions holds every data extension present for Stem, in
	// DataExtensions order.
	Extensions []string
}

// FileName returns the preferred data filename for the record.
func (r SeriesRecord) FileName() string {
	if len(r.Extensions) == 0 {
		return r.Stem
	}
	return r.Stem + r.Extensions[0]
}

// Has reports whether ext was seen for the record.
func (r SeriesRecord) Has(ext string) bool {
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// SeriesID strips a data or sidecar extension from name.
func SeriesID(name string) string {
	for _, ext := range []string{ExtNiftiGz, ExtNifti, ExtSidecar} {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

func dataExtension(name string) (string, bool) {
	for _, ext := range DataExtensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return ext, true
		}
	}
	return "", false
}

// Scan walks root recursively, collects data files, and returns one record per
// stem in natural order of the file names.
func Scan(root string) ([]SeriesRecord, error) {
	if err := RequireDir(root, "source"); err != nil {
		return nil, err
	}

	type hit struct {
		name string
		dir  string
		ext  string
	}
	var hits []hit
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext, ok := dataExtension(d.Name())
		if !ok {
			return nil
		}
		hits = append(hits, hit{name: d.Name(), dir: filepath.Dir(path), ext: ext})
		return nil
	})
	if err != nil {
		return nil, faults.Wrap(faults.ErrPath, "source", "scan", root, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if c := textutil.NaturalCompare(hits[i].name, hits[j].name); c != 0 {
			return c < 0
		}
		return hits[i].dir < hits[j].dir
	})

	records := make([]SeriesRecord, 0, len(hits))
	index := make(map[string]int, len(hits))
	for _, h := range hits {
		stem := strings.TrimSuffix(h.name, h.ext)
		if pos, ok := index[stem]; ok {
			if !records[pos].Has(h.ext) {
				records[pos].Extensions = orderedExtensions(append(records[pos].Extensions, h.ext))
			}
			continue
		}
		index[stem] = len(records)
		records = append(records, SeriesRecord{Stem: stem, Dir: h.dir, Extensions: []string{h.ext}})
	}
	return records, nil
}

func orderedExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, candidate := range DataExtensions {
		for _, ext := range exts {
			if ext == candidate {
				out = append(out, ext)
				break
			}
		}
	}
	return out
}

// RequireDir returns a path error unless path exists and is a directory.
func RequireDir(path, role string) error {
	if strings.TrimSpace(path) == "" {
		return faults.Wrap(faults.ErrPath, role, "validate", role+" directory is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return faults.Wrap(faults.ErrPath, role, "validate", role+" directory not found: "+path, err)
	}
	if !info.IsDir() {
		return faults.Wrap(faults.ErrPath, role, "validate", role+" path is not a directory: "+path, nil)
	}
	return nil
}
