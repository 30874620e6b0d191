package csvio

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Sources is the ordered, immutable list of streams behind one input
// location. It is resolved once and handed to both reader passes so that row
// numbering cannot drift between them.
type Sources struct {
	fsys  fs.FS
	paths []string
}

// ListSources resolves name to a single file or, for a directory, to its
// non-hidden files sorted by name. Missing or empty inputs are errors.
func ListSources(fsys fs.FS, name string) (Sources, error) {
	st, err := fs.Stat(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Sources{}, &FormatError{Kind: ErrNotFound, Path: name, Err: err}
		}
		return Sources{}, err
	}
	if !st.IsDir() {
		if st.Size() == 0 {
			return Sources{}, &FormatError{Kind: ErrEmptyInput, Path: name}
		}
		return Sources{fsys: fsys, paths: []string{name}}, nil
	}

	ents, err := fs.ReadDir(fsys, name)
	if err != nil {
		return Sources{}, err
	}
	paths := make([]string, 0, len(ents))
	var total int64
	for _, e := range ents {
		if e.IsDir() || isHidden(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return Sources{}, err
		}
		total += info.Size()
		paths = append(paths, path.Join(name, e.Name()))
	}
	if len(paths) == 0 {
		return Sources{}, &FormatError{Kind: ErrEmptyInput, Path: name, Detail: "no data files"}
	}
	if total == 0 {
		return Sources{}, &FormatError{Kind: ErrEmptyInput, Path: name, Detail: "no data"}
	}
	slices.Sort(paths)
	return Sources{fsys: fsys, paths: paths}, nil
}

func (s Sources) Len() int { return len(s.paths) }

// Paths returns a copy of the ordered stream names.
func (s Sources) Paths() []string { return slices.Clone(s.paths) }

// isHidden matches the marker and checksum files written next to data parts.
func isHidden(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}
