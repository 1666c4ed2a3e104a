// Package layout reads Android layout resources for the information the
// migration needs: declared view ids and <include> placements.
package layout

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dejo1307/viewbindmigrate/internal/naming"
)

const androidNS = "http://schemas.android.com/apk/res/android"

// Include is one <include> element of a layout.
type Include struct {
	Layout string // referenced layout name, without "@layout/"
	ID     string // raw id attribute, empty when absent
}

// Document is the parsed content of one layout file.
type Document struct {
	IDs      []string // raw id attribute values in declaration order
	Includes []Include
}

// ParseDocument reads a layout document. On a syntax error it returns the
// part read so far together with the error.
func ParseDocument(r io.Reader) (*Document, error) {
	doc := &Document{}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		if err != nil {
			return doc, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var inc *Include
		if start.Name.Local == "include" {
			inc = &Include{}
		}
		for _, a := range start.Attr {
			switch {
			case a.Name.Local == "id" && isAndroidSpace(a.Name.Space):
				doc.IDs = append(doc.IDs, a.Value)
				if inc != nil {
					inc.ID = a.Value
				}
			case a.Name.Local == "layout" && a.Name.Space == "" && inc != nil:
				inc.Layout = strings.TrimPrefix(a.Value, naming.LayoutRefPrefix)
			}
		}
		if inc != nil && inc.Layout != "" {
			doc.Includes = append(doc.Includes, *inc)
		}
	}
}

// isAndroidSpace accepts the resolved android namespace, an undeclared
// "android" prefix, and bare attributes.
func isAndroidSpace(space string) bool {
	return space == androidNS || space == "android" || space == ""
}

// IncludeStatus is the outcome of looking up an <include> placement.
type IncludeStatus int

const (
	// IncludeMissing means the host layout has no <include> of the layout.
	IncludeMissing IncludeStatus = iota
	// IncludeNoID means the placement exists but carries no id.
	IncludeNoID
	// IncludeFound means the placement has an id.
	IncludeFound
)

func (s IncludeStatus) String() string {
	switch s {
	case IncludeNoID:
		return "include-without-id"
	case IncludeFound:
		return "found"
	default:
		return "missing"
	}
}

// Index holds the parsed layouts of one conversion. Every layout is read at
// most once, when the index is loaded.
type Index struct {
	dir  string
	docs map[string]*Document
	errs map[string]error
}

// Load parses the named layouts from dir. Unreadable or malformed files
// contribute no information; their errors are available from Errors.
func Load(dir string, layouts []string) *Index {
	idx := &Index{
		dir:  dir,
		docs: make(map[string]*Document, len(layouts)),
		errs: make(map[string]error),
	}
	for _, name := range layouts {
		if _, done := idx.docs[name]; done {
			continue
		}
		doc, err := idx.read(name)
		if err != nil {
			idx.errs[name] = err
			doc = &Document{}
		}
		idx.docs[name] = doc
	}
	return idx
}

func (idx *Index) read(name string) (*Document, error) {
	path := idx.Path(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", name, err)
	}
	defer f.Close()
	doc, err := ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	return doc, nil
}

// Dir returns the layout directory the index was loaded from.
func (idx *Index) Dir() string {
	return idx.dir
}

// Path returns the file path of a layout.
func (idx *Index) Path(name string) string {
	return filepath.Join(idx.dir, name+".xml")
}

// Errors returns the read and parse failures keyed by layout name.
func (idx *Index) Errors() map[string]error {
	return idx.errs
}

// ViewIDs returns the raw id values declared in a layout, in declaration
// order. Unknown layouts yield nothing.
func (idx *Index) ViewIDs(name string) []string {
	if doc, ok := idx.docs[name]; ok {
		return doc.IDs
	}
	return nil
}

// Declares reports whether a layout declares the bare id.
func (idx *Index) Declares(name, id string) bool {
	for _, raw := range idx.ViewIDs(name) {
		if naming.StripViewID(raw) == id {
			return true
		}
	}
	return false
}

// IncludedViewID looks in host for an <include> of included and returns
// the placement's raw id.
func (idx *Index) IncludedViewID(host, included string) (string, IncludeStatus) {
	doc, ok := idx.docs[host]
	if !ok {
		return "", IncludeMissing
	}
	for _, inc := range doc.Includes {
		if inc.Layout != included {
			continue
		}
		if inc.ID == "" {
			return "", IncludeNoID
		}
		return inc.ID, IncludeFound
	}
	return "", IncludeMissing
}

// MainDir returns sourcePath up to and including marker, or "" when the
// path does not contain it.
func MainDir(sourcePath, marker string) string {
	p := filepath.ToSlash(sourcePath)
	i := strings.Index(p, marker)
	if marker == "" || i < 0 {
		return ""
	}
	return filepath.FromSlash(p[:i+len(marker)])
}

// Locate returns the layout directory of the source set holding
// sourcePath, and whether it exists on disk.
func Locate(sourcePath, marker, layoutDir string) (string, bool) {
	main := MainDir(sourcePath, marker)
	if main == "" {
		return "", false
	}
	dir := filepath.Join(main, filepath.FromSlash(layoutDir))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return dir, false
	}
	return dir, true
}
