package native

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed errcatalog.yaml
var embeddedCatalog []byte

// Library is one catalog entry: a library identifier, its display name and
// the descriptions of its reason codes.
type Library struct {
	ID      int            `yaml:"id"`
	Name    string         `yaml:"name"`
	Reasons map[int]string `yaml:"reasons,omitempty"`
}

// CatalogFile is the YAML layout of an error catalog.
type CatalogFile struct {
	Libraries []Library `yaml:"libraries"`
}

var (
	catalogMu sync.RWMutex
	libraries map[int]Library
)

func init() {
	libs, err := ParseCatalog(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("native: embedded error catalog: %v", err))
	}
	libraries = map[int]Library{}
	merge(libs)
}

// ParseCatalog decodes a YAML error catalog.
func ParseCatalog(data []byte) ([]Library, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing error catalog: %w", err)
	}
	for _, lib := range f.Libraries {
		if lib.ID <= 0 || lib.ID > libMask {
			return nil, fmt.Errorf("library %q: id %d out of range", lib.Name, lib.ID)
		}
		if lib.Name == "" {
			return nil, fmt.Errorf("library %d: missing name", lib.ID)
		}
	}
	return f.Libraries, nil
}

// LoadCatalog reads a YAML catalog from path and overlays it on the current
// one. Existing reasons are replaced, new ones are added.
func LoadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading error catalog %s: %w", path, err)
	}
	libs, err := ParseCatalog(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	merge(libs)
	return nil
}

// Libraries returns a snapshot of the catalog keyed by library id.
func Libraries() map[int]Library {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make(map[int]Library, len(libraries))
	for id, lib := range libraries {
		out[id] = lib
	}
	return out
}

func merge(libs []Library) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	for _, lib := range libs {
		cur, ok := libraries[lib.ID]
		if !ok {
			cur = Library{ID: lib.ID, Reasons: map[int]string{}}
		}
		cur.Name = lib.Name
		reasons := make(map[int]string, len(cur.Reasons)+len(lib.Reasons))
		for r, s := range cur.Reasons {
			reasons[r] = s
		}
		for r, s := range lib.Reasons {
			reasons[r] = s
		}
		cur.Reasons = reasons
		libraries[lib.ID] = cur
	}
}

func lookupLibrary(id int) (Library, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	lib, ok := libraries[id]
	return lib, ok
}

func libraryName(id int) string {
	if lib, ok := lookupLibrary(id); ok {
		return lib.Name
	}
	return fmt.Sprintf("lib(%d)", id)
}
