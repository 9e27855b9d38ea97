package classify

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// defaultDomains is the built-in table, used when no domains file is
// configured.
//
//go:embed default_domains.toml
var defaultDomains []byte

// DefaultCategory is reported for hosts that no table entry covers.
const DefaultCategory = "Outros"

// tableFile is the on-disk form of a DomainTable.
type tableFile struct {
	DefaultCategory *string           `toml:"default_category"`
	Domains         map[string]string `toml:"domains"`
}

// DomainTable classifies by host name.  A host matches an entry exactly, or
// as a subdomain of it ("gemini.google.com" matches "google.com"); the most
// specific entry wins.  Hosts with no entry get the default category, so a
// DomainTable never fails and works as the last link of a Chain.
//
// A DomainTable may be replaced while in use (see TableWatcher).
type DomainTable struct {
	mu              sync.RWMutex
	domains         map[string]string
	defaultCategory string
	// explicitDefault is set when defaultCategory was given rather than
	// falling back to DefaultCategory.
	explicitDefault bool
}

// NewDomainTable returns a table over domains.  Keys are normalized.  An
// empty defaultCategory means DefaultCategory.
func NewDomainTable(domains map[string]string, defaultCategory string) *DomainTable {
	t := &DomainTable{
		domains:         make(map[string]string, len(domains)),
		defaultCategory: defaultCategory,
		explicitDefault: defaultCategory != "",
	}
	if !t.explicitDefault {
		t.defaultCategory = DefaultCategory
	}
	for k, v := range domains {
		if host := Normalize(k); host != "" {
			t.domains[host] = v
		}
	}
	return t
}

// ParseDomainTable decodes a TOML domain table.
func ParseDomainTable(b []byte) (*DomainTable, error) {
	var f tableFile
	if err := toml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing domain table: %w", err)
	}
	var def string
	if f.DefaultCategory != nil {
		def = *f.DefaultCategory
	}
	return NewDomainTable(f.Domains, def), nil
}

// LoadDomainTable reads a TOML domain table from path.
func LoadDomainTable(path string) (*DomainTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseDomainTable(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DefaultDomainTable returns a fresh copy of the built-in table.
func DefaultDomainTable() *DomainTable {
	t, err := ParseDomainTable(defaultDomains)
	if err != nil {
		panic(err)
	}
	return t
}

// Classify returns the category for rawURL's host.
func (t *DomainTable) Classify(_ context.Context, rawURL string) (string, error) {
	if category, ok := t.Lookup(Normalize(rawURL)); ok {
		return category, nil
	}
	return t.Default(), nil
}

// Lookup finds the most specific entry covering host.
func (t *DomainTable) Lookup(host string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for host != "" {
		if category, ok := t.domains[host]; ok {
			return category, true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			break
		}
		host = host[i+1:]
	}
	return "", false
}

// Default returns the category used when nothing matches.
func (t *DomainTable) Default() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.defaultCategory
}

// SetDefault changes the category used when nothing matches.
func (t *DomainTable) SetDefault(category string) {
	if category == "" {
		return
	}
	t.mu.Lock()
	t.defaultCategory = category
	t.mu.Unlock()
}

// Len returns the number of entries.
func (t *DomainTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.domains)
}

// Replace swaps in the entries of other.  The default category is kept
// unless other sets one explicitly, even if that is DefaultCategory.
func (t *DomainTable) Replace(other *DomainTable) {
	other.mu.RLock()
	domains := other.domains
	def, explicit := other.defaultCategory, other.explicitDefault
	other.mu.RUnlock()

	t.mu.Lock()
	t.domains = domains
	if explicit {
		t.defaultCategory = def
		t.explicitDefault = true
	}
	t.mu.Unlock()
}
