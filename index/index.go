// Package index keeps environment stubs of many documents and answers lookups
// by name, label and fuzzy queries without parsing the documents again.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/eolymp/go-latexenv"
)

// Entry is a stub together with the file it comes from.
type Entry struct {
	Path string                   `yaml:"path"`
	Stub latexenv.EnvironmentStub `yaml:"stub"`
}

// Index is safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	files map[string][]latexenv.EnvironmentStub
}

func New() *Index {
	return &Index{files: map[string][]latexenv.EnvironmentStub{}}
}

// Add indexes all environments of the document under path, replacing whatever was indexed for path before.
func (x *Index) Add(path string, doc *latexenv.Document) {
	x.Put(path, doc.Stubs())
}

func (x *Index) Put(path string, stubs []latexenv.EnvironmentStub) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.files[path] = append([]latexenv.EnvironmentStub(nil), stubs...)
}

// Remove drops path from the index and reports whether it was indexed.
func (x *Index) Remove(path string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.files[path]; !ok {
		return false
	}

	delete(x.files, path)
	return true
}

// Files returns indexed paths in lexical order.
func (x *Index) Files() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return x.paths()
}

func (x *Index) paths() []string {
	paths := make([]string, 0, len(x.files))
	for path := range x.files {
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths
}

func (x *Index) Len() (n int) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, stubs := range x.files {
		n += len(stubs)
	}

	return
}

// Entries returns all entries ordered by path and position in the file.
func (x *Index) Entries() []Entry {
	return x.filter(func(latexenv.EnvironmentStub) bool { return true })
}

// ByName returns entries of environments with the given name.
func (x *Index) ByName(name string) []Entry {
	return x.filter(func(stub latexenv.EnvironmentStub) bool { return stub.Name == name })
}

// ByLabel returns entries of environments which declare the label. There may
// be more than one when a label is defined twice across the indexed files.
func (x *Index) ByLabel(label string) []Entry {
	if label == "" {
		return nil
	}

	return x.filter(func(stub latexenv.EnvironmentStub) bool { return stub.Label == label })
}

func (x *Index) filter(accept func(latexenv.EnvironmentStub) bool) (entries []Entry) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, path := range x.paths() {
		for _, stub := range x.files[path] {
			if accept(stub) {
				entries = append(entries, Entry{Path: path, Stub: stub})
			}
		}
	}

	return
}

// Search matches query against environment names and labels, best matches go first.
// Empty query matches everything.
func (x *Index) Search(query string) []Entry {
	entries := x.Entries()
	if strings.TrimSpace(query) == "" {
		return entries
	}

	matches := fuzzy.FindFrom(query, candidates(entries))

	found := make([]Entry, 0, len(matches))
	for _, match := range matches {
		found = append(found, entries[match.Index])
	}

	return found
}

// candidates exposes entries to the fuzzy matcher as "name label" strings
type candidates []Entry

func (c candidates) String(i int) string {
	if c[i].Stub.Label == "" {
		return c[i].Stub.Name
	}

	return c[i].Stub.Name + " " + c[i].Stub.Label
}

func (c candidates) Len() int {
	return len(c)
}
