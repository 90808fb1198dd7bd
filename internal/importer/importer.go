// Package importer reads ledger rows from history files and CSV exports.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/daybook-dev/daybook/internal/model"
)

// Result is what a parser read from one file.
type Result struct {
	Records []model.Record // totals only, no category detail
	Skipped []error        // malformed rows, as *ledger.ParseError
}

// Parser converts a file into ledger records.
type Parser interface {
	Parse(r io.Reader) (Result, error)
	Format() string
	// Extensions lists the lower-case file extensions the format uses.
	Extensions() []string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
	order   []string
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	r.order = append(r.order, key)
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names in registration order.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.order...)
}

// Detect picks a parser from a file name's extension, or nil.
func (r *Registry) Detect(name string) Parser {
	ext := strings.ToLower(filepath.Ext(name))
	for _, key := range r.order {
		p := r.parsers[key]
		for _, e := range p.Extensions() {
			if e == ext {
				return p
			}
		}
	}
	return nil
}

// ParseFile reads path with the named format, or the one matching its
// extension when format is empty.
func (r *Registry) ParseFile(path, format string) (Result, error) {
	var p Parser
	if format != "" {
		if p = r.Get(format); p == nil {
			return Result{}, fmt.Errorf("unknown import format %q (want one of %s)", format, strings.Join(r.Formats(), ", "))
		}
	} else if p = r.Detect(path); p == nil {
		return Result{}, fmt.Errorf("cannot tell the format of %s, pass --format", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s as %s: %w", filepath.Base(path), p.Format(), err)
	}
	return res, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&HistoryParser{})
	r.Register(&CSVParser{})
	return r
}

// importDir is the subdirectory for files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

// Scan returns the files in <home>/import/ that some parser in r understands.
func (r *Registry) Scan(home string) ([]FileInfo, error) {
	dir := filepath.Join(home, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || r.Detect(e.Name()) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(home, fileName string) error {
	src := filepath.Join(home, importDir, fileName)
	dstDir := filepath.Join(home, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
