package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/float2qb-dev/float2qb/internal/model"
)

// Row is one data row of a Float export: either a parsed record or the
// row-scoped error that kept it from parsing. A bad row never aborts the
// file; callers report it and move on.
type Row struct {
	Num    int // 1-based data row number (header excluded)
	Record model.FloatRecord
	Err    error
}

// ParseError describes a malformed field in a single row.
type ParseError struct {
	Row   int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: bad %s: %v", e.Row, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser converts a Float export into rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an export file in the import directory.
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
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile returns the parser for a file based on its extension: .xlsx gets
// the XLSX parser, everything else the CSV parser. Reimbursement exports
// are detected by header inside the parsers themselves.
func (r *Registry) ForFile(path string) Parser {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return r.Get("xlsx")
	}
	return r.Get("float")
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&FloatParser{})
	r.Register(&ReimbursementParser{})
	r.Register(&XLSXParser{})
	return r
}

// importDir is the subdirectory for pending exports.
const importDir = "import"

// processedDir is the subdirectory for processed exports.
const processedDir = "import/processed"

// Scan returns Float export files in <workRoot>/import/.
func Scan(workRoot string) ([]FileInfo, error) {
	dir := filepath.Join(workRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".xlsx") {
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
func MarkProcessed(workRoot, fileName string) error {
	src := filepath.Join(workRoot, importDir, fileName)
	dstDir := filepath.Join(workRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
