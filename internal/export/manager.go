// ============================================================================
// Export Manager - atomic result files
// ============================================================================
//
// Package: internal/export
// File: manager.go
// Function: Writes run and comparison documents to disk and reads them back
//
// Atomic write:
//   1. Serialize to JSON (or render text) in memory
//   2. Write <path>.tmp
//   3. Rename <path>.tmp to <path>
//
//   A crash between steps leaves either the previous file or the new one,
//   never a truncated mix. Rename is atomic on POSIX filesystems.
//
// Versioning:
//   Every document carries schema_version. Load rejects other versions with
//   ErrIncompatibleVersion and unparsable files with ErrCorruptedExport.
//
// ============================================================================

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCorruptedExport indicates the file is not a valid document
	ErrCorruptedExport = errors.New("export file is corrupted")
	// ErrIncompatibleVersion indicates a document from another schema version
	ErrIncompatibleVersion = errors.New("export schema version is incompatible")
	// ErrExportNotFound indicates the file does not exist
	ErrExportNotFound = errors.New("export file not found")
)

// Manager owns one export path
type Manager struct {
	path string
	mu   sync.Mutex // serializes writers and readers of path
	now  func() time.Time
}

// NewManager creates a manager for path
func NewManager(path string) *Manager {
	return &Manager{
		path: path,
		now:  time.Now,
	}
}

// Write stores doc as indented JSON, stamping schema version and time
func (m *Manager) Write(doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc.SchemaVersion = SchemaVersion
	doc.GeneratedAt = m.now().UTC()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return m.writeAtomic(append(data, '\n'))
}

// WriteText stores the text produced by render
func (m *Manager) WriteText(render func(w io.Writer)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	render(&buf)
	return m.writeAtomic(buf.Bytes())
}

func (m *Manager) writeAtomic(data []byte) error {
	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp export: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename export: %w", err)
	}
	return nil
}

// Load reads and validates the document at the manager's path
func (m *Manager) Load() (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var doc Document
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, fmt.Errorf("%w: %s", ErrExportNotFound, m.path)
		}
		return doc, fmt.Errorf("failed to read export: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrCorruptedExport, err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return doc, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, doc.SchemaVersion, SchemaVersion)
	}
	for i, rec := range doc.Runs {
		if rec.Algorithm == "" {
			return doc, fmt.Errorf("%w: run %d has no algorithm", ErrCorruptedExport, i)
		}
	}
	return doc, nil
}

// Exists reports whether the export file is present
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Path returns the export file path
func (m *Manager) Path() string {
	return m.path
}
