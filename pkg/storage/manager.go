package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"igcomments/pkg/instagram"
	"igcomments/pkg/logger"
)

// Manager writes the output artifacts: a line-per-comment text file and a
// structured JSON document. Both land under the base directory in txt/ and
// json/ subdirectories and are written via atomic replace, so a failed run
// leaves no truncated artifact behind.
type Manager struct {
	baseDir string
	logger  logger.Logger
}

// jsonDocument is the structured output shape
type jsonDocument struct {
	GeneratedAt int64               `json:"generated_at"`
	Count       int                 `json:"count"`
	Comments    []instagram.Comment `json:"comments"`
}

// NewManager creates a storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	for _, sub := range []string{"txt", "json"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &Manager{
		baseDir: baseDir,
		logger:  logger.GetLogger(),
	}, nil
}

// BaseDir returns the output root
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// WriteOutputs writes both artifacts for a completed run and returns their
// paths. Nothing is written unless the full comment set is in hand.
func (m *Manager) WriteOutputs(baseName string, comments []instagram.Comment) (txtPath, jsonPath string, err error) {
	txtPath = filepath.Join(m.baseDir, "txt", baseName+".txt")
	jsonPath = filepath.Join(m.baseDir, "json", baseName+".json")

	var lines strings.Builder
	for i, c := range comments {
		if i > 0 {
			lines.WriteByte('\n')
		}
		lines.WriteString(c.Username)
		lines.WriteString(": ")
		lines.WriteString(c.Text)
	}
	if err := writeAtomic(txtPath, []byte(lines.String())); err != nil {
		return "", "", fmt.Errorf("failed to write text output: %w", err)
	}

	doc := jsonDocument{
		GeneratedAt: time.Now().Unix(),
		Count:       len(comments),
		Comments:    comments,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode json output: %w", err)
	}
	if err := writeAtomic(jsonPath, data); err != nil {
		return "", "", fmt.Errorf("failed to write json output: %w", err)
	}

	m.logger.InfoWithFields("outputs written", map[string]interface{}{
		"comments": len(comments),
		"txt":      txtPath,
		"json":     jsonPath,
	})

	return txtPath, jsonPath, nil
}

// writeAtomic stages content to a temporary file and promotes it with rename
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// BaseName builds the timestamped output name for one run
func BaseName(now time.Time) string {
	return "reel_comments_" + now.Format("20060102_150405")
}
