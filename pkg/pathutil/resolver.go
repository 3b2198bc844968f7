// Package pathutil provides centralized path management for batch files and the history database.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PathResolver manages paths for batch files and the history database.
type PathResolver struct {
	outputRoot   string
	databasePath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// OutputRoot is the root directory for generated batch files (e.g., ~/accounting/sepa)
	OutputRoot string
	// DatabasePath is the path to the SQLite collection history
	DatabasePath string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {OutputRoot}/.history/history.db
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.OutputRoot, ".history", "history.db")
	}

	return &PathResolver{
		outputRoot:   config.OutputRoot,
		databasePath: dbPath,
	}
}

// GetOutputRoot returns the batch file root directory.
func (p *PathResolver) GetOutputRoot() string {
	return p.outputRoot
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetYearDir returns the directory path for a year.
// Example: ~/accounting/sepa/2024
func (p *PathResolver) GetYearDir(year int) string {
	return filepath.Join(p.outputRoot, fmt.Sprintf("%04d", year))
}

// GetBatchFilePath returns the file path for a batch created at the given time.
// Example: ~/accounting/sepa/2024/SEPA.1706000000000.TR0.xml
func (p *PathResolver) GetBatchFilePath(messageID string, created time.Time) (string, error) {
	if messageID == "" || strings.ContainsAny(messageID, `/\`) || strings.Contains(messageID, "..") {
		return "", fmt.Errorf("invalid message id for file name: %q", messageID)
	}

	return filepath.Join(p.GetYearDir(created.Year()), messageID+".xml"), nil
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return p.EnsureDir(dir)
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
