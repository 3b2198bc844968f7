// Package batchfile provides repository pattern for SEPA batch file operations.
package batchfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/pathutil"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/sepa"
)

// Repository defines the interface for batch file operations.
type Repository interface {
	// Save writes the document and returns the file path
	Save(doc *sepa.Document) (string, error)

	// ListYear lists the batch files written in a year
	ListYear(year int) ([]string, error)
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
	}
}

// Save writes the document to {root}/{year}/{message id}.xml.
// An existing file is never overwritten.
func (r *FileSystemRepository) Save(doc *sepa.Document) (string, error) {
	filePath, err := r.path(doc)
	if err != nil {
		return "", err
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return "", fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	data, err := doc.Bytes()
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create batch file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write batch file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close batch file: %w", err)
	}

	return filePath, nil
}

// ListYear lists the message ids of the batch files written in a year, sorted.
func (r *FileSystemRepository) ListYear(year int) ([]string, error) {
	yearDir := r.pathResolver.GetYearDir(year)
	if !r.pathResolver.FileExists(yearDir) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(yearDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read year directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".xml"))
	}

	sort.Strings(ids)
	return ids, nil
}

func (r *FileSystemRepository) path(doc *sepa.Document) (string, error) {
	filePath, err := r.pathResolver.GetBatchFilePath(doc.GroupHeader.MessageID, doc.GroupHeader.Created)
	if err != nil {
		return "", fmt.Errorf("failed to get batch file path: %w", err)
	}
	return filePath, nil
}
