package utils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cart-extractor/internal/types"
)

// FileSource reads saved cart page snapshots from disk
type FileSource struct {
	logger types.Logger
}

// NewFileSource creates a new file source
func NewFileSource(logger types.Logger) *FileSource {
	return &FileSource{logger: logger}
}

// GetPageContent reads the file at path. A file:// prefix is stripped.
func (f *FileSource) GetPageContent(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path = strings.TrimPrefix(path, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}

	f.logger.Debugf("Read %d bytes from %s", len(data), path)
	return string(data), nil
}
