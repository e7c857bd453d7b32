package common

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultMaxReadSize caps ReadFile when no explicit limit is given.
const DefaultMaxReadSize int64 = 10 * 1024 * 1024

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists reports whether path exists and is a regular file.
func (fm *FileManager) FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ReadFile reads the whole file, refusing files larger than maxSize bytes.
// maxSize <= 0 uses DefaultMaxReadSize.
func (fm *FileManager) ReadFile(path string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxReadSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, WrapError(err, "failed to stat file: "+path)
	}
	if info.IsDir() {
		return nil, NewValidationError("path", path, "is a directory")
	}
	if info.Size() > maxSize {
		return nil, NewValidationError("path", path, "file exceeds maximum size")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, "failed to open file: "+path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			fm.logger.Error().Err(cerr).Str("path", path).Msg("Failed to close file")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		return nil, WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}

// OpenAppend opens path for appending, creating it and its parent directories.
func (fm *FileManager) OpenAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapError(err, "failed to create directory: "+dir)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, WrapError(err, "failed to open file for append: "+path)
	}
	fm.logger.Debug().Str("path", path).Msg("Opened file for append")
	return file, nil
}
