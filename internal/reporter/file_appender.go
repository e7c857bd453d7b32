package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/common"
	"github.com/aleister1102/httpeek/internal/models"
)

// FileAppender appends "url | ip | status | title" lines to a file.
// The file is opened on the first write so that an empty run leaves nothing behind.
type FileAppender struct {
	path        string
	fileManager *common.FileManager
	logger      zerolog.Logger

	mu   sync.Mutex
	file *os.File
}

// NewFileAppender creates an appender for path.
func NewFileAppender(path string, logger zerolog.Logger) *FileAppender {
	return &FileAppender{
		path:        path,
		fileManager: common.NewFileManager(logger),
		logger:      logger.With().Str("component", "FileAppender").Logger(),
	}
}

func (fa *FileAppender) Write(result *models.ProbeResult) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file == nil {
		file, err := fa.fileManager.OpenAppend(fa.path)
		if err != nil {
			return err
		}
		fa.file = file
		fa.logger.Debug().Str("path", fa.path).Msg("Appending results to file")
	}

	_, err := fmt.Fprintln(fa.file, FormatPlain(result))
	if err != nil {
		return common.WrapErrorf(err, "failed to append to %s", fa.path)
	}
	return nil
}

// Close closes the file if it was opened.
func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file == nil {
		return nil
	}
	err := fa.file.Close()
	fa.file = nil
	return err
}

// FormatPlain renders the plain-text line used by the output file.
// Failure rows keep their error title.
func FormatPlain(result *models.ProbeResult) string {
	title := result.PlainTitle()
	if _, ok := result.StatusCode(); !ok && result.Title != "" {
		title = result.Title
	}
	return fmt.Sprintf("%s | %s | %s | %s", result.URL, result.IP, result.StatusText(), title)
}
