package sync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mbridges/modpay-tui/internal/logger"
)

// widgetState is the file format consumed by external status displays
// (status bars, desktop widgets).
type widgetState struct {
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileWidget writes the latest converted total to a small JSON file on
// every sync, regardless of whether a snapshot was persisted.
type FileWidget struct {
	path string
}

// NewFileWidget creates a widget sink writing to path.
func NewFileWidget(path string) *FileWidget {
	return &FileWidget{path: path}
}

// Update implements DisplaySink. Writes atomically via rename so a
// reader never observes a partial file.
func (w *FileWidget) Update(total float64, currency string) {
	state := widgetState{
		Total:     total,
		Currency:  currency,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		logger.Warn("failed to encode widget state", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		logger.Warn("failed to create widget directory", "error", err)
		return
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logger.Warn("failed to write widget file", "error", err)
		return
	}
	if err := os.Rename(tmp, w.path); err != nil {
		logger.Warn("failed to replace widget file", "error", err)
	}
}
