package restore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethogram/borisrec/internal/config"
	"github.com/ethogram/borisrec/internal/filelock"
	"github.com/ethogram/borisrec/internal/models"
)

// ErrOutputExists reports a refusal to overwrite an existing project file.
var ErrOutputExists = errors.New("output file already exists")

// OutputPath derives the project file path for an export: the input path
// with its extension replaced by the project extension.
func OutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + config.OutputExtension
}

// WriteDocument serializes the document and writes it atomically under a
// file lock. An existing destination is refused unless force is set, so a
// plain re-run never clobbers earlier output.
func WriteDocument(doc *models.ProjectDocument, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode project document: %w", err)
	}

	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
