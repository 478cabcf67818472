package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/hopgraph/internal/dataset"
)

// WriteDataset serializes ds as YAML to path, creating parent directories.
func WriteDataset(ds *dataset.Dataset, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := dataset.Write(path, ds); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
