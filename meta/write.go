package meta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes md to path as indented JSON, creating parent directories.
func WriteFile(path string, md *Metadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(md); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not encode metadata: %w", err)
	}
	return f.Close()
}
