package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// SaveTOML writes a struct to a TOML file, creating parent directories.
func SaveTOML(fs afero.Fs, filePath string, data interface{}) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := fs.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	file, err := fs.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(data)
}

// LoadTOML decodes a TOML file into a struct.
func LoadTOML(fs afero.Fs, filePath string, data interface{}) error {
	raw, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(raw), data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return nil
}
