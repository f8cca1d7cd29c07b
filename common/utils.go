package common

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns ~/.config/gterm, creating it if needed.
func GetConfigDir() (string, error) {
	return userDir(".config", ConfigDirName)
}

// GetDataDir returns ~/.local/share/gterm, creating it if needed.
func GetDataDir() (string, error) {
	return userDir(".local", "share", ConfigDirName)
}

func userDir(parts ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(err, "failed to get home directory")
	}

	dir := filepath.Join(append([]string{home}, parts...)...)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", WrapError(err, "failed to create "+dir)
	}
	return dir, nil
}

// FileExists reports whether something exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
