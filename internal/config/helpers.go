package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFile sets variables from a dotenv file without overriding the
// existing environment. A missing file is ignored.
func LoadEnvFile(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(filename)
}
