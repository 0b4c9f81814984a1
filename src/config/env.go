package config

import (
	"os"
	"strings"
)

// envFileNames are searched in the working directory, in order. keys.env is
// the historical name for the provider key file; .env is the common one.
var envFileNames = []string{"keys.env", ".env"}

// LoadEnvFiles populates the process environment from simple KEY=VALUE
// files in the working directory. Existing variables win; the files never
// override an exported value.
func LoadEnvFiles() {
	for _, name := range envFileNames {
		loadEnvFile(name)
	}
}

func loadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}
