// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value. Environment variables
// override file values so deployments can skip the directory entirely.
//
// Supported key files: notion_token, notion_database_id, gemini_api_key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Secret key names, matching the filenames under the secrets directory.
const (
	KeyNotionToken    = "notion_token"
	KeyNotionDatabase = "notion_database_id"
	KeyGeminiAPIKey   = "gemini_api_key"
)

// envNames maps secret keys to the environment variables that override them.
var envNames = map[string]string{
	KeyNotionToken:    "NOTION_TOKEN",
	KeyNotionDatabase: "NOTION_DATABASE_ID",
	KeyGeminiAPIKey:   "GEMINI_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents, then overlays the NOTION_TOKEN, NOTION_DATABASE_ID, and
// GEMINI_API_KEY environment variables. A .env file in the working directory
// is folded into the environment first; a missing .env, like a missing
// directory, is not an error. Unreadable files produce a warning on stderr
// but do not abort.
func Load(dir string) (map[string]string, error) {
	_ = godotenv.Load()

	secrets := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	for key, env := range envNames {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[key] = v
		}
	}

	return secrets, nil
}
