// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Known key files: download-signing-key.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/logging"
)

// DownloadSigningKey names the HMAC key for server download tokens.
const DownloadSigningKey = "download-signing-key"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
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
			logging.L().Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// EnsureKey returns the secret name from dir. When it is absent a random key
// of n bytes is generated, hex-encoded and written to dir/name with owner-only
// permissions, so the value survives restarts.
func EnsureKey(dir, name string, n int) ([]byte, error) {
	loaded, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if v, ok := loaded[name]; ok {
		return []byte(v), nil
	}

	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating %s: %w", name, err)
	}
	value := hex.EncodeToString(raw)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating secrets directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	logging.L().Info("generated secret", zap.String("name", name), zap.String("path", path))
	return []byte(value), nil
}
