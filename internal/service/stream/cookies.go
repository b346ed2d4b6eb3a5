package stream

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const netscapeHeader = "# Netscape HTTP Cookie File"

// SaveCookies installs an uploaded Netscape-format cookie file. The next
// extractor invocation picks it up automatically.
func (s service) SaveCookies(data []byte) error {
	if s.cookiesPath == "" {
		return fmt.Errorf("no cookies path configured")
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), netscapeHeader) {
		return ErrInvalidCookies
	}

	if dir := filepath.Dir(s.cookiesPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cookies dir: %w", err)
		}
	}

	// Cookies carry account credentials, keep them owner-only.
	if err := os.WriteFile(s.cookiesPath, data, 0o600); err != nil {
		return fmt.Errorf("write cookies file: %w", err)
	}

	return nil
}

func (s service) Cookies() CookiesStatus {
	if s.cookiesPath == "" {
		return CookiesStatus{}
	}

	info, err := os.Stat(s.cookiesPath)
	if err != nil {
		return CookiesStatus{}
	}

	return CookiesStatus{
		Exists:     true,
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}
}
