// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// staticPatterns are the root-level verification and asset files copied into
// the public directory as-is. sitemap.xml is generated, never copied.
var staticPatterns = []string{
	"robots.txt",
	"google*.html",
	"naver*.html",
	"qr.png",
}

// CopyStaticFiles copies the root static files into publicDir. The root
// index.html (the calculator) is copied as calculator.html with its link to
// the public hub rewritten to a sibling path. Returns the destination paths.
func CopyStaticFiles(rootDir, publicDir string) ([]string, error) {
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating public directory: %w", err)
	}

	var copied []string

	rootIndex := filepath.Join(rootDir, "index.html")
	if data, err := os.ReadFile(rootIndex); err == nil {
		rewritten := strings.ReplaceAll(string(data), "./public/index.html", "./index.html")
		dst := filepath.Join(publicDir, "calculator.html")
		if err := os.WriteFile(dst, []byte(rewritten), 0o644); err != nil {
			return nil, fmt.Errorf("writing calculator.html: %w", err)
		}
		copied = append(copied, dst)
	}

	for _, pattern := range staticPatterns {
		matches, err := filepath.Glob(filepath.Join(rootDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", pattern, err)
		}
		for _, src := range matches {
			info, err := os.Stat(src)
			if err != nil || info.IsDir() {
				continue
			}
			data, err := os.ReadFile(src)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", src, err)
			}
			dst := filepath.Join(publicDir, filepath.Base(src))
			if err := os.WriteFile(dst, data, 0o644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", dst, err)
			}
			copied = append(copied, dst)
		}
	}
	return copied, nil
}
