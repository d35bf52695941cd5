package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SlugFromFileName derives a document slug from a file name: extension
// stripped, non-alphanumeric runs collapsed to single dashes, lowercased.
func SlugFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// SavePDF writes raw PDF bytes into uploadDir under a timestamped file name
// derived from the slug. Returns the destination path.
func SavePDF(slug string, data []byte, uploadDir string) (string, error) {
	// Create upload directory if it doesn't exist
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	timestamp := time.Now().Unix()
	destFileName := fmt.Sprintf("%s_%d.pdf", slug, timestamp)
	destPath := filepath.Join(uploadDir, destFileName)

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	return destPath, nil
}

// FindPDFBySlug locates the stored PDF for a slug, tolerating the timestamp
// suffix appended at upload time.
func FindPDFBySlug(slug, uploadDir string) (string, error) {
	files, err := os.ReadDir(uploadDir)
	if err != nil {
		return "", err
	}

	for _, file := range files {
		name := file.Name()
		if !strings.HasSuffix(name, ".pdf") {
			continue
		}
		nameWithoutExt := strings.TrimSuffix(name, ".pdf")
		if nameWithoutExt == slug {
			return filepath.Join(uploadDir, name), nil
		}
		lastUnderscoreIdx := strings.LastIndex(nameWithoutExt, "_")
		if lastUnderscoreIdx == -1 {
			continue
		}
		if nameWithoutExt[:lastUnderscoreIdx] == slug {
			return filepath.Join(uploadDir, name), nil
		}
	}

	return "", fmt.Errorf("file not found for document: %s", slug)
}
