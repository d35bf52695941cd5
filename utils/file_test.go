package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlugFromFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "report.pdf", "report"},
		{"spaces and case", "My Annual Report.pdf", "my-annual-report"},
		{"nested path", "/tmp/uploads/Q3 Results (final).pdf", "q3-results-final"},
		{"symbol runs collapse", "a__b--c.pdf", "a-b-c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlugFromFileName(tt.in); got != tt.want {
				t.Errorf("SlugFromFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSavePDFAndFindBySlug(t *testing.T) {
	dir := t.TempDir()

	path, err := SavePDF("my-report", []byte("%PDF-1.4"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "my-report_") {
		t.Errorf("saved file name %q lacks the slug prefix", filepath.Base(path))
	}

	found, err := FindPDFBySlug("my-report", dir)
	if err != nil {
		t.Fatal(err)
	}
	if found != path {
		t.Errorf("FindPDFBySlug = %q, want %q", found, path)
	}

	data, err := os.ReadFile(found)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("stored content = %q", data)
	}
}

func TestFindPDFBySlugNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindPDFBySlug("nope", dir); err == nil {
		t.Error("expected an error for a missing document")
	}
}
