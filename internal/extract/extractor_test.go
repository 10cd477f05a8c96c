package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor()
	path := filepath.Join(t.TempDir(), "note.txt")
	content := "Hello, this is plain text.\nSecond line."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	text, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != content {
		t.Errorf("plain text altered: %q", text)
	}
}

func TestExtractUnknownExtensionAsPlain(t *testing.T) {
	e := NewExtractor()
	text, err := e.ExtractBytes([]byte("some log output"), ".log")
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if text != "some log output" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	text, err := e.ExtractBytes([]byte{'o', 'k', 0xff, 0xfe, '!'}, ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if !strings.Contains(text, "ok") || !strings.Contains(text, "!") {
		t.Errorf("valid bytes lost: %q", text)
	}
	if strings.Contains(text, "\xff") {
		t.Error("invalid bytes not replaced")
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractBadPDF(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a pdf"), ".pdf"); err == nil {
		t.Error("expected error for malformed pdf")
	}
}

func TestExtractDOCX(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for malformed docx")
	}
}
