package pkg

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBundle(t *testing.T, filename string, files map[string]string) {
	t.Helper()

	writer, err := NewDistWriter(filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// fixed order so the index layout is predictable
	names := []string{"uplink/uplink.h", "libuplink.a", "empty"}
	for _, name := range names {
		content, ok := files[name]
		if !ok {
			continue
		}
		err = writer.WriteFile(name, strings.NewReader(content))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	err = writer.Close()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func testFiles() map[string]string {
	return map[string]string{
		"uplink/uplink.h": "typedef const char uplink_const_char;\n",
		"libuplink.a":     strings.Repeat("uplink", 4096),
		"empty":           "",
	}
}

func TestDistRoundTrip(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "uplink.ucgd")
	files := testFiles()
	writeBundle(t, bundle, files)

	reader, err := OpenDist(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reader.Close()

	entries := reader.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %v", entries)
	}

	for _, name := range entries {
		handle, err := reader.Open(name)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := io.ReadAll(handle)
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		if string(content) != files[name] {
			t.Fatalf("entry %s does not match the original content", name)
		}
	}
}

func TestDistExtract(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "uplink.ucgd")
	files := testFiles()
	writeBundle(t, bundle, files)

	reader, err := OpenDist(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reader.Close()

	dest := t.TempDir()
	err = reader.Extract(dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, want := range files {
		content, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("entry %s was not extracted: %v", name, err)
		}
		if string(content) != want {
			t.Fatalf("entry %s does not match the original content", name)
		}
	}
}

func TestDistRejectsBadNames(t *testing.T) {
	writer, err := NewDistWriter(filepath.Join(t.TempDir(), "uplink.ucgd"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer writer.Close()

	err = writer.WriteFile("/etc/passwd", strings.NewReader(""))
	if err == nil {
		t.Fatalf("absolute entry names must be rejected")
	}

	err = writer.WriteFile("../escape", strings.NewReader(""))
	if err == nil {
		t.Fatalf("parent directory escapes must be rejected")
	}
}

func TestDistExtractRejectsBadNames(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "uplink.ucgd")
	writeBundle(t, bundle, testFiles())

	reader, err := OpenDist(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reader.Close()

	// a crafted bundle can carry any name in its index
	reader.entries[0].name = "../escape"

	parent := t.TempDir()
	dest := filepath.Join(parent, "out")
	err = reader.Extract(dest)
	if err == nil {
		t.Fatalf("expected error for an entry escaping the destination")
	}
	if !strings.Contains(err.Error(), "invalid entry name") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, statErr := os.Stat(filepath.Join(parent, "escape"))
	if !os.IsNotExist(statErr) {
		t.Fatalf("entry was extracted outside the destination directory")
	}
}

func TestDistRejectsOversizedIndexOffset(t *testing.T) {
	writer, err := NewDistWriter(filepath.Join(t.TempDir(), "uplink.ucgd"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// simulate blobs past the 4 GiB mark without writing them; the file
	// stays sparse
	_, err = writer.hdl.Seek(int64(math.MaxUint32)+1, io.SeekStart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = writer.Close()
	if err == nil {
		t.Fatalf("expected error for an index offset beyond uint32")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDistMissingEntry(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "uplink.ucgd")
	writeBundle(t, bundle, testFiles())

	reader, err := OpenDist(bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reader.Close()

	_, err = reader.Open("does-not-exist")
	if err == nil {
		t.Fatalf("expected error for unknown entry")
	}
}

func TestDistRejectsForeignFiles(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "not-a-bundle")
	err := os.WriteFile(filename, []byte("PK\x03\x04 something else entirely"), 0o600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = OpenDist(filename)
	if err == nil {
		t.Fatalf("expected error for a foreign file")
	}
	if !strings.Contains(err.Error(), "not a dist bundle") {
		t.Fatalf("unexpected error: %v", err)
	}
}
