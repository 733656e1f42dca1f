package transcript

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func todayFile(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("replay_%s.log", time.Now().UTC().Format("2006-01-02")))
}

func TestWriter_StartAndWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")

	w := New(dir)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	lines := []string{
		"AITFC,11231627,50.0643,8.5912,1975,128,1,316,106,DLH9U,A20N,D-AIZD,FRA,JFK,1645383708.3",
		`{"ICAO": "EDDF", "QNH": 1013}`,
	}
	for _, ln := range lines {
		if err := w.WriteLine(ln); err != nil {
			t.Fatalf("WriteLine() failed: %v", err)
		}
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	data, err := os.ReadFile(todayFile(dir))
	if err != nil {
		t.Fatalf("failed to read transcript: %v", err)
	}
	got := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(got) != 2 || got[0] != lines[0] || got[1] != lines[1] {
		t.Errorf("transcript lines = %v, want %v", got, lines)
	}
}

func TestWriter_AppendsAcrossSessions(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		w := New(dir)
		if err := w.Start(); err != nil {
			t.Fatalf("Start() failed: %v", err)
		}
		if err := w.WriteLine(fmt.Sprintf("session %d", i)); err != nil {
			t.Fatalf("WriteLine() failed: %v", err)
		}
		if err := w.Stop(); err != nil {
			t.Fatalf("Stop() failed: %v", err)
		}
	}

	data, err := os.ReadFile(todayFile(dir))
	if err != nil {
		t.Fatalf("failed to read transcript: %v", err)
	}
	if want := "session 0\nsession 1\n"; string(data) != want {
		t.Errorf("transcript = %q, want %q", data, want)
	}
}

func TestCompressFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replay_2026-08-22.log")

	content := "AITFC,1,1.0,1.0,100,0,1,0,0,,,,,,1000.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if err := compressFile(path); err != nil {
		t.Fatalf("compressFile() failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original file should be removed after compression")
	}

	f, err := os.Open(path + ".gz")
	if err != nil {
		t.Fatalf("failed to open compressed file: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader() failed: %v", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if string(data) != content {
		t.Errorf("decompressed = %q, want %q", data, content)
	}
}

func TestWriter_StartCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	w := New(dir)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("transcript directory missing: %v", err)
	}
	if !info.IsDir() {
		t.Error("transcript path is not a directory")
	}
}
