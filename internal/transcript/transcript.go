// Package transcript keeps an append-only log of every emitted datagram, so
// a replay session can be re-examined, or replayed again, later.
package transcript

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer appends emitted datagram payloads to a daily log file.
type Writer struct {
	outputDir string
	file      *os.File
	mu        sync.Mutex
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates a transcript writer rooted at outputDir.
func New(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		stopChan:  make(chan struct{}),
	}
}

// Start opens today's file and starts the rotation timer.
func (w *Writer) Start() error {
	if err := os.MkdirAll(w.outputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}
	if err := w.rotateFile(); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.rotationTimer()

	return nil
}

// Stop closes the current file and stops the rotation timer.
func (w *Writer) Stop() error {
	close(w.stopChan)
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// WriteLine appends one emitted payload to the current transcript file.
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.rotateFile(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w.file, line)
	return err
}

// rotationTimer handles daily rotation at midnight UTC
func (w *Writer) rotationTimer() {
	defer w.wg.Done()

	for {
		now := time.Now().UTC()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
		waitTime := nextMidnight.Sub(now)

		select {
		case <-time.After(waitTime):
			if err := w.rotateAndCompress(); err != nil {
				fmt.Printf("Error during rotation: %v\n", err)
			}
		case <-w.stopChan:
			return
		}
	}
}

// rotateAndCompress rotates the current file and compresses the previous day's file
func (w *Writer) rotateAndCompress() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Close current file
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	// Compress yesterday's file
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	yesterdayFile := filepath.Join(w.outputDir, fmt.Sprintf("replay_%s.log", yesterday.Format("2006-01-02")))

	if _, err := os.Stat(yesterdayFile); err == nil {
		if err := compressFile(yesterdayFile); err != nil {
			return fmt.Errorf("failed to compress file: %w", err)
		}
	}

	// Create new file
	return w.rotateFile()
}

// compressFile compresses a file using gzip and removes the original
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer target.Close()

	gzipWriter := gzip.NewWriter(target)
	if _, err := io.Copy(gzipWriter, source); err != nil {
		gzipWriter.Close()
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}

// rotateFile creates a new transcript file with today's date
func (w *Writer) rotateFile() error {
	timestamp := time.Now().UTC().Format("2006-01-02")
	filename := filepath.Join(w.outputDir, fmt.Sprintf("replay_%s.log", timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}

	w.file = file
	return nil
}
