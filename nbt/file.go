package nbt

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Gzip container for a single document root, the usual on-disk form of a
// standalone tree.

// Load reads a gzip-compressed document root from r.
func Load(r io.Reader) (*Tag, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("nbt: open gzip stream: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("nbt: read gzip stream: %w", err)
	}
	return DecodeRoot(data)
}

// Save writes a document root to w as a gzip stream.
func Save(w io.Writer, root *Tag) error {
	data, err := EncodeRoot(root)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("nbt: write gzip stream: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("nbt: close gzip stream: %w", err)
	}
	return nil
}

// LoadFile reads a gzip-compressed document root from the named file.
func LoadFile(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// SaveFile writes a document root to the named file, replacing it.
func SaveFile(path string, root *Tag) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, root); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
