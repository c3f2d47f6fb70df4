package xmlstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ExportEntryName is the document name inside an Apple Health export archive.
const ExportEntryName = "export.xml"

// ErrNoExportEntry is returned when a zip archive does not contain export.xml.
var ErrNoExportEntry = errors.New("xmlstream: archive has no export.xml entry")

const readBufferSize = 1 << 20

type source struct {
	io.Reader
	closers []io.Closer
}

func (s *source) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i].Close())
	}
	return err
}

// Open opens an export document for streaming. Plain XML, gzip-compressed XML
// (.gz) and the zip archive produced by the Health app (.zip) are accepted.
func Open(name string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		return openZip(name)
	case ".gz":
		return openGzip(name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	return &source{Reader: bufio.NewReaderSize(f, readBufferSize), closers: []io.Closer{f}}, nil
}

func openGzip(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	zr, err := gzip.NewReader(bufio.NewReaderSize(f, readBufferSize))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip export: %w", err)
	}
	return &source{Reader: zr, closers: []io.Closer{f, zr}}, nil
}

func openZip(name string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open zip export: %w", err)
	}
	var candidates []*zip.File
	for _, f := range zr.File {
		if path.Base(f.Name) == ExportEntryName {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		zr.Close()
		return nil, ErrNoExportEntry
	}
	// Prefer the shallowest entry (apple_health_export/export.xml).
	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.Count(candidates[i].Name, "/") < strings.Count(candidates[j].Name, "/")
	})
	entry, err := candidates[0].Open()
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("open zip entry %s: %w", candidates[0].Name, err)
	}
	return &source{Reader: bufio.NewReaderSize(entry, readBufferSize), closers: []io.Closer{zr, entry}}, nil
}

// FindDefault returns the newest export-*/apple_health_export/export.xml under dir,
// or an empty string when none exists. Directory names sort chronologically
// because the Health app stamps them with the export date.
func FindDefault(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "export-*", "apple_health_export", ExportEntryName))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
