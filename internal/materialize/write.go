package materialize

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/taskferry-labs/taskferry-go/internal/tabular"
)

// WriteResultFile renders a tabular result into path in the given format,
// applying compression when selected. filename is the user-facing name used
// for archive entry naming.
func WriteResultFile(path, filename string, format Format, comp Compression, r tabular.Result) error {
	render := func(w io.Writer) error {
		switch format {
		case FormatCSV:
			return r.WriteCSV(w)
		case FormatJSON:
			return r.WriteJSON(w)
		case FormatHTML:
			return r.WriteHTML(w)
		default:
			return fmt.Errorf("no renderer for format %q", format)
		}
	}
	return writeFile(path, filename, comp, render)
}

func writeFile(path, filename string, comp Compression, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch comp {
	case CompressionNone:
		if err := render(f); err != nil {
			return err
		}
	case CompressionGzip:
		gz := gzip.NewWriter(f)
		if err := render(gz); err != nil {
			_ = gz.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("close gzip: %w", err)
		}
	case CompressionZip:
		zw := zip.NewWriter(f)
		entry, err := zw.Create(InnerName(filename, comp))
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("create zip entry: %w", err)
		}
		if err := render(entry); err != nil {
			_ = zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zip: %w", err)
		}
	default:
		return fmt.Errorf("no writer for compression %q", comp)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// TempFile creates an empty temporary file whose name ends with filename, so
// the extension survives for anything that inspects it. The caller removes
// it via the returned cleanup on every exit path.
func TempFile(filename string) (string, func(), error) {
	f, err := os.CreateTemp("", "*_"+filename)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(path) }
	return path, cleanup, nil
}
