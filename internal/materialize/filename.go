package materialize

import (
	"fmt"
	"strings"
)

// Format is an output file format, selected by filename extension.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Compression is an optional second extension layered over the format,
// e.g. "report.json.zip".
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZip  Compression = "zip"
)

// TabularFormats are the formats a tabular result can be rendered to.
var TabularFormats = []Format{FormatCSV, FormatJSON, FormatHTML}

// ParseFilename resolves the output format and compression from a filename.
// The last extension selects the format; when it instead names a compression
// scheme, the format is taken from the extension before it. Anything outside
// the supported set is a configuration error.
func ParseFilename(filename string, supported []Format) (Format, Compression, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(filename)), ".")
	if len(parts) < 2 || parts[0] == "" {
		return "", CompressionNone, fmt.Errorf("filename %q has no extension", filename)
	}

	last := parts[len(parts)-1]
	if f, ok := matchFormat(last, supported); ok {
		return f, CompressionNone, nil
	}

	comp, ok := matchCompression(last)
	if !ok {
		return "", CompressionNone, fmt.Errorf(
			"unsupported file format %q in filename %q, expected one of %v", last, filename, supported)
	}
	if len(parts) < 3 {
		return "", CompressionNone, fmt.Errorf("filename %q names compression %q but no format", filename, last)
	}
	inner := parts[len(parts)-2]
	f, ok := matchFormat(inner, supported)
	if !ok {
		return "", CompressionNone, fmt.Errorf(
			"unsupported file format %q in filename %q, expected one of %v", inner, filename, supported)
	}
	return f, comp, nil
}

func matchFormat(ext string, supported []Format) (Format, bool) {
	for _, f := range supported {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

func matchCompression(ext string) (Compression, bool) {
	switch ext {
	case "gz", "gzip":
		return CompressionGzip, true
	case "zip":
		return CompressionZip, true
	default:
		return CompressionNone, false
	}
}

// InnerName strips the compression extension so archive entries carry the
// uncompressed filename.
func InnerName(filename string, comp Compression) string {
	if comp == CompressionNone {
		return filename
	}
	if i := strings.LastIndex(filename, "."); i > 0 {
		return filename[:i]
	}
	return filename
}
