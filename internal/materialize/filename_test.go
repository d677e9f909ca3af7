package materialize

import (
	"strings"
	"testing"
)

func TestParseFilename(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		format   Format
		comp     Compression
	}{
		{"csv", "report.csv", FormatCSV, CompressionNone},
		{"json", "out.json", FormatJSON, CompressionNone},
		{"html", "table.html", FormatHTML, CompressionNone},
		{"uppercase", "REPORT.CSV", FormatCSV, CompressionNone},
		{"json zip", "report.json.zip", FormatJSON, CompressionZip},
		{"csv gzip", "report.csv.gzip", FormatCSV, CompressionGzip},
		{"csv gz", "report.csv.gz", FormatCSV, CompressionGzip},
		{"dotted prefix", "daily.report.csv", FormatCSV, CompressionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			format, comp, err := ParseFilename(tc.filename, TabularFormats)
			if err != nil {
				t.Fatalf("ParseFilename(%q) err=%v", tc.filename, err)
			}
			if format != tc.format || comp != tc.comp {
				t.Fatalf("ParseFilename(%q)=(%s,%s), want (%s,%s)",
					tc.filename, format, comp, tc.format, tc.comp)
			}
		})
	}
}

func TestParseFilename_Rejects(t *testing.T) {
	cases := []string{
		"report.parquet",
		"report",
		"report.zip",
		"report.parquet.zip",
		".csv",
		"",
	}
	for _, filename := range cases {
		if _, _, err := ParseFilename(filename, TabularFormats); err == nil {
			t.Fatalf("ParseFilename(%q) expected error", filename)
		}
	}
}

func TestParseFilename_RestrictedSupportSet(t *testing.T) {
	if _, _, err := ParseFilename("out.csv", []Format{FormatJSON}); err == nil {
		t.Fatalf("expected error for format outside supported set")
	}
	if !strings.Contains(errString(t, "out.csv", []Format{FormatJSON}), "unsupported file format") {
		t.Fatalf("error should name the unsupported format")
	}
}

func errString(t *testing.T, filename string, supported []Format) string {
	t.Helper()
	_, _, err := ParseFilename(filename, supported)
	if err == nil {
		return ""
	}
	return err.Error()
}

func TestInnerName(t *testing.T) {
	if got := InnerName("report.json.zip", CompressionZip); got != "report.json" {
		t.Fatalf("InnerName()=%q, want report.json", got)
	}
	if got := InnerName("report.csv", CompressionNone); got != "report.csv" {
		t.Fatalf("InnerName()=%q, want report.csv", got)
	}
}
