package discovery

import (
	"strings"
	"testing"
)

const catalogJSON = `{
  "services": {
    "analytics": {
      "versions": {
        "v4": {
          "baseUrl": "https://analytics.example.com",
          "endpoints": {
            "reports.batchGet": {"method": "POST", "path": "/v4/reports:batchGet"},
            "reports.list": {"method": "GET", "path": "/v4/reports"}
          }
        }
      }
    }
  }
}`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogJSON))
	if err != nil {
		t.Fatalf("ParseCatalog() err=%v", err)
	}
	r, err := c.Resolve("analytics", "v4", "reports.batchGet")
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if r.Method != "POST" || r.URL != "https://analytics.example.com/v4/reports:batchGet" {
		t.Fatalf("Resolve()=%+v", r)
	}
}

func TestResolve_Unknown(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogJSON))
	if err != nil {
		t.Fatalf("ParseCatalog() err=%v", err)
	}
	cases := []struct {
		service, version, endpoint string
		want                       string
	}{
		{"nosuch", "v4", "reports.list", "unknown service"},
		{"analytics", "v1", "reports.list", "unknown version"},
		{"analytics", "v4", "reports.delete", "unknown endpoint"},
	}
	for _, tc := range cases {
		_, err := c.Resolve(tc.service, tc.version, tc.endpoint)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("Resolve(%s/%s/%s) err=%v, want %q", tc.service, tc.version, tc.endpoint, err, tc.want)
		}
	}
}

func TestCatalogValidate_Rejects(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"empty", `{}`},
		{"no versions", `{"services":{"s":{"versions":{}}}}`},
		{"no base url", `{"services":{"s":{"versions":{"v1":{"baseUrl":"","endpoints":{}}}}}}`},
		{"bad method", `{"services":{"s":{"versions":{"v1":{"baseUrl":"https://x","endpoints":{"e":{"method":"DELETE","path":"/e"}}}}}}}`},
		{"relative path", `{"services":{"s":{"versions":{"v1":{"baseUrl":"https://x","endpoints":{"e":{"method":"GET","path":"e"}}}}}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tc.json)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
