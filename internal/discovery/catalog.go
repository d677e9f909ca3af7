package discovery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Catalog is the discovery document: a mapping of service name and version
// to the endpoints the service exposes. Endpoint names are dotted paths such
// as "reports.batchGet".
type Catalog struct {
	Services map[string]Service `json:"services"`
}

type Service struct {
	Versions map[string]Version `json:"versions"`
}

type Version struct {
	BaseURL   string              `json:"baseUrl"`
	Endpoints map[string]Endpoint `json:"endpoints"`
}

type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Resolved is an endpoint bound to a concrete method and URL.
type Resolved struct {
	Method string
	URL    string
}

func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("catalog has no services")
	}
	for svc, service := range c.Services {
		if len(service.Versions) == 0 {
			return fmt.Errorf("service %q has no versions", svc)
		}
		for ver, version := range service.Versions {
			if strings.TrimSpace(version.BaseURL) == "" {
				return fmt.Errorf("service %q version %q has no baseUrl", svc, ver)
			}
			for name, ep := range version.Endpoints {
				switch ep.Method {
				case http.MethodGet, http.MethodPost:
				default:
					return fmt.Errorf("endpoint %s/%s/%s has unsupported method %q", svc, ver, name, ep.Method)
				}
				if !strings.HasPrefix(ep.Path, "/") {
					return fmt.Errorf("endpoint %s/%s/%s path %q must start with /", svc, ver, name, ep.Path)
				}
			}
		}
	}
	return nil
}

// Resolve binds a service/version/endpoint triple to its method and URL.
// An unknown triple is a configuration error.
func (c Catalog) Resolve(service, version, endpoint string) (Resolved, error) {
	svc, ok := c.Services[service]
	if !ok {
		return Resolved{}, fmt.Errorf("unknown service %q", service)
	}
	ver, ok := svc.Versions[version]
	if !ok {
		return Resolved{}, fmt.Errorf("unknown version %q for service %q", version, service)
	}
	ep, ok := ver.Endpoints[endpoint]
	if !ok {
		return Resolved{}, fmt.Errorf("unknown endpoint %q for service %s/%s", endpoint, service, version)
	}
	return Resolved{
		Method: ep.Method,
		URL:    strings.TrimSuffix(ver.BaseURL, "/") + ep.Path,
	}, nil
}
