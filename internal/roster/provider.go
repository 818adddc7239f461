// Package roster supplies candidate name lists for game variants.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider returns the ordered, deduplicated candidate names for a variant key.
type Provider interface {
	Roster(ctx context.Context, variant string) ([]string, error)
}

// DefaultVariant is used when a client does not request a specific variant.
const DefaultVariant = "classic"

// HTTPProvider fetches rosters as JSON string arrays from a remote catalog,
// one resource per variant key.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider constructs a provider against the catalog base URL.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Roster fetches and deduplicates the candidate list for the variant.
func (p *HTTPProvider) Roster(ctx context.Context, variant string) ([]string, error) {
	if variant == "" {
		variant = DefaultVariant
	}

	endpoint := p.baseURL + "/" + url.PathEscape(variant)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster %q: %w", variant, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster %q: unexpected status %d", variant, resp.StatusCode)
	}

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("decode roster %q: %w", variant, err)
	}

	return dedupe(names), nil
}

// StaticProvider serves rosters from an in-memory catalog. It backs local
// runs and tests where no roster service is configured.
type StaticProvider struct {
	catalog map[string][]string
}

// NewStaticProvider builds a provider over the given catalog.
func NewStaticProvider(catalog map[string][]string) *StaticProvider {
	return &StaticProvider{catalog: catalog}
}

// NewDefaultProvider returns a static provider holding the built-in classic cast.
func NewDefaultProvider() *StaticProvider {
	return NewStaticProvider(map[string][]string{
		DefaultVariant: classicCast,
	})
}

// Roster returns the catalog entry for the variant.
func (p *StaticProvider) Roster(_ context.Context, variant string) ([]string, error) {
	if variant == "" {
		variant = DefaultVariant
	}
	names, ok := p.catalog[variant]
	if !ok {
		return nil, fmt.Errorf("unknown roster variant %q", variant)
	}
	return dedupe(names), nil
}

// dedupe drops repeated names while preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// classicCast is the default playable cast.
var classicCast = []string{
	"Abdul", "Ang", "Anna", "Boris", "Carl", "Charles", "Chimezi", "Colin",
	"Destiny", "Erin", "Fran", "Gwen", "Imani", "Jada", "Jing", "Kai",
	"Kevin", "Kiki", "Liza", "Len", "Lucy", "Manu", "Marcus", "Maria",
	"Martha", "Meryl", "Miles", "Nonna", "Paige", "Pablo", "Raquel", "Ron",
	"Samir", "Sang", "Simu", "Stew", "Sue", "Tina", "Tonto", "Trae", "Waru",
}
