// Package geo resolves coarse client geolocation through public IP lookup services.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/valentine-quest/internal/domain"
)

const (
	DefaultPrimaryURL  = "https://ipapi.co"
	DefaultFallbackURL = "https://api.ipify.org?format=json"
)

// Locator asks the primary service for full geolocation and falls back to an
// IP-only service.
type Locator struct {
	client      *http.Client
	primaryURL  string
	fallbackURL string
}

var _ domain.GeoLocator = (*Locator)(nil)

// NewLocator creates a Locator. Empty URLs use the public defaults.
func NewLocator(primaryURL, fallbackURL string, timeout time.Duration) *Locator {
	if primaryURL == "" {
		primaryURL = DefaultPrimaryURL
	}
	if fallbackURL == "" {
		fallbackURL = DefaultFallbackURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Locator{
		client:      &http.Client{Timeout: timeout},
		primaryURL:  strings.TrimRight(primaryURL, "/"),
		fallbackURL: fallbackURL,
	}
}

type primaryResponse struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country_name"`
	Postal    string  `json:"postal"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Org       string  `json:"org"`
	// ipapi answers 200 with {"error": true, "reason": ...} for bad or reserved addresses.
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

type fallbackResponse struct {
	IP string `json:"ip"`
}

// Lookup resolves ip. Private and loopback addresses are treated as unknown.
// When the primary lookup fails the known ip is returned as-is; with an unknown
// ip the fallback service is asked for the caller's public address.
func (l *Locator) Lookup(ctx context.Context, ip string) (*domain.IPInfo, error) {
	ip = PublicIP(ip)

	info, primaryErr := l.lookupPrimary(ctx, ip)
	if primaryErr == nil {
		return info, nil
	}

	if ip != "" {
		return &domain.IPInfo{IP: ip}, nil
	}

	info, fallbackErr := l.lookupFallback(ctx)
	if fallbackErr == nil {
		return info, nil
	}

	var ae *domain.AdapterError
	kind := domain.KindNetwork
	if errors.As(fallbackErr, &ae) {
		kind = ae.Kind
	}
	return nil, domain.NewAdapterError(kind, "geo lookup", errors.Join(primaryErr, fallbackErr))
}

func (l *Locator) lookupPrimary(ctx context.Context, ip string) (*domain.IPInfo, error) {
	url := l.primaryURL + "/json/"
	if ip != "" {
		url = l.primaryURL + "/" + ip + "/json/"
	}

	var resp primaryResponse
	if err := l.getJSON(ctx, "geo primary", url, &resp); err != nil {
		return nil, err
	}
	if resp.Error || resp.IP == "" {
		return nil, domain.NewAdapterError(domain.KindEmpty, "geo primary", fmt.Errorf("no data: %s", resp.Reason))
	}

	return &domain.IPInfo{
		IP:        resp.IP,
		City:      resp.City,
		Region:    resp.Region,
		Country:   resp.Country,
		Postal:    resp.Postal,
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
		Timezone:  resp.Timezone,
		Org:       resp.Org,
	}, nil
}

func (l *Locator) lookupFallback(ctx context.Context) (*domain.IPInfo, error) {
	var resp fallbackResponse
	if err := l.getJSON(ctx, "geo fallback", l.fallbackURL, &resp); err != nil {
		return nil, err
	}
	if resp.IP == "" {
		return nil, domain.NewAdapterError(domain.KindEmpty, "geo fallback", errors.New("empty ip"))
	}
	return &domain.IPInfo{IP: resp.IP}, nil
}

func (l *Locator) getJSON(ctx context.Context, op, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.NewAdapterError(domain.KindNetwork, op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		kind := domain.KindNetwork
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			kind = domain.KindTimeout
		}
		return domain.NewAdapterError(kind, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.NewAdapterError(domain.KindStatus, op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(out); err != nil {
		return domain.NewAdapterError(domain.KindDecode, op, err)
	}
	return nil
}

// PublicIP returns ip if it is a routable address, "" otherwise.
func PublicIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast() {
		return ""
	}
	return parsed.String()
}
