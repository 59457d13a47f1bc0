package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/user/netscan/internal/model"
)

// GeoClient queries a geolocation source for the geoip and ip-lookup
// tools. Unlike hop enrichment, a failed lookup here fails the whole
// operation.
type GeoClient struct {
	base   string
	client *http.Client
}

// NewGeoClient creates a client for an ipapi.co-compatible base URL.
func NewGeoClient(base string, timeout time.Duration) *GeoClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &GeoClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

type geoAPIResponse struct {
	IP          string  `json:"ip"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	CountryName string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	Currency    string  `json:"currency"`
	Languages   string  `json:"languages"`
	ASN         string  `json:"asn"`
	Org         string  `json:"org"`
	ErrorFlag   bool    `json:"error"`
	Reason      string  `json:"reason"`
}

// Lookup fetches location data for the IP. Hard failure on a non-200
// upstream response or an upstream-reported error.
func (g *GeoClient) Lookup(ctx context.Context, ip string) (*model.GeoInfo, error) {
	url := fmt.Sprintf("%s/%s/json/", g.base, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Upstream("bad geoip request", err)
	}
	req.Header.Set("User-Agent", "netscan/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Timeout("geoip deadline exceeded", err)
		}
		return nil, Upstream("geoip source unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, Upstream(fmt.Sprintf("geoip source returned status %d", resp.StatusCode), nil)
	}

	var raw geoAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, Parse("failed to decode geoip response", err)
	}
	if raw.ErrorFlag {
		return nil, Upstream("geoip lookup failed: "+raw.Reason, nil)
	}

	info := &model.GeoInfo{
		IP: raw.IP,
		Location: model.GeoLocation{
			City:        raw.City,
			Region:      raw.Region,
			Country:     raw.CountryName,
			CountryCode: raw.CountryCode,
			Lat:         raw.Latitude,
			Lon:         raw.Longitude,
		},
		Timezone: raw.Timezone,
		Network: model.GeoNetwork{
			ASN: raw.ASN,
			ISP: raw.Org,
			Org: raw.Org,
		},
		Currency: raw.Currency,
		Language: firstLanguage(raw.Languages),
	}
	if info.IP == "" {
		info.IP = ip
	}

	return info, nil
}

func firstLanguage(languages string) string {
	if i := strings.Index(languages, ","); i >= 0 {
		return languages[:i]
	}
	return languages
}
