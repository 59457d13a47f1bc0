package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/netscan/internal/model"
)

// WhoisClient queries a registration-data (RDAP) source and maps the
// response to a normalized subset.
type WhoisClient struct {
	base   string
	client *http.Client
}

// NewWhoisClient creates a client for the RDAP base URL, e.g.
// "https://rdap.org/domain".
func NewWhoisClient(base string, timeout time.Duration) *WhoisClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &WhoisClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// rdapResponse is the subset of the RDAP domain object we read.
type rdapResponse struct {
	LDHName string   `json:"ldhName"`
	Status  []string `json:"status"`
	Events  []struct {
		Action string `json:"eventAction"`
		Date   string `json:"eventDate"`
	} `json:"events"`
	Entities []struct {
		Roles      []string        `json:"roles"`
		VCardArray json.RawMessage `json:"vcardArray"`
	} `json:"entities"`
	Nameservers []struct {
		LDHName string `json:"ldhName"`
	} `json:"nameservers"`
	SecureDNS struct {
		DelegationSigned bool `json:"delegationSigned"`
	} `json:"secureDNS"`
}

// Lookup fetches registration data for the domain. A non-200 upstream
// response is a hard failure for this call only.
func (w *WhoisClient) Lookup(ctx context.Context, domain string) (*model.WhoisInfo, error) {
	url := fmt.Sprintf("%s/%s", w.base, domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Upstream("bad whois request", err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := w.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Timeout("whois deadline exceeded", err)
		}
		return nil, Upstream("whois source unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, Upstream(fmt.Sprintf("whois source returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, Upstream("failed to read whois response", err)
	}

	var rdap rdapResponse
	if err := json.Unmarshal(body, &rdap); err != nil {
		return nil, Parse("failed to decode whois response", err)
	}

	info := &model.WhoisInfo{
		Domain:      strings.ToLower(rdap.LDHName),
		Status:      rdap.Status,
		DNSSEC:      rdap.SecureDNS.DelegationSigned,
		Raw:         string(body),
		Nameservers: []string{},
	}
	if info.Domain == "" {
		info.Domain = domain
	}
	if info.Status == nil {
		info.Status = []string{}
	}

	for _, ev := range rdap.Events {
		switch ev.Action {
		case "registration":
			info.CreatedAt = ev.Date
		case "last changed":
			info.UpdatedAt = ev.Date
		case "expiration":
			info.ExpiresAt = ev.Date
		}
	}

	for _, ns := range rdap.Nameservers {
		if ns.LDHName != "" {
			info.Nameservers = append(info.Nameservers, strings.ToLower(ns.LDHName))
		}
	}

	for _, ent := range rdap.Entities {
		for _, role := range ent.Roles {
			if role == "registrar" {
				info.Registrar = vcardFullName(ent.VCardArray)
			}
		}
	}

	return info, nil
}

// vcardFullName digs the "fn" value out of a jCard array:
// ["vcard", [["version",{},"text","4.0"], ["fn",{},"text","Name"]]].
func vcardFullName(raw json.RawMessage) string {
	var card []json.RawMessage
	if err := json.Unmarshal(raw, &card); err != nil || len(card) < 2 {
		return ""
	}

	var props [][]interface{}
	if err := json.Unmarshal(card[1], &props); err != nil {
		return ""
	}

	for _, prop := range props {
		if len(prop) < 4 {
			continue
		}
		if name, ok := prop[0].(string); ok && name == "fn" {
			if val, ok := prop[3].(string); ok {
				return val
			}
		}
	}
	return ""
}
