// Package model defines core data structures for netscan.
package model

import "time"

// ToolID identifies a diagnostic tool.
type ToolID string

const (
	ToolPing            ToolID = "ping"
	ToolDNS             ToolID = "dns"
	ToolWhois           ToolID = "whois"
	ToolGeoIP           ToolID = "geoip"
	ToolIPLookup        ToolID = "ip-lookup"
	ToolPortScan        ToolID = "port-scan"
	ToolTraceroute      ToolID = "traceroute"
	ToolNetworkAnalyzer ToolID = "network-analyzer"
)

// AllTools lists every tool with a live executor.
func AllTools() []ToolID {
	return []ToolID{
		ToolPing, ToolDNS, ToolWhois, ToolGeoIP,
		ToolIPLookup, ToolPortScan, ToolTraceroute, ToolNetworkAnalyzer,
	}
}

// ParseToolID maps a string to a known ToolID.
func ParseToolID(s string) (ToolID, bool) {
	for _, t := range AllTools() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ParamName returns the query parameter that carries the tool's target.
func (t ToolID) ParamName() string {
	switch t {
	case ToolDNS, ToolWhois:
		return "domain"
	case ToolGeoIP, ToolIPLookup:
		return "ip"
	default:
		return "host"
	}
}

// TargetKind returns the validation rule for the tool's target.
func (t ToolID) TargetKind() TargetKind {
	switch t {
	case ToolDNS, ToolWhois:
		return KindHostname
	case ToolGeoIP, ToolIPLookup:
		return KindIPv4
	default:
		return KindHostOrIP
	}
}

// CacheTTL returns the freshness window for the tool's results.
func (t ToolID) CacheTTL() time.Duration {
	switch t {
	case ToolPortScan, ToolNetworkAnalyzer:
		return 5 * time.Minute
	default:
		return 10 * time.Minute
	}
}

// TargetKind selects which validation rule applies to a raw target string.
type TargetKind int

const (
	KindHostname TargetKind = iota
	KindIPv4
	KindHostOrIP
)

// Tier is a caller's subscription level.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// DiagnosticRequest is one (tool, target, caller) triple handled by the gateway.
type DiagnosticRequest struct {
	Tool     ToolID
	Target   string
	Identity string
	Tier     Tier
	Ports    []int // port-scan only
	Mock     bool
}

// RateLimitInfo reports quota state back to a rate-limited caller.
type RateLimitInfo struct {
	Remaining int `json:"remaining"`
	ResetIn   int `json:"resetIn"`
}

// DiagnosticResult is the uniform envelope every tool returns.
// Exactly one of Data and Error is populated.
type DiagnosticResult struct {
	Success    bool           `json:"success"`
	Tool       ToolID         `json:"tool"`
	Data       interface{}    `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
	UpgradeURL string         `json:"upgradeUrl,omitempty"`
	Cached     bool           `json:"cached"`
	RateLimit  *RateLimitInfo `json:"rateLimit,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// PingStats is the ping tool payload.
type PingStats struct {
	Target   string  `json:"target"`
	Alive    bool    `json:"alive"`
	Sent     int     `json:"sent"`
	Received int     `json:"received"`
	LossPct  float64 `json:"lossPct"`
	MinMs    float64 `json:"minMs"`
	AvgMs    float64 `json:"avgMs"`
	MaxMs    float64 `json:"maxMs"`
	JitterMs float64 `json:"jitterMs"`
}

// PortScanData partitions the requested ports into open and closed.
type PortScanData struct {
	Target      string `json:"target"`
	OpenPorts   []int  `json:"openPorts"`
	ClosedPorts []int  `json:"closedPorts"`
}

// TraceHop is one hop on a traced path, with best-effort location.
type TraceHop struct {
	Hop       int     `json:"hop"`
	IP        string  `json:"ip"`
	LatencyMs float64 `json:"latencyMs"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat,omitempty"`
	Lon       float64 `json:"lon,omitempty"`
}

// TraceData is the traceroute tool payload.
type TraceData struct {
	Target string     `json:"target"`
	Hops   []TraceHop `json:"hops"`
}

// DNSRecords holds the five record types resolved for a domain.
// A failed record type is an empty list, never an error.
type DNSRecords struct {
	Domain string   `json:"domain"`
	A      []string `json:"a"`
	AAAA   []string `json:"aaaa"`
	MX     []string `json:"mx"`
	TXT    []string `json:"txt"`
	NS     []string `json:"ns"`
}

// WhoisInfo is the normalized subset of a registration-data response.
type WhoisInfo struct {
	Domain      string   `json:"domain"`
	Registrar   string   `json:"registrar"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
	ExpiresAt   string   `json:"expiresAt"`
	Status      []string `json:"status"`
	Nameservers []string `json:"nameservers"`
	DNSSEC      bool     `json:"dnssec"`
	Raw         string   `json:"raw,omitempty"`
}

// GeoLocation is the nested location block of a geoip result.
type GeoLocation struct {
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// GeoNetwork is the network block of a geoip result.
type GeoNetwork struct {
	ASN string `json:"asn"`
	ISP string `json:"isp"`
	Org string `json:"org"`
}

// GeoInfo is the geoip / ip-lookup payload.
type GeoInfo struct {
	IP       string      `json:"ip"`
	Location GeoLocation `json:"location"`
	Timezone string      `json:"timezone"`
	Network  GeoNetwork  `json:"network"`
	Currency string      `json:"currency"`
	Language string      `json:"language"`
}

// AnalyzerData is the network-analyzer composite payload.
type AnalyzerData struct {
	Target    string     `json:"target"`
	Ping      *PingStats `json:"ping,omitempty"`
	ARecords  []string   `json:"aRecords"`
	OpenPorts []int      `json:"openPorts"`
}

// GeoPoint is a best-effort enrichment location for a single IP.
type GeoPoint struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// AuditRecord is one gateway decision, persisted for abuse review.
type AuditRecord struct {
	ID         int64     `json:"id"`
	Tool       string    `json:"tool"`
	Target     string    `json:"target"`
	Identity   string    `json:"identity"`
	Tier       string    `json:"tier"`
	Success    bool      `json:"success"`
	Cached     bool      `json:"cached"`
	Error      string    `json:"error"`
	DurationMs float64   `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
