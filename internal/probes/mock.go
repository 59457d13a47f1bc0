package probes

import "github.com/user/netscan/internal/model"

// SamplePayload returns fixed demo data for a tool. Used by the
// `mock` query parameter so the API can be exercised without touching
// the network. Never cached.
func SamplePayload(tool model.ToolID, target string) interface{} {
	switch tool {
	case model.ToolPing:
		return &model.PingStats{
			Target: target, Alive: true,
			Sent: 4, Received: 4, LossPct: 0,
			MinMs: 10.2, AvgMs: 12.8, MaxMs: 15.1, JitterMs: 1.4,
		}
	case model.ToolDNS:
		return &model.DNSRecords{
			Domain: target,
			A:      []string{"93.184.216.34"},
			AAAA:   []string{"2606:2800:220:1:248:1893:25c8:1946"},
			MX:     []string{"mail." + target},
			TXT:    []string{"v=spf1 -all"},
			NS:     []string{"a.iana-servers.net", "b.iana-servers.net"},
		}
	case model.ToolWhois:
		return &model.WhoisInfo{
			Domain:      target,
			Registrar:   "Example Registrar, Inc.",
			CreatedAt:   "1995-08-14T04:00:00Z",
			UpdatedAt:   "2023-08-14T07:01:31Z",
			ExpiresAt:   "2026-08-13T04:00:00Z",
			Status:      []string{"client delete prohibited", "client transfer prohibited"},
			Nameservers: []string{"a.iana-servers.net", "b.iana-servers.net"},
			DNSSEC:      true,
		}
	case model.ToolGeoIP, model.ToolIPLookup:
		return &model.GeoInfo{
			IP: target,
			Location: model.GeoLocation{
				City: "Mountain View", Region: "California",
				Country: "United States", CountryCode: "US",
				Lat: 37.4056, Lon: -122.0775,
			},
			Timezone: "America/Los_Angeles",
			Network:  model.GeoNetwork{ASN: "AS15169", ISP: "Google LLC", Org: "Google LLC"},
			Currency: "USD",
			Language: "en-US",
		}
	case model.ToolPortScan:
		return &model.PortScanData{
			Target:      target,
			OpenPorts:   []int{22, 80, 443},
			ClosedPorts: []int{21, 23, 25, 53, 110, 143, 3389},
		}
	case model.ToolTraceroute:
		return &model.TraceData{
			Target: target,
			Hops: []model.TraceHop{
				{Hop: 1, IP: "192.168.1.1", LatencyMs: 1.2, City: "Unknown", Country: "Unknown"},
				{Hop: 2, IP: "10.20.0.1", LatencyMs: 8.7, City: "Unknown", Country: "Unknown"},
				{Hop: 3, IP: "142.250.65.78", LatencyMs: 14.3, City: "Mountain View", Country: "United States", Lat: 37.4056, Lon: -122.0775},
			},
		}
	case model.ToolNetworkAnalyzer:
		return &model.AnalyzerData{
			Target: target,
			Ping: &model.PingStats{
				Target: target, Alive: true,
				Sent: 4, Received: 4, LossPct: 0,
				MinMs: 10.2, AvgMs: 12.8, MaxMs: 15.1, JitterMs: 1.4,
			},
			ARecords:  []string{"93.184.216.34"},
			OpenPorts: []int{80, 443},
		}
	}
	return nil
}
