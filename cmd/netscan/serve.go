package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/netscan/internal/access"
	"github.com/user/netscan/internal/gateway"
	"github.com/user/netscan/internal/geo"
	"github.com/user/netscan/internal/probes"
	"github.com/user/netscan/internal/storage"
	"github.com/user/netscan/internal/tier"
	"github.com/user/netscan/internal/util"
	"github.com/user/netscan/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagnostics API server",
	Long: `Start the HTTP JSON API serving the diagnostic tools.

Each tool is one GET endpoint under /api, e.g.:
  /api/ping?host=example.com
  /api/dns?domain=example.com
  /api/port-scan?host=example.com&ports=22,80,443

Examples:
  netscan serve
  netscan serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	gw, cleanup, err := buildGateway(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	port := cfg.ListenPort
	if servePort > 0 {
		port = servePort
	}

	tiers := tier.NewStaticService(cfg.ProUsers)
	handlers := web.NewHandlers(gw, tiers, nil, cfg.APIKeys)

	fmt.Printf("Starting API server on http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	srv := web.NewServer(handlers, port)
	return srv.Start()
}

// buildGateway wires the executors, access controller, caches and
// optional audit store from configuration.
func buildGateway(cfg *util.Config) (*gateway.Gateway, func(), error) {
	enricher := geo.NewEnricher(cfg.GeoAPIBase, cfg.ProbeTimeout)
	runner := probes.ExecRunner{}

	pinger := probes.NewPinger(runner, cfg.PingCount, cfg.PingDeadline)
	resolver := probes.NewDNSResolver(cfg.DNSResolver, cfg.ProbeTimeout)
	scanner := probes.NewPortScanner(cfg.PortTimeout)

	executors := &gateway.Executors{
		Ping:     pinger,
		DNS:      resolver,
		Whois:    probes.NewWhoisClient(cfg.RDAPBase, cfg.ProbeTimeout),
		Geo:      probes.NewGeoClient(cfg.IPLookupBase, cfg.ProbeTimeout),
		Scanner:  scanner,
		Tracer:   probes.NewTracer(runner, cfg.TraceMaxHops, cfg.ProbeTimeout*4, enricher),
		Analyzer: probes.NewAnalyzer(pinger, resolver, scanner),
	}

	cleanup := func() {}
	var audit *storage.AuditStore
	if cfg.AuditEnabled {
		db, err := storage.Open(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		audit = storage.NewAuditStore(db)
		cleanup = func() { db.Close() }
	}

	ctl := access.NewController(cfg.QuotaTokens, cfg.QuotaWindow)
	gw := gateway.New(ctl, executors.Execute, cfg.CacheCapacity, cfg.UpgradeURL, audit)

	return gw, cleanup, nil
}
