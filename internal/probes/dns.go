package probes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/user/netscan/internal/model"
)

// exchangeFunc sends one DNS query. Split out so tests can substitute
// canned answers for the wire exchange.
type exchangeFunc func(ctx context.Context, msg *dns.Msg) (*dns.Msg, error)

// DNSResolver resolves the five record types served by the dns tool.
type DNSResolver struct {
	server   string
	timeout  time.Duration
	exchange exchangeFunc
}

// NewDNSResolver creates a resolver querying the given server
// ("host:port").
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	if server == "" {
		server = "8.8.8.8:53"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &dns.Client{Timeout: timeout}
	r := &DNSResolver{server: server, timeout: timeout}
	r.exchange = func(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
		reply, _, err := client.ExchangeContext(ctx, msg, server)
		return reply, err
	}
	return r
}

// Lookup resolves A, AAAA, MX, TXT and NS records concurrently. Each
// record type fails independently: a failed branch contributes an
// empty list and the lookup as a whole still succeeds.
func (r *DNSResolver) Lookup(ctx context.Context, domain string) (*model.DNSRecords, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records := &model.DNSRecords{
		Domain: domain,
		A:      []string{},
		AAAA:   []string{},
		MX:     []string{},
		TXT:    []string{},
		NS:     []string{},
	}

	branches := []struct {
		qtype uint16
		dest  *[]string
	}{
		{dns.TypeA, &records.A},
		{dns.TypeAAAA, &records.AAAA},
		{dns.TypeMX, &records.MX},
		{dns.TypeTXT, &records.TXT},
		{dns.TypeNS, &records.NS},
	}

	var wg sync.WaitGroup
	for _, b := range branches {
		wg.Add(1)
		go func(qtype uint16, dest *[]string) {
			defer wg.Done()
			if vals, err := r.query(ctx, domain, qtype); err == nil {
				*dest = vals
			}
		}(b.qtype, b.dest)
	}
	wg.Wait()

	return records, nil
}

func (r *DNSResolver) query(ctx context.Context, domain string, qtype uint16) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true

	reply, err := r.exchange(ctx, msg)
	if err != nil {
		return nil, err
	}

	vals := []string{}
	for _, rr := range reply.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			vals = append(vals, rec.A.String())
		case *dns.AAAA:
			vals = append(vals, rec.AAAA.String())
		case *dns.MX:
			vals = append(vals, strings.TrimSuffix(rec.Mx, "."))
		case *dns.TXT:
			vals = append(vals, strings.Join(rec.Txt, ""))
		case *dns.NS:
			vals = append(vals, strings.TrimSuffix(rec.Ns, "."))
		}
	}
	return vals, nil
}
