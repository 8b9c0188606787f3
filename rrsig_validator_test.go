package dnsauth

import (
	"testing"

	"github.com/dnschain/dnsauth/crypto"
	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/dnssec"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func newTestEvaluator() *Evaluator {
	return &Evaluator{Capability: crypto.DefaultCapability()}
}

func TestPopulateRRSIGStatusValid(t *testing.T) {
	g := NewGraph()
	zone := g.AddNode("example.com.", AnalysisAuthoritative)

	ksk, kskPriv := generateKSK(t, "example.com.")
	dnskeyRRset := []dns.RR{ksk}
	dnskeySig := signRRset(t, "example.com.", ksk, kskPriv, dnskeyRRset)
	zone.Queries[queryKey{"example.com.", dns.TypeDNSKEY}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeDNSKEY,
		Answers: []*RRsetInfo{{RRset: dnskeyRRset, RRSIGs: []*dns.RRSIG{dnskeySig}}},
	}
	indexDNSKEYs(zone)

	aRRset := []dns.RR{aRecord("example.com.")}
	aSig := signRRset(t, "example.com.", ksk, kskPriv, aRRset)
	ans := &RRsetInfo{RRset: aRRset, RRSIGs: []*dns.RRSIG{aSig}}
	zone.Queries[queryKey{"example.com.", dns.TypeA}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeA,
		Answers: []*RRsetInfo{ans},
	}

	e := newTestEvaluator()
	e.PopulateRRSIGStatus(g, zone)

	selected := ans.Selected[aSig]
	require.Len(t, selected, 1)
	require.Equal(t, status.RRSIGValid, selected[0].Status)
}

func TestPopulateRRSIGStatusMissingSignerSkipped(t *testing.T) {
	g := NewGraph()
	zone := g.AddNode("example.com.", AnalysisAuthoritative)

	ksk, kskPriv := generateKSK(t, "example.com.")
	aRRset := []dns.RR{aRecord("example.com.")}
	aSig := signRRset(t, "example.com.", ksk, kskPriv, aRRset)
	ans := &RRsetInfo{RRset: aRRset, RRSIGs: []*dns.RRSIG{aSig}}
	aSig.SignerName = "other-signer.example." // never registered in the graph
	zone.Queries[queryKey{"example.com.", dns.TypeA}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeA,
		Answers: []*RRsetInfo{ans},
	}

	e := newTestEvaluator()
	require.NotPanics(t, func() {
		e.PopulateRRSIGStatus(g, zone)
	})
	require.Empty(t, ans.Selected[aSig])
}

func TestRecordKeyRolesAssignsKSKAtApex(t *testing.T) {
	signer := newAnalysis("example.com.", AnalysisAuthoritative)
	ksk, _ := generateKSK(t, "example.com.")
	meta := &DNSKEYMeta{DNSKEY: ksk}
	signer.DNSKEYs = map[string]*DNSKEYMeta{dnskeyRdataKey(ksk): meta}

	ans := &RRsetInfo{RRset: []dns.RR{ksk}}
	selected := []dnssec.RRSIGBinding{{Key: ksk, Status: status.RRSIGValid}}

	recordKeyRoles(signer, ans, selected)

	require.True(t, meta.Role.Has(dnssec.RoleKSK))
	require.False(t, meta.Role.Has(dnssec.RoleZSK))
}

func TestRecordKeyRolesIgnoresNonApex(t *testing.T) {
	signer := newAnalysis("example.com.", AnalysisAuthoritative)
	ksk, _ := generateKSK(t, "example.com.")
	meta := &DNSKEYMeta{DNSKEY: ksk}
	signer.DNSKEYs = map[string]*DNSKEYMeta{dnskeyRdataKey(ksk): meta}

	ans := &RRsetInfo{RRset: []dns.RR{aRecord("www.example.com.")}}
	selected := []dnssec.RRSIGBinding{{Key: ksk, Status: status.RRSIGValid}}

	recordKeyRoles(signer, ans, selected)

	require.Equal(t, dnssec.RoleNone, meta.Role)
}

func TestPopulateAlgorithmCoverageEmitsMissingRRSIG(t *testing.T) {
	zone := newAnalysis("example.com.", AnalysisAuthoritative)
	zone.DNSSECAlgorithmsInDNSKEY = map[uint8]bool{dns.ECDSAP256SHA256: true}

	r := &Response{Msg: &dns.Msg{}, Request: RequestParams{EDNS: true, EDNSFlags: EDNSFlagDO}}
	ans := &RRsetInfo{
		RRset:          []dns.RR{aRecord("example.com.")},
		ServersClients: []diag.ServerClientResponse{{Server: "1.1.1.1", Response: r}},
		Selected:       map[*dns.RRSIG][]dnssec.RRSIGBinding{},
	}

	e := newTestEvaluator()
	e.populateAlgorithmCoverage(zone, ans, dns.TypeA)

	require.NotEmpty(t, ans.Errors.List())
}

func TestPopulateAlgorithmCoverageChecksDSAndDLV(t *testing.T) {
	zone := newAnalysis("example.com.", AnalysisAuthoritative)
	zone.DNSSECAlgorithmsInDS = map[uint8]bool{dns.ECDSAP256SHA256: true}
	zone.DNSSECAlgorithmsInDLV = map[uint8]bool{dns.RSASHA256: true}

	r := &Response{Msg: &dns.Msg{}, Request: RequestParams{EDNS: true, EDNSFlags: EDNSFlagDO}}
	scr := diag.ServerClientResponse{Server: "1.1.1.1", Response: r}
	// A valid RRSIG under a third algorithm means the RRset isn't
	// entirely unsigned, so coverage checking proceeds to compare
	// against each zone algorithm set individually.
	rrsig := &dns.RRSIG{Algorithm: dns.ED25519}
	ans := &RRsetInfo{
		RRset:          []dns.RR{aRecord("example.com.")},
		ServersClients: []diag.ServerClientResponse{scr},
		Selected: map[*dns.RRSIG][]dnssec.RRSIGBinding{
			rrsig: {{RRSIG: rrsig, Status: status.RRSIGValid}},
		},
	}

	e := newTestEvaluator()
	e.populateAlgorithmCoverage(zone, ans, dns.TypeA)

	require.True(t, hasCode(ans.Errors, diag.MissingRRSIGForAlgDS))
	require.True(t, hasCode(ans.Errors, diag.MissingRRSIGForAlgDLV))
}

func TestPopulateAlgorithmCoverageSkipsDSAndDLVForDLVQuery(t *testing.T) {
	zone := newAnalysis("example.com.", AnalysisAuthoritative)
	zone.DNSSECAlgorithmsInDS = map[uint8]bool{dns.ECDSAP256SHA256: true}
	zone.DNSSECAlgorithmsInDLV = map[uint8]bool{dns.RSASHA256: true}

	r := &Response{Msg: &dns.Msg{}, Request: RequestParams{EDNS: true, EDNSFlags: EDNSFlagDO}}
	scr := diag.ServerClientResponse{Server: "1.1.1.1", Response: r}
	rrsig := &dns.RRSIG{Algorithm: dns.ED25519}
	ans := &RRsetInfo{
		RRset:          []dns.RR{aRecord("example.com.")},
		ServersClients: []diag.ServerClientResponse{scr},
		Selected: map[*dns.RRSIG][]dnssec.RRSIGBinding{
			rrsig: {{RRSIG: rrsig, Status: status.RRSIGValid}},
		},
	}

	e := newTestEvaluator()
	e.populateAlgorithmCoverage(zone, ans, dns.TypeDLV)

	require.False(t, hasCode(ans.Errors, diag.MissingRRSIGForAlgDS))
	require.False(t, hasCode(ans.Errors, diag.MissingRRSIGForAlgDLV))
}
