package dnsauth

import (
	"testing"

	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func zoneWithSelfSignedKSK(t *testing.T) (*Analysis, *dns.DNSKEY) {
	t.Helper()
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	ksk, priv := generateKSK(t, "example.com.")
	rrset := []dns.RR{ksk}
	sig := signRRset(t, "example.com.", ksk, priv, rrset)
	ans := &RRsetInfo{RRset: rrset, RRSIGs: []*dns.RRSIG{sig}}
	a.Queries[queryKey{"example.com.", dns.TypeDNSKEY}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeDNSKEY,
		Answers: []*RRsetInfo{ans},
	}
	indexDNSKEYs(a)

	e := newTestEvaluator()
	e.PopulateRRSIGStatus(newGraphWithRoot(a), a)
	return a, ksk
}

// newGraphWithRoot builds a graph containing a as its own signer, since
// the self-signed DNSKEY's RRSIG names a as the signer.
func newGraphWithRoot(a *Analysis) *Graph {
	g := NewGraph()
	key := graphKey(a.Name, a.Type)
	n := &graphNode{id: key, a: a}
	_, _ = g.dag.AddVertex(n)
	g.nodes[key] = n
	return g
}

func TestDelegationSecureWhenSEPValidates(t *testing.T) {
	a, ksk := zoneWithSelfSignedKSK(t)
	ds := ksk.ToDS(dns.SHA256)
	scr := diag.ServerClientResponse{Server: "1.1.1.1"}
	a.Queries[queryKey{"example.com.", dns.TypeDS}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeDS,
		Responses: []*Response{authoritativeResponse()},
		Answers: []*RRsetInfo{{
			RRset:          []dns.RR{ds},
			ServersClients: []diag.ServerClientResponse{scr},
		}},
	}

	e := newTestEvaluator()
	e.PopulateDelegationStatus(a)

	require.Equal(t, status.DelegationSecure, a.DelegationStatus[dns.TypeDS])
}

func TestDelegationIncompleteOnParentNXDOMAIN(t *testing.T) {
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	a.Queries[queryKey{"example.com.", dns.TypeDS}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeDS,
		NXDOMAIN: []*NegativeResponseInfo{{Qname: "example.com.", Qtype: dns.TypeDS}},
	}

	e := newTestEvaluator()
	e.PopulateDelegationStatus(a)

	require.Equal(t, status.DelegationIncomplete, a.DelegationStatus[dns.TypeDS])
}

func TestDelegationIncompleteWhenDSQueryMissing(t *testing.T) {
	a := newAnalysis("example.com.", AnalysisAuthoritative)

	e := newTestEvaluator()
	e.PopulateDelegationStatus(a)

	require.Equal(t, status.DelegationIncomplete, a.DelegationStatus[dns.TypeDS])
}

func TestDelegationLameWhenNoValidResponder(t *testing.T) {
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	a.Queries[queryKey{"example.com.", dns.TypeDS}] = &QueryAggregate{
		Qname:     "example.com.",
		Qtype:     dns.TypeDS,
		Responses: []*Response{},
	}

	e := newTestEvaluator()
	e.PopulateDelegationStatus(a)

	require.Equal(t, status.DelegationLame, a.DelegationStatus[dns.TypeDS])
}

func authoritativeResponse() *Response {
	m := &dns.Msg{}
	m.Response = true
	m.Authoritative = true
	m.Rcode = dns.RcodeSuccess
	return &Response{Msg: m}
}

func TestNSGlueDiagnosticsFlagsMismatch(t *testing.T) {
	child := newAnalysis("example.com.", AnalysisAuthoritative)
	parent := newAnalysis("com.", AnalysisAuthoritative)
	child.Parent = parent

	child.Queries[queryKey{"example.com.", dns.TypeNS}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeNS,
		Answers: []*RRsetInfo{{RRset: []dns.RR{
			&dns.NS{Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeNS}, Ns: "ns1.example.com."},
		}}},
	}
	parent.Queries[queryKey{"example.com.", dns.TypeNS}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeNS,
		Answers: []*RRsetInfo{{RRset: []dns.RR{
			&dns.NS{Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeNS}, Ns: "ns2.example.com."},
		}}},
	}

	e := newTestEvaluator()
	e.populateNSGlueDiagnostics(child)

	codes := make(map[diag.Code]bool)
	for _, d := range child.DelegationWarnings[dns.TypeNS].List() {
		codes[d.Code] = true
	}
	require.True(t, codes[diag.NSNameNotInParent])
	require.True(t, codes[diag.NSNameNotInChild])
	require.True(t, codes[diag.ErrorResolvingNSName])
}
