package dnsauth

import (
	"testing"

	"github.com/dnschain/dnsauth/diag"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func TestIndexDNSKEYsNoOpWithoutDNSKEYQuery(t *testing.T) {
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	indexDNSKEYs(a)
	require.NotNil(t, a.DNSKEYs)
	require.Empty(t, a.DNSKEYs)
	require.Empty(t, a.DNSKEYSets)
}

func TestIndexDNSKEYsMergesDuplicateRdataAcrossAnswers(t *testing.T) {
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	ksk, _ := generateKSK(t, "example.com.")

	scr1 := diag.ServerClientResponse{Server: "1.1.1.1"}
	scr2 := diag.ServerClientResponse{Server: "2.2.2.2"}
	ans1 := &RRsetInfo{RRset: []dns.RR{ksk}, ServersClients: []diag.ServerClientResponse{scr1}}
	ans2 := &RRsetInfo{RRset: []dns.RR{ksk}, ServersClients: []diag.ServerClientResponse{scr2}}

	a.Queries[queryKey{"example.com.", dns.TypeDNSKEY}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeDNSKEY,
		Answers: []*RRsetInfo{ans1, ans2},
	}

	indexDNSKEYs(a)

	require.Len(t, a.DNSKEYs, 1)
	require.Len(t, a.DNSKEYSets, 2)

	meta := a.DNSKEYs[dnskeyRdataKey(ksk)]
	require.NotNil(t, meta)
	require.Len(t, meta.ServersClients, 2)
	require.Len(t, meta.RRsetInfos, 2)
}

func TestIndexDNSKEYsComputesKeyTags(t *testing.T) {
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	ksk, _ := generateKSK(t, "example.com.")
	a.Queries[queryKey{"example.com.", dns.TypeDNSKEY}] = &QueryAggregate{
		Qname: "example.com.", Qtype: dns.TypeDNSKEY,
		Answers: []*RRsetInfo{{RRset: []dns.RR{ksk}}},
	}

	indexDNSKEYs(a)

	meta := a.DNSKEYs[dnskeyRdataKey(ksk)]
	require.Equal(t, ksk.KeyTag(), meta.KeyTag)
}
