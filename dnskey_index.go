package dnsauth

import (
	"github.com/dnschain/dnsauth/dnssec"
	"github.com/miekg/dns"
)

// indexDNSKEYs builds a.DNSKEYs (rdata -> merged *DNSKEYMeta) and
// a.DNSKEYSets (one per distinct DNSKEY RRset answer) from whatever
// DNSKEY RRsetInfos have already been indexed into the node's query
// aggregates (spec.md §4.2). It is idempotent: a CNAME-aliased name
// never carries its own DNSKEY query, so such nodes simply produce no
// sets.
func indexDNSKEYs(a *Analysis) {
	a.DNSKEYs = make(map[string]*DNSKEYMeta)
	a.DNSKEYSets = nil
	a.DNSSECAlgorithmsInDNSKEY = make(map[uint8]bool)

	q, ok := a.Queries[queryKey{a.Name, dns.TypeDNSKEY}]
	if !ok {
		return
	}

	for _, ans := range q.Answers {
		if ans.Rrtype() != dns.TypeDNSKEY {
			continue
		}

		set := DNSKEYSet{RRsetInfo: ans}
		for _, rr := range ans.RRset {
			k, isKey := rr.(*dns.DNSKEY)
			if !isKey {
				continue
			}
			a.DNSSECAlgorithmsInDNSKEY[k.Algorithm] = true

			key := dnskeyRdataKey(k)
			meta, exists := a.DNSKEYs[key]
			if !exists {
				tag, tagNoRevoke := dnssec.KeyTags(k)
				meta = &DNSKEYMeta{
					DNSKEY:         k,
					KeyTag:         tag,
					KeyTagNoRevoke: tagNoRevoke,
					Owner:          canonicalName(k.Header().Name),
					TTL:            k.Header().Ttl,
				}
				a.DNSKEYs[key] = meta
			}
			meta.RRsetInfos = append(meta.RRsetInfos, ans)
			meta.ServersClients = append(meta.ServersClients, ans.ServersClients...)

			set.Keys = append(set.Keys, meta)
		}
		a.DNSKEYSets = append(a.DNSKEYSets, set)
	}
}
