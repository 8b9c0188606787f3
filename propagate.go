package dnsauth

import (
	"github.com/miekg/dns"

	"github.com/dnschain/dnsauth/status"
)

// TrustGraph is the external capability the component-status
// propagator (C8) consults: a trust chain, typically spanning every
// Analysis reachable from the trust anchors, that already knows each
// indexed component's final SECURE/INSECURE/BOGUS/NON_EXISTENT status
// (spec.md §4.8). Building that graph is out of scope here — evaluating
// one node's RRSIG/DS/NSEC bindings is — so it is injected rather than
// computed by this package.
type TrustGraph interface {
	// StatusFor resolves the status the graph has already computed for
	// obj, which will be a *DNSKEYMeta, *RRsetInfo, or
	// *NegativeResponseInfo known to the graph.
	StatusFor(obj any) status.ComponentStatus
	// SubStatusFor resolves the status of one NSEC/NSEC3 owner name
	// within set.
	SubStatusFor(set *NSECSetInfo, name string) status.ComponentStatus
	// ZoneCutSecure reports whether a secure NSEC node is known to
	// cover zone's delegation point.
	ZoneCutSecure(zone string) bool
}

// nsecMember identifies one owner name's status within an NSECSetInfo,
// the map key the propagator uses for per-member status (spec.md §4.8
// "NSECSet: status is computed per-member NSEC").
type nsecMember struct {
	Set  *NSECSetInfo
	Name string
}

// PropagateComponentStatus mirrors g's status into a's
// ResponseComponentStatus for every DNSKEYMeta, RRsetInfo, NSECSet
// member, and NegativeResponseInfo the node indexes (spec.md §4.8).
func (e *Evaluator) PropagateComponentStatus(g TrustGraph, a *Analysis) {
	a.ResponseComponentStatus = make(map[any]status.ComponentStatus)

	for _, meta := range a.DNSKEYs {
		a.ResponseComponentStatus[meta] = g.StatusFor(meta)
	}

	for _, q := range a.Queries {
		for _, ans := range q.Answers {
			e.propagateRRsetInfo(a, g, ans)
		}
		for _, neg := range q.NODATA {
			e.propagateNegative(a, g, neg)
		}
		for _, neg := range q.NXDOMAIN {
			e.propagateNegative(a, g, neg)
		}
	}
}

func (e *Evaluator) propagateRRsetInfo(a *Analysis, g TrustGraph, ans *RRsetInfo) {
	// Every RRset, DNSKEY RRsets included, gets exactly the status the
	// graph reports for it: a trust-anchored DNSKEY RRset is not forced
	// to SECURE here, and no RRset inherits the status of its DNSKEYs.
	a.ResponseComponentStatus[ans] = g.StatusFor(ans)

	for _, set := range ans.WildcardInfo {
		e.propagateNSECSet(a, g, set)
	}
}

func (e *Evaluator) propagateNSECSet(a *Analysis, g TrustGraph, set *NSECSetInfo) {
	if set == nil {
		return
	}
	var names []string
	if set.UseNSEC3 && set.NSEC3 != nil {
		for _, rr := range set.NSEC3.Records() {
			names = append(names, canonicalName(rr.Header().Name))
		}
	} else if set.NSEC != nil {
		for _, rr := range set.NSEC.Records() {
			names = append(names, canonicalName(rr.Header().Name))
		}
	}
	for _, name := range names {
		a.ResponseComponentStatus[nsecMember{Set: set, Name: name}] = g.SubStatusFor(set, name)
	}
}

// propagateNegative applies the DS/DNSKEY/other decision rules spec.md
// §4.8 lists for negative responses, then propagates the chosen status
// to the accompanying SOA RRsetInfos.
func (e *Evaluator) propagateNegative(a *Analysis, g TrustGraph, neg *NegativeResponseInfo) {
	s := g.StatusFor(neg)

	switch {
	case neg.Qtype == dns.TypeDS && namesEqual(neg.Qname, a.Name) && s == status.ComponentInsecure:
		if g.ZoneCutSecure(a.Name) {
			s = status.ComponentSecure
		}
	case neg.Qtype == dns.TypeDNSKEY:
		if s == status.ComponentSecure {
			s = status.ComponentBogus
		}
	default:
		optOutSecure := false
		for _, set := range neg.NSECSetInfo {
			if set.UseNSEC3 && set.NSEC3 != nil {
				proof := set.NSEC3.ProveNameDoesNotExist(neg.Qname)
				if proof.OptOut && g.SubStatusFor(set, proof.NextCloserName) == status.ComponentSecure {
					optOutSecure = true
				}
			}
		}
		if s == status.ComponentSecure || (s == status.ComponentInsecure && optOutSecure) {
			if !anySOASecure(a, g, neg) {
				s = status.ComponentBogus
			}
		}
	}

	a.ResponseComponentStatus[neg] = s
	for _, soa := range neg.SOARRsetInfo {
		a.ResponseComponentStatus[soa] = s
	}
	for _, set := range neg.NSECSetInfo {
		e.propagateNSECSet(a, g, set)
	}
}

func anySOASecure(a *Analysis, g TrustGraph, neg *NegativeResponseInfo) bool {
	for _, soa := range neg.SOARRsetInfo {
		if g.StatusFor(soa) == status.ComponentSecure {
			return true
		}
	}
	return false
}
