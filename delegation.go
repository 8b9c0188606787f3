package dnsauth

import (
	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/dnssec"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// PopulateDelegationStatus runs the delegation/DS evaluator (C6) for
// DS, and for DLV when e.ConsultDLV and a.DLVParent is known (spec.md
// §4.6).
func (e *Evaluator) PopulateDelegationStatus(a *Analysis) {
	a.DelegationStatus = make(map[uint16]status.DelegationStatus)
	a.DelegationWarnings = make(map[uint16]diag.Bucket)
	a.DelegationErrors = make(map[uint16]diag.Bucket)
	a.DSStatusByDS = make(map[*dns.DS][]dnssec.DSBinding)
	a.DSStatusByDNSKEY = make(map[*dns.DNSKEY][]dnssec.DSBinding)
	a.DNSKEYWithDS = make(map[*dns.DNSKEY]bool)
	a.DNSSECAlgorithmsInDS = make(map[uint8]bool)
	a.DNSSECAlgorithmsInDLV = make(map[uint8]bool)
	a.DNSSECAlgorithmsDigestInDS = make(map[uint8]bool)
	a.DNSSECAlgorithmsDigestInDLV = make(map[uint8]bool)

	bailiwick, defaultBailiwick := BailiwickMapping(a)

	e.populateDelegationForType(a, dns.TypeDS, bailiwick, defaultBailiwick)
	if e.ConsultDLV && a.DLVParent != nil {
		e.populateDelegationForType(a, dns.TypeDLV, bailiwick, defaultBailiwick)
	}

	e.populateNSGlueDiagnostics(a)
}

func (e *Evaluator) populateDelegationForType(a *Analysis, rdtype uint16, bailiwick map[string]string, defaultBailiwick string) {
	q, ok := a.Queries[queryKey{a.Name, rdtype}]
	if !ok {
		a.DelegationStatus[rdtype] = status.DelegationIncomplete
		return
	}

	candidates := allDNSKEYs(a)

	secureSEPResponses := 0
	totalDSResponses := 0
	securePath := false

	for _, ds := range q.Answers {
		for _, rr := range ds.RRset {
			dsRR, isDS := rr.(*dns.DS)
			if !isDS {
				continue
			}
			totalDSResponses++
			if rdtype == dns.TypeDLV {
				a.DNSSECAlgorithmsInDLV[dsRR.Algorithm] = true
				a.DNSSECAlgorithmsDigestInDLV[dsRR.DigestType] = true
			} else {
				a.DNSSECAlgorithmsInDS[dsRR.Algorithm] = true
				a.DNSSECAlgorithmsDigestInDS[dsRR.DigestType] = true
			}
			if e.Capability.SupportedAlgorithms()[dsRR.Algorithm] && e.Capability.SupportedDigestAlgorithms()[dsRR.DigestType] {
				securePath = true
			}

			bindings := dnssec.BindDS(dsRR, candidates, e.Capability)
			a.DSStatusByDS[dsRR] = bindings
			selected := dnssec.SelectDSBindings(bindings)

			dsValid := false
			for _, b := range selected {
				a.DSStatusByDNSKEY[b.Key] = append(a.DSStatusByDNSKEY[b.Key], b)
				if b.Status == status.DSValid {
					dsValid = true
					if b.Key != nil {
						a.DNSKEYWithDS[b.Key] = true
					}
				}
			}
			if dsValid && sepFullyValidates(a, dsRR, selected) {
				secureSEPResponses++
			}
		}
	}

	final := decideDelegationStatus(a, rdtype, q, totalDSResponses, secureSEPResponses, securePath, bailiwick, defaultBailiwick)
	a.DelegationStatus[rdtype] = final
}

// sepFullyValidates reports whether some DNSKEY bound to ds by a VALID
// binding also carries a self-signing RRSIG over the DNSKEY RRset that
// itself validates, completing the signing-and-entrusted-key (SEP)
// chain spec.md §4.6 step 2 describes.
func sepFullyValidates(a *Analysis, ds *dns.DS, selected []dnssec.DSBinding) bool {
	for _, b := range selected {
		if b.Status != status.DSValid || b.Key == nil {
			continue
		}
		for _, set := range a.DNSKEYSets {
			if set.RRsetInfo == nil {
				continue
			}
			if !dnskeyIsMember(set.RRsetInfo.RRset, b.Key) {
				continue
			}
			for rrsig, bindings := range set.RRsetInfo.Selected {
				if rrsig.Algorithm != ds.Algorithm {
					continue
				}
				for _, rb := range bindings {
					if rb.Status == status.RRSIGValid && rb.Key != nil && dnskeyRdataKey(rb.Key) == dnskeyRdataKey(b.Key) {
						return true
					}
				}
			}
		}
	}
	return false
}

// decideDelegationStatus implements the final-status decision tree
// (spec.md §4.6 step 3): SECURE when at least one response has a fully
// validating SEP, BOGUS when a supported DS existed but none validated,
// INSECURE when no DS exists but the absence is proven, LAME when no
// designated server responded validly, and INCOMPLETE when the zone
// itself returned NXDOMAIN for the DS query.
func decideDelegationStatus(a *Analysis, rdtype uint16, q *QueryAggregate, totalDS, secureSEP int, securePath bool, bailiwick map[string]string, defaultBailiwick string) status.DelegationStatus {
	if len(q.NXDOMAIN) > 0 {
		a.DelegationErrors[rdtype] = insertOnce(a.DelegationErrors[rdtype], diag.NoNSInParent, q.NXDOMAIN)
		return status.DelegationIncomplete
	}

	if secureSEP > 0 {
		return status.DelegationSecure
	}

	var result status.DelegationStatus
	switch {
	case totalDS > 0 && securePath:
		result = status.DelegationBogus
	case totalDS == 0 && negativeDSProofValid(q):
		result = status.DelegationInsecure
	default:
		result = status.DelegationInsecure
	}

	if result == status.DelegationInsecure && !anyServerRespondedValidly(q, bailiwick, defaultBailiwick) {
		return status.DelegationLame
	}
	return result
}

func negativeDSProofValid(q *QueryAggregate) bool {
	for _, neg := range q.NODATA {
		if neg.Status == status.NSECValid {
			return true
		}
	}
	return false
}

// anyServerRespondedValidly reports whether some server that is itself
// in bailiwick for zone returned a valid, authoritative DS/DLV
// response — a response from a server whose recorded bailiwick is some
// other zone isn't evidence this delegation is properly served
// (spec.md §6 "Bailiwick mapping", used by C6).
func anyServerRespondedValidly(q *QueryAggregate, bailiwick map[string]string, zone string) bool {
	for _, r := range q.Responses {
		if r.IsValidResponse() && r.IsAuthoritative() && serverInBailiwick(bailiwick, zone, r.Server) {
			return true
		}
	}
	return false
}

func insertOnce(b diag.Bucket, code diag.Code, negs []*NegativeResponseInfo) diag.Bucket {
	for _, neg := range negs {
		for _, scr := range neg.ServersClients {
			b.Insert(code, scr, nil)
		}
	}
	return b
}

// allDNSKEYs flattens every candidate DNSKEY known for a's own zone.
func allDNSKEYs(a *Analysis) []*dns.DNSKEY {
	var keys []*dns.DNSKEY
	for _, meta := range a.DNSKEYs {
		keys = append(keys, meta.DNSKEY)
	}
	return keys
}

// populateNSGlueDiagnostics compares the NS name set the child zone
// publishes at its apex against the NS names the parent delegates to,
// flagging mismatches and unresolved/missing glue (spec.md §4.6 step 4).
func (e *Evaluator) populateNSGlueDiagnostics(a *Analysis) {
	if a.Parent == nil {
		return
	}

	childNS := nsNames(a.Queries[queryKey{a.Name, dns.TypeNS}])
	parentNS := nsNames(a.Parent.Queries[queryKey{a.Name, dns.TypeNS}])

	bucket := a.DelegationWarnings[dns.TypeNS]

	for name := range childNS {
		if !parentNS[name] {
			bucket.Insert(diag.NSNameNotInParent, diag.ServerClientResponse{}, map[string]string{"name": name})
		}
	}
	for name := range parentNS {
		if !childNS[name] {
			bucket.Insert(diag.NSNameNotInChild, diag.ServerClientResponse{}, map[string]string{"name": name})
		}
	}

	for name := range parentNS {
		dep := a.NSDependencies[name]
		if dep == nil {
			bucket.Insert(diag.ErrorResolvingNSName, diag.ServerClientResponse{}, map[string]string{"name": name})
			continue
		}

		a4 := dep.Queries[queryKey{name, dns.TypeA}]
		a6 := dep.Queries[queryKey{name, dns.TypeAAAA}]
		if a4 == nil || len(a4.Answers) == 0 {
			bucket.Insert(diag.NoNSAddressesForIPv4, diag.ServerClientResponse{}, map[string]string{"name": name})
		}
		if a6 == nil || len(a6.Answers) == 0 {
			bucket.Insert(diag.NoNSAddressesForIPv6, diag.ServerClientResponse{}, map[string]string{"name": name})
		}
		if (a4 == nil || len(a4.Answers) == 0) && (a6 == nil || len(a6.Answers) == 0) {
			bucket.Insert(diag.NoAddressForNSName, diag.ServerClientResponse{}, map[string]string{"name": name})
		}
	}

	if a.DelegationWarnings == nil {
		a.DelegationWarnings = make(map[uint16]diag.Bucket)
	}
	a.DelegationWarnings[dns.TypeNS] = bucket
}

func nsNames(q *QueryAggregate) map[string]bool {
	names := make(map[string]bool)
	if q == nil {
		return names
	}
	for _, ans := range q.Answers {
		for _, rr := range ans.RRset {
			if ns, ok := rr.(*dns.NS); ok {
				names[canonicalName(ns.Ns)] = true
			}
		}
	}
	return names
}
