package dnsauth

import (
	"strconv"

	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/dnssec"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// PopulateRRSIGStatus runs the RRSIG validator (C4) over every answer
// RRset on a, resolving each RRSIG's signer via g and binding it
// against the signer's candidate DNSKEYs (spec.md §4.3), then the
// wildcard handler (§4.4).
func (e *Evaluator) PopulateRRSIGStatus(g *Graph, a *Analysis) {
	for _, q := range a.Queries {
		for _, ans := range q.Answers {
			e.populateRRsetRRSIGStatus(g, a, ans, q.Qtype)
		}
	}
}

func (e *Evaluator) populateRRsetRRSIGStatus(g *Graph, a *Analysis, ans *RRsetInfo, qtype uint16) {
	ans.RRSIGBindings = make(map[*dns.RRSIG][]dnssec.RRSIGBinding)
	ans.Selected = make(map[*dns.RRSIG][]dnssec.RRSIGBinding)

	owner := ans.Owner()
	covered := ans.Rrtype()

	for _, rrsig := range ans.RRSIGs {
		if rrsig.TypeCovered != covered {
			continue
		}

		signer := g.Get(rrsig.SignerName, a.Type)
		if signer == nil {
			// Signer resolves to a stub node: skipped without diagnostics.
			continue
		}

		candidates := candidateKeysForRRSIG(signer, ans, rrsig)

		bindings, err := dnssec.BindRRSIG(rrsig, owner, ans.RRset, candidates, e.Capability, a.AnalysisEnd)
		if err != nil {
			bindings = []dnssec.RRSIGBinding{{RRSIG: rrsig, Status: status.RRSIGIndeterminateNoDNSKEY, Err: err}}
		}
		ans.RRSIGBindings[rrsig] = bindings

		selected := dnssec.SelectRRSIGBindings(bindings)
		ans.Selected[rrsig] = selected

		recordKeyRoles(signer, ans, selected)
	}

	e.populateAlgorithmCoverage(a, ans, qtype)
	populateWildcardStatus(ans)
}

// candidateKeysForRRSIG collects every DNSKEY known for signer, applying
// the self-signature rule: when the RRset being validated is itself a
// DNSKEY RRset owned by the signer, only members of that exact RRset
// are eligible (spec.md §4.3 step 4).
func candidateKeysForRRSIG(signer *Analysis, ans *RRsetInfo, rrsig *dns.RRSIG) []*dns.DNSKEY {
	selfSigned := ans.Rrtype() == dns.TypeDNSKEY && namesEqual(ans.Owner(), rrsig.SignerName)

	var candidates []*dns.DNSKEY
	seen := make(map[string]bool)
	for _, set := range signer.DNSKEYSets {
		for _, meta := range set.Keys {
			if selfSigned && !dnskeyIsMember(ans.RRset, meta.DNSKEY) {
				continue
			}
			key := dnskeyRdataKey(meta.DNSKEY)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, meta.DNSKEY)
		}
	}
	return candidates
}

func dnskeyIsMember(rrset []dns.RR, key *dns.DNSKEY) bool {
	want := dnskeyRdataKey(key)
	for _, rr := range rrset {
		if k, ok := rr.(*dns.DNSKEY); ok && dnskeyRdataKey(k) == want {
			return true
		}
	}
	return false
}

func dnskeyRdataKey(k *dns.DNSKEY) string { return k.String() }

// recordKeyRoles assigns KSK/ZSK to the signing DNSKEY when this RRset
// is on the zone apex: DNSKEY RRsets mean KSK, anything else (but DS,
// which belongs to the parent) means ZSK (spec.md §4.3 step 4).
func recordKeyRoles(signer *Analysis, ans *RRsetInfo, selected []dnssec.RRSIGBinding) {
	if !namesEqual(ans.Owner(), signer.Name) {
		return
	}
	for _, b := range selected {
		if b.Key == nil || b.Status != status.RRSIGValid {
			continue
		}
		meta := signer.DNSKEYs[dnskeyRdataKey(b.Key)]
		if meta == nil {
			continue
		}
		switch {
		case ans.Rrtype() == dns.TypeDNSKEY:
			meta.Role |= dnssec.RoleKSK
		case ans.Rrtype() != dns.TypeDS:
			meta.Role |= dnssec.RoleZSK
		}
	}
}

// populateAlgorithmCoverage emits MissingRRSIG/UnableToRetrieveDNSSECRecords
// when no algorithm signed the RRset at all, and MissingRRSIGForAlg{DNSKEY,DS,DLV}
// for each zone algorithm that should have signed it but didn't
// (spec.md §4.3 step 5). An RRset returned by a DLV query never checks
// DS/DLV coverage against itself (offline.py _populate_rrsig_status).
func (e *Evaluator) populateAlgorithmCoverage(a *Analysis, ans *RRsetInfo, qtype uint16) {
	if ans.DNAMEInfo != nil {
		return
	}
	zone := a.Zone
	if zone == nil {
		zone = a
	}

	dsAlgs, dlvAlgs := zone.DNSSECAlgorithmsInDS, zone.DNSSECAlgorithmsInDLV
	if qtype == dns.TypeDLV {
		dsAlgs, dlvAlgs = nil, nil
	}

	signedAlgs := make(map[uint8]bool)
	for rrsig, bindings := range ans.Selected {
		for _, b := range bindings {
			if b.Status == status.RRSIGValid {
				signedAlgs[rrsig.Algorithm] = true
			}
		}
	}

	for _, scr := range ans.ServersClients {
		r, ok := scr.Response.(*Response)
		if !ok {
			continue
		}
		if len(signedAlgs) == 0 {
			if r.DNSSECRequested() {
				ans.Errors.Insert(diag.MissingRRSIG, scr, nil)
			} else if r.IsValidResponse() {
				ans.Warnings.Insert(diag.UnableToRetrieveDNSSECRecords, scr, nil)
			}
			continue
		}
		for alg := range zone.DNSSECAlgorithmsInDNSKEY {
			if !signedAlgs[alg] {
				ans.Errors.Insert(diag.MissingRRSIGForAlgDNSKEY, scr, map[string]string{"algorithm": strconv.Itoa(int(alg))})
			}
		}
		for alg := range dsAlgs {
			if !signedAlgs[alg] {
				ans.Errors.Insert(diag.MissingRRSIGForAlgDS, scr, map[string]string{"algorithm": strconv.Itoa(int(alg))})
			}
		}
		for alg := range dlvAlgs {
			if !signedAlgs[alg] {
				ans.Errors.Insert(diag.MissingRRSIGForAlgDLV, scr, map[string]string{"algorithm": strconv.Itoa(int(alg))})
			}
		}
	}
}

// populateWildcardStatus validates each wildcard-info bundle attached
// to ans and tracks which servers returning the wildcard-covered RRset
// never produced a valid proof (spec.md §4.4).
func populateWildcardStatus(ans *RRsetInfo) {
	if len(ans.WildcardInfo) == 0 {
		return
	}

	missing := make(map[diag.ServerClientResponse]bool)
	for _, scr := range ans.ServersClients {
		missing[scr] = true
	}

	for _, set := range ans.WildcardInfo {
		if set == nil {
			continue
		}
		if !proofValid(set, ans.Owner()) {
			continue
		}
		for _, scr := range set.ServersClients {
			delete(missing, scr)
		}
	}

	for scr := range missing {
		ans.Errors.Insert(diag.MissingNSECForWildcard, scr, nil)
	}
}

func proofValid(set *NSECSetInfo, qname string) bool {
	if set.UseNSEC3 {
		if set.NSEC3 == nil {
			return false
		}
		proof := set.NSEC3.ProveNameDoesNotExist(qname)
		return proof.ClosestEncloserFound && proof.NextCloserNameProof
	}
	if set.NSEC == nil {
		return false
	}
	return set.NSEC.ProveWildcardExpansion(qname)
}
