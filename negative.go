package dnsauth

import (
	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// PopulateNegativeStatus runs the negative-response validator (C5) over
// every NODATA and NXDOMAIN proof collected for a (spec.md §4.5).
func (e *Evaluator) PopulateNegativeStatus(a *Analysis) {
	a.UpwardReferralResponses = make(map[*Response]bool)

	for _, q := range a.Queries {
		for _, neg := range q.NODATA {
			e.validateNegative(a, neg, q.Qtype, false)
		}
		for _, neg := range q.NXDOMAIN {
			e.validateNegative(a, neg, q.Qtype, true)
		}
		checkInconsistentNXDOMAIN(q)
	}
}

// checkInconsistentNXDOMAIN flags a (server,client) pair that answered
// the same (qname,rdtype) with both a positive RRset and an NXDOMAIN
// for the qname itself — the two outcomes are mutually exclusive.
func checkInconsistentNXDOMAIN(q *QueryAggregate) {
	if len(q.Answers) == 0 || len(q.NXDOMAIN) == 0 {
		return
	}
	positive := make(map[diag.ServerClientResponse]bool)
	for _, ans := range q.Answers {
		for _, scr := range ans.ServersClients {
			positive[scr] = true
		}
	}
	for _, neg := range q.NXDOMAIN {
		if !namesEqual(neg.Qname, q.Qname) {
			continue
		}
		for _, scr := range neg.ServersClients {
			if positive[scr] {
				neg.Errors.Insert(diag.InconsistentNXDOMAIN, scr, nil)
			}
		}
	}
}

// validateNegative checks the SOA and NSEC/NSEC3 evidence attached to
// neg and sets its overall status, tracking which (server,client)
// triples never produced usable evidence. A response without any SOA
// that turns out to be an upward referral is reported as UpwardReferral
// instead of MissingSOA, and recorded on a so the response-error
// classifier (C7) can suppress the overlapping NotAuthoritative
// diagnostic for it (spec.md §4.5 step 3).
func (e *Evaluator) validateNegative(a *Analysis, neg *NegativeResponseInfo, qtype uint16, nxdomain bool) {
	missingSOACode, badSOAOwnerCode := diag.MissingSOAForNODATA, diag.SOAOwnerNotZoneForNODATA
	missingNSECCode := diag.MissingNSECForNODATA
	if nxdomain {
		missingSOACode, badSOAOwnerCode = diag.MissingSOAForNXDOMAIN, diag.SOAOwnerNotZoneForNXDOMAIN
		missingNSECCode = diag.MissingNSECForNXDOMAIN
	}

	withoutSOA := make(map[diag.ServerClientResponse]bool)
	for _, scr := range neg.ServersClients {
		withoutSOA[scr] = true
	}
	for _, soa := range neg.SOARRsetInfo {
		if !validSOAOwner(soa.Owner(), neg.Qname) {
			for _, scr := range soa.ServersClients {
				neg.Errors.Insert(badSOAOwnerCode, scr, nil)
			}
			continue
		}
		for _, scr := range soa.ServersClients {
			delete(withoutSOA, scr)
		}
	}
	for scr := range withoutSOA {
		if r, ok := scr.Response.(*Response); ok && r.IsUpwardReferral(neg.Qname) {
			neg.Errors.Insert(diag.UpwardReferral, scr, nil)
			a.UpwardReferralResponses[r] = true
			continue
		}
		neg.Errors.Insert(missingSOACode, scr, nil)
	}

	missingNSEC := make(map[diag.ServerClientResponse]bool)
	for _, scr := range neg.ServersClients {
		missingNSEC[scr] = true
	}

	best := status.NSECUnknown
	for _, set := range neg.NSECSetInfo {
		valid := e.validateNegativeProof(set, neg.Qname, qtype, nxdomain)
		if valid {
			best = status.NSECValid
			for _, scr := range set.ServersClients {
				delete(missingNSEC, scr)
			}
		} else if best == status.NSECUnknown {
			best = status.NSECInvalid
		}
	}
	for scr := range missingNSEC {
		neg.Errors.Insert(missingNSECCode, scr, nil)
	}
	neg.Status = best
}

// validateNegativeProof reports whether set proves the negative result
// it accompanies: for NXDOMAIN, the qname itself and its wildcard
// expansion must both be covered (or the NSEC3 closest-encloser proof
// must succeed); for NODATA, the qname's NSEC/NSEC3 must exist and must
// not set qtype in its type bit map.
func (e *Evaluator) validateNegativeProof(set *NSECSetInfo, qname string, qtype uint16, nxdomain bool) bool {
	if set.UseNSEC3 {
		if set.NSEC3 == nil {
			return false
		}
		if nxdomain {
			proof := set.NSEC3.ProveNameDoesNotExist(qname)
			return proof.ClosestEncloserFound && proof.NextCloserNameProof
		}
		nameSeen, typeSeen := set.NSEC3.TypeBitMapContainsAnyOf(qname, []uint16{qtype})
		return nameSeen && !typeSeen
	}

	if set.NSEC == nil {
		return false
	}
	if nxdomain {
		return set.NSEC.ProveNameDoesNotExist(qname)
	}
	nameSeen, typeSeen := set.NSEC.TypeBitMapContainsAnyOf(qname, []uint16{qtype})
	return nameSeen && !typeSeen
}

// validSOAOwner reports whether a SOA returned alongside a negative
// response names a zone that actually encloses qname, catching an
// upward referral masquerading as authoritative negative evidence.
func validSOAOwner(soaOwner, qname string) bool {
	return dns.IsSubDomain(canonicalName(soaOwner), canonicalName(qname))
}
