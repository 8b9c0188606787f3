package doe

import "github.com/miekg/dns"

// ProveNameDoesNotExist reports whether the proof set covers qname
// itself and its wildcard expansion, proving qname does not exist
// (used for NXDOMAIN classification).
func (n *NSEC) ProveNameDoesNotExist(qname string) bool {
	return !n.Empty() && n.coversOwner(qname) && n.coversWildcard(qname)
}

// ProveWildcardExpansion reports whether the proof set covers qname
// but not its wildcard, proving a wildcard answer was correctly
// synthesized (used for wildcard validation of a positive answer).
func (n *NSEC) ProveWildcardExpansion(qname string) bool {
	return !n.Empty() && n.coversOwner(qname) && !n.coversWildcard(qname)
}

func (n *NSEC) coversOwner(qname string) bool {
	qname = dns.CanonicalName(qname)

	for _, rr := range n.records {
		afterOwner := canonicalCmp(rr.Header().Name, qname) < 0
		beforeNext := dns.CanonicalName(rr.NextDomain) == n.zone || canonicalCmp(qname, rr.NextDomain) < 0

		if afterOwner && beforeNext {
			return true
		}
	}
	return false
}

func (n *NSEC) coversWildcard(qname string) bool {
	wildcard := wildcardName(dns.CanonicalName(qname))

	for _, rr := range n.records {
		afterOwner := canonicalCmp(rr.Header().Name, wildcard) < 0
		beforeNext := dns.CanonicalName(rr.NextDomain) == n.zone || canonicalCmp(wildcard, rr.NextDomain) < 0

		if afterOwner && beforeNext {
			return true
		}
	}
	return false
}

// TypeBitMapContainsAnyOf reports, for the NSEC owned by name, whether
// nameSeen (an NSEC with that owner was present) and typeSeen (its
// type bit map sets any of types).
func (n *NSEC) TypeBitMapContainsAnyOf(name string, types []uint16) (nameSeen, typeSeen bool) {
	name = dns.CanonicalName(name)
	for _, rr := range n.records {
		if dns.CanonicalName(rr.Header().Name) != name {
			continue
		}
		nameSeen = true
		for _, t := range types {
			for _, bit := range rr.TypeBitMap {
				if bit == t {
					return true, true
				}
			}
		}
	}
	return nameSeen, false
}
