package doe

import "github.com/miekg/dns"

// ClosestEncloserProof is the result of an RFC 5155 §7.2.1 closest
// encloser proof.
type ClosestEncloserProof struct {
	ClosestEncloser     string
	NextCloserName      string
	OptOut              bool
	ClosestEncloserFound bool
	NextCloserNameProof  bool
	WildcardProof        bool
}

// ProveNameDoesNotExist performs the full NSEC3 closest-encloser proof
// for name, used for NXDOMAIN and missing-DS classification.
func (n *NSEC3) ProveNameDoesNotExist(name string) ClosestEncloserProof {
	var result ClosestEncloserProof
	if n.Empty() {
		return result
	}

	ce, ncn, ok := n.FindClosestEncloser(name)
	if !ok {
		return result
	}

	result.ClosestEncloser = ce
	result.NextCloserName = ncn
	result.ClosestEncloserFound = true
	result.WildcardProof = n.coversWildcard(ce)
	result.OptOut, result.NextCloserNameProof = n.coversNextCloserName(ncn)

	return result
}

// ProveWildcardExpansion implements RFC 5155 §8.8: given the owner
// name and label count of the RRSIG over a wildcard-expanded answer,
// prove that QNAME itself did not exist and the correct wildcard
// generated the answer.
func (n *NSEC3) ProveWildcardExpansion(wildcardAnswerSignerName string, wildcardAnswerSignatureLabels uint8) bool {
	labelIdx := dns.Split(wildcardAnswerSignerName)
	ceIdx := len(labelIdx) - int(wildcardAnswerSignatureLabels)
	if ceIdx <= 0 || ceIdx > len(labelIdx) {
		return false
	}

	closestEncloser := wildcardAnswerSignerName[labelIdx[ceIdx]:]
	nextCloserName := wildcardAnswerSignerName[labelIdx[ceIdx-1]:]

	wildcardCovered := n.coversWildcard(closestEncloser) || n.matchesWildcard(closestEncloser)
	_, nextCloserProof := n.coversNextCloserName(nextCloserName)

	return !wildcardCovered && nextCloserProof
}

func (n *NSEC3) coversWildcard(closestEncloser string) (proof bool) {
	wildcard := "*." + closestEncloser
	for _, rr := range n.records {
		if rr.Match(wildcard) {
			return false
		}
		if rr.Cover(wildcard) {
			proof = true
		}
	}
	return
}

func (n *NSEC3) matchesWildcard(closestEncloser string) bool {
	wildcard := "*." + closestEncloser
	for _, rr := range n.records {
		if rr.Match(wildcard) {
			return true
		}
	}
	return false
}

func (n *NSEC3) coversNextCloserName(nextCloserName string) (optOut, proof bool) {
	for _, rr := range n.records {
		if rr.Match(nextCloserName) {
			return false, false
		}
		if rr.Cover(nextCloserName) {
			proof = true
			if rr.Flags == 1 {
				optOut = true
			}
		}
	}
	return
}

// TypeBitMapContainsAnyOf reports, for the NSEC3 matching name, whether
// nameSeen (a matching NSEC3 was present) and typeSeen (its type bit
// map sets any of types).
func (n *NSEC3) TypeBitMapContainsAnyOf(name string, types []uint16) (nameSeen, typeSeen bool) {
	for _, rr := range n.records {
		if !rr.Match(name) {
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

// FindClosestEncloser walks qname from longest to shortest suffix,
// returning the longest ancestor with a matching NSEC3 owner hash that
// is eligible to serve as closest encloser (RFC 7129 §5.5): its type
// bit map must not set DNAME, and may only set NS when SOA is also set
// (otherwise it's a child-zone NSEC3, not this zone's).
func (n *NSEC3) FindClosestEncloser(qname string) (closestEncloser, nextCloserName string, ok bool) {
	type contender struct {
		ce  string
		ncn string
	}
	var contenders []contender

	for _, rr := range n.records {
		last := 0
		for _, idx := range dns.Split(qname) {
			name := qname[idx:]

			if !dns.IsSubDomain(n.zone, name) {
				break
			}

			if rr.Match(name) {
				if hasType(rr.TypeBitMap, dns.TypeDNAME) {
					continue
				}
				if hasType(rr.TypeBitMap, dns.TypeNS) && !hasType(rr.TypeBitMap, dns.TypeSOA) {
					continue
				}
				contenders = append(contenders, contender{ce: name, ncn: qname[last:]})
				break
			}
			last = idx
		}
	}

	if len(contenders) == 0 {
		return "", "", false
	}

	best := contenders[0]
	for _, c := range contenders[1:] {
		if len(c.ce) > len(best.ce) {
			best = c
		}
	}
	return best.ce, best.ncn, true
}

func hasType(bitmap []uint16, t uint16) bool {
	for _, b := range bitmap {
		if b == t {
			return true
		}
	}
	return false
}
