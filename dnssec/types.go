// Package dnssec implements the candidate-DNSKEY binding algorithm
// shared by the RRSIG validator (C4) and the DS/delegation evaluator
// (C6): for each signature or digest, try every candidate key, record
// every binding attempted (spec.md invariant 1), and pick the
// reported one by the valid > invalid > indeterminate priority rule
// (spec.md §4.3, §4.6).
package dnssec

import (
	"github.com/dnschain/dnsauth/crypto"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// Role is a DNSKEY's function within a zone. A key may hold both.
type Role uint8

const (
	RoleNone Role = 0
	RoleZSK  Role = 1 << iota
	RoleKSK
)

func (r Role) Has(role Role) bool { return r&role != 0 }

// RRSIGBinding is the outcome of testing one RRSIG against one
// candidate DNSKEY (or the "no DNSKEY found" sentinel, Key == nil).
type RRSIGBinding struct {
	RRSIG  *dns.RRSIG
	Key    *dns.DNSKEY
	Status status.RRSIGStatus
	Err    error
}

// DSBinding is the outcome of testing one DS record against one
// candidate DNSKEY (or the "no DNSKEY found" sentinel, Key == nil).
type DSBinding struct {
	DS     *dns.DS
	Key    *dns.DNSKEY
	Status status.DSStatus
	Err    error
}

// KeyTags returns the DNSKEY's key tag and its pre-revoke tag (the tag
// it would have had with the revoke bit cleared) — RFC 5011 §7 requires
// a validator to accept a match against either, since an RRSIG or DS
// minted before a key's revocation carries the pre-revoke tag.
func KeyTags(k *dns.DNSKEY) (tag, tagNoRevoke uint16) {
	tag = k.KeyTag()
	if k.Flags&dns.REVOKE == 0 {
		return tag, tag
	}
	clone := *k
	clone.Flags &^= dns.REVOKE
	return tag, clone.KeyTag()
}

// keyTagMatches reports whether candidateTag equals either of k's tags,
// and whether the match was only possible via the pre-revoke tag.
func keyTagMatches(k *dns.DNSKEY, candidateTag uint16) (matches, isPreRevoke bool) {
	tag, tagNoRevoke := KeyTags(k)
	if candidateTag == tag {
		return true, false
	}
	if candidateTag == tagNoRevoke {
		return true, true
	}
	return false, false
}

// Capability re-exports crypto.Capability so callers only need to
// import this package for the binding algorithm.
type Capability = crypto.Capability
