// Package doe implements the denial-of-existence proof primitives
// used to classify NSEC/NSEC3 negative responses (spec.md §4.5,
// component C5): ownership/coverage checks, the NSEC3 closest-encloser
// proof, wildcard expansion proofs, and opt-out detection.
package doe

import "github.com/miekg/dns"

// NSEC wraps a set of NSEC records believed to originate from one zone,
// and exposes proof operations against them.
type NSEC struct {
	zone    string
	records []*dns.NSEC
}

// NSEC3 wraps a set of NSEC3 records believed to originate from one
// zone. Records using an unsupported hash algorithm or unrecognised
// flag bits are dropped at construction, per RFC 5155 §8.1.
type NSEC3 struct {
	zone    string
	records []*dns.NSEC3
}

// NewNSEC builds a proof set from NSEC records for the given zone.
func NewNSEC(zone string, records []*dns.NSEC) *NSEC {
	return &NSEC{zone: dns.CanonicalName(zone), records: records}
}

// NewNSEC3 builds a proof set from NSEC3 records for the given zone,
// filtering out any record this implementation cannot interpret.
func NewNSEC3(zone string, records []*dns.NSEC3) *NSEC3 {
	filtered := make([]*dns.NSEC3, 0, len(records))
	for _, r := range records {
		if r.Hash != dns.SHA1 {
			continue
		}
		if r.Flags > 1 {
			continue
		}
		filtered = append(filtered, r)
	}
	return &NSEC3{zone: dns.CanonicalName(zone), records: filtered}
}

// Empty reports whether the proof set has no usable records.
func (n *NSEC) Empty() bool { return n == nil || len(n.records) == 0 }

// Empty reports whether the proof set has no usable records.
func (n *NSEC3) Empty() bool { return n == nil || len(n.records) == 0 }

// Records returns the underlying RRs, for attaching RRSIG-validity
// checks and provenance elsewhere.
func (n *NSEC) Records() []*dns.NSEC { return n.records }

// Records returns the underlying RRs.
func (n *NSEC3) Records() []*dns.NSEC3 { return n.records }
