// Package crypto is the injected, stateless cryptographic capability
// consulted by the analysis core — the only external effect the core
// has (spec.md §5, §9 "Singletons: the crypto facade"). It is never
// process-global: every Evaluator carries its own Capability so tests
// can be hermetic over the supported-algorithm set.
package crypto

import (
	"errors"
	"strings"
	"time"

	"github.com/miekg/dns"
)

var (
	// ErrUnsupportedAlgorithm is returned by VerifyRRSIG when asked to
	// validate with an algorithm the Capability doesn't support.
	ErrUnsupportedAlgorithm = errors.New("crypto: unsupported algorithm")
)

// Capability is the set of cryptographic operations and supported
// algorithm sets the evaluator consults. A zone's own
// dnssec_algorithms_in_{dnskey,ds,dlv} sets (spec.md §3) are derived
// by intersecting the records actually seen with these sets.
type Capability interface {
	// SupportedAlgorithms returns the DNSKEY/RRSIG algorithm numbers
	// this capability can validate.
	SupportedAlgorithms() map[uint8]bool

	// SupportedDigestAlgorithms returns the DS/DLV digest type numbers
	// this capability can compute.
	SupportedDigestAlgorithms() map[uint8]bool

	// VerifyRRSIG checks rrsig's signature over rrset using dnskey, and
	// that now falls within the signature's validity period. It does
	// not check algorithm/key-tag binding; callers do that before
	// calling in order to record ALGORITHM_IGNORED/INDETERMINATE
	// distinctly from a cryptographic failure.
	VerifyRRSIG(rrsig *dns.RRSIG, dnskey *dns.DNSKEY, rrset []dns.RR, now time.Time) error

	// VerifyDS reports whether ds's digest matches dnskey.
	VerifyDS(ds *dns.DS, dnskey *dns.DNSKEY) bool
}

// defaultCapability implements Capability using miekg/dns directly,
// supporting the algorithm/digest sets recommended by current IANA
// guidance.
type defaultCapability struct {
	algs    map[uint8]bool
	digests map[uint8]bool
}

// DefaultCapability returns a Capability supporting RSASHA256,
// RSASHA512, ECDSAP256SHA256, ECDSAP384SHA384 and ED25519 for
// signatures, and SHA-1/SHA-256/SHA-384 for DS digests.
func DefaultCapability() Capability {
	return &defaultCapability{
		algs: map[uint8]bool{
			dns.RSASHA256:       true,
			dns.RSASHA512:       true,
			dns.ECDSAP256SHA256: true,
			dns.ECDSAP384SHA384: true,
			dns.ED25519:         true,
		},
		digests: map[uint8]bool{
			dns.SHA1:   true,
			dns.SHA256: true,
			dns.SHA384: true,
		},
	}
}

func (c *defaultCapability) SupportedAlgorithms() map[uint8]bool { return c.algs }

func (c *defaultCapability) SupportedDigestAlgorithms() map[uint8]bool { return c.digests }

func (c *defaultCapability) VerifyRRSIG(rrsig *dns.RRSIG, dnskey *dns.DNSKEY, rrset []dns.RR, now time.Time) error {
	if !c.algs[rrsig.Algorithm] {
		return ErrUnsupportedAlgorithm
	}
	if !rrsig.ValidityPeriod(now) {
		if now.Before(time.Unix(int64(rrsig.Inception), 0)) {
			return ErrPremature
		}
		return ErrExpired
	}
	return rrsig.Verify(dnskey, rrset)
}

var (
	ErrExpired   = errors.New("crypto: signature has expired")
	ErrPremature = errors.New("crypto: signature is not yet valid")
)

func (c *defaultCapability) VerifyDS(ds *dns.DS, dnskey *dns.DNSKEY) bool {
	if !c.digests[ds.DigestType] {
		return false
	}
	computed := dnskey.ToDS(ds.DigestType)
	if computed == nil {
		return false
	}
	return strings.EqualFold(computed.Digest, ds.Digest)
}
