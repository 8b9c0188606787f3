package dnssec

import (
	"time"

	"github.com/dnschain/dnsauth/crypto"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// BindRRSIG tests rrsig against every key in candidates, returning one
// RRSIGBinding per candidate actually tried (every attempted binding is
// recorded, not just the reported one, spec.md §4.3 invariant 1).
// Structural failures that make the signature unusable regardless of
// which key is tried -- a label-count mismatch, or a signer name
// outside the rrset owner's bailiwick -- are returned as an error
// instead, since they rule out every candidate identically.
func BindRRSIG(rrsig *dns.RRSIG, owner string, rrset []dns.RR, candidates []*dns.DNSKEY, capability Capability, now time.Time) ([]RRSIGBinding, error) {
	owner = dns.CanonicalName(owner)

	if dns.CountLabel(owner) < int(rrsig.Labels) {
		return nil, ErrInvalidLabelCount
	}
	signer := dns.CanonicalName(rrsig.SignerName)
	if !dns.IsSubDomain(signer, owner) {
		return nil, ErrSignerNotInBailiwick
	}

	var matched []*dns.DNSKEY
	var preRevoke []bool
	for _, key := range candidates {
		if key.Algorithm != rrsig.Algorithm {
			continue
		}
		if dns.CanonicalName(key.Header().Name) != signer {
			continue
		}
		ok, isPreRevoke := keyTagMatches(key, rrsig.KeyTag)
		if !ok {
			continue
		}
		matched = append(matched, key)
		preRevoke = append(preRevoke, isPreRevoke)
	}

	if len(matched) == 0 {
		return []RRSIGBinding{{RRSIG: rrsig, Status: status.RRSIGIndeterminateNoDNSKEY, Err: ErrNoCandidateDNSKEY}}, nil
	}

	bindings := make([]RRSIGBinding, len(matched))
	for i, key := range matched {
		b := RRSIGBinding{RRSIG: rrsig, Key: key}
		verifyKey := key
		if preRevoke[i] {
			clone := *key
			clone.Flags &^= dns.REVOKE
			verifyKey = &clone
		}
		err := capability.VerifyRRSIG(rrsig, verifyKey, rrset, now)
		switch {
		case err == nil && preRevoke[i]:
			b.Status = status.RRSIGIndeterminateMatchPreRevoke
		case err == nil:
			b.Status = status.RRSIGValid
		case err == crypto.ErrUnsupportedAlgorithm:
			b.Status, b.Err = status.RRSIGAlgorithmIgnored, err
		case err == crypto.ErrExpired:
			b.Status, b.Err = status.RRSIGExpired, err
		case err == crypto.ErrPremature:
			b.Status, b.Err = status.RRSIGPremature, err
		default:
			b.Status, b.Err = status.RRSIGInvalidSignature, err
		}
		bindings[i] = b
	}
	return bindings, nil
}
