package dnssec

import (
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// BindDS tests ds against every key in candidates whose algorithm and
// key tag match, returning one DSBinding per candidate tried (spec.md
// §4.6). A digest type the capability can't compute is reported as
// ALGORITHM_IGNORED rather than as a digest mismatch, so the delegation
// evaluator can tell "we couldn't check this" from "this is wrong".
func BindDS(ds *dns.DS, candidates []*dns.DNSKEY, capability Capability) []DSBinding {
	var matched []*dns.DNSKEY
	var preRevoke []bool
	for _, key := range candidates {
		if key.Algorithm != ds.Algorithm {
			continue
		}
		ok, isPreRevoke := keyTagMatches(key, ds.KeyTag)
		if !ok {
			continue
		}
		matched = append(matched, key)
		preRevoke = append(preRevoke, isPreRevoke)
	}

	if len(matched) == 0 {
		return []DSBinding{{DS: ds, Status: status.DSIndeterminateNoDNSKEY, Err: ErrNoCandidateForDS}}
	}

	bindings := make([]DSBinding, len(matched))
	for i, key := range matched {
		b := DSBinding{DS: ds, Key: key}
		verifyKey := key
		if preRevoke[i] {
			clone := *key
			clone.Flags &^= dns.REVOKE
			verifyKey = &clone
		}
		switch {
		case !capability.SupportedDigestAlgorithms()[ds.DigestType]:
			b.Status = status.DSAlgorithmIgnored
		case !capability.VerifyDS(ds, verifyKey):
			b.Status = status.DSInvalidDigest
		case preRevoke[i]:
			b.Status = status.DSIndeterminateMatchPreRevoke
		default:
			b.Status = status.DSValid
		}
		bindings[i] = b
	}
	return bindings
}
