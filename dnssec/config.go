package dnssec

import (
	"github.com/dnschain/dnsauth/crypto"
	"github.com/nsmithuk/dnssec-root-anchors-go/anchors"
)

// RootTrustAnchors are the built-in DS records for the root zone. No
// evaluation stage in this module reads them.
var RootTrustAnchors = anchors.GetValid()

// DefaultCapability is the Capability an Evaluator falls back to when
// the caller doesn't supply its own.
func DefaultCapability() crypto.Capability {
	return crypto.DefaultCapability()
}
