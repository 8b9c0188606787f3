package dnsauth

import (
	"github.com/dnschain/dnsauth/crypto"
	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultConsultDLV matches the teacher's own "off unless asked"
	// default posture for optional protocol extensions.
	DefaultConsultDLV = false
)

// TrustAnchor pairs a zone name with a DNSKEY the caller treats as
// axiomatically secure.
type TrustAnchor struct {
	Zone   string
	DNSKEY *dns.DNSKEY
}

// Evaluator carries every injectable knob PopulateStatus consults.
// Nothing here is a package-level global: every call site can run with
// its own capability set, trust anchors, and logger, keeping tests
// hermetic over the supported-algorithm set (spec.md §9 "Singletons:
// the crypto facade").
type Evaluator struct {
	// Capability is the injected crypto facade consulted for every
	// RRSIG/DS binding attempt.
	Capability crypto.Capability

	// ConsultDLV, if true, also populates delegation status for the
	// DLV rdtype when a node has a dlv_parent.
	ConsultDLV bool

	// TrustAnchors lists the caller's trust anchors, looked up per zone
	// by trustAnchorFor. The component-status propagator (C8) does not
	// read them: every component status comes from the injected
	// TrustGraph.
	TrustAnchors []TrustAnchor

	// Log is the logger carried with the Evaluator. PopulateStatus and
	// the stages it runs write no entries to it.
	Log logrus.FieldLogger
}

// NewEvaluator returns an Evaluator using the IANA-recommended crypto
// capability and a logrus logger that writes warnings and above to
// stderr.
func NewEvaluator() *Evaluator {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return &Evaluator{
		Capability: crypto.DefaultCapability(),
		ConsultDLV: DefaultConsultDLV,
		Log:        log,
	}
}

// trustAnchorFor returns the configured trust anchor DNSKEYs for zone, if any.
func (e *Evaluator) trustAnchorFor(zone string) []*dns.DNSKEY {
	var keys []*dns.DNSKEY
	for _, ta := range e.TrustAnchors {
		if namesEqual(ta.Zone, zone) {
			keys = append(keys, ta.DNSKEY)
		}
	}
	return keys
}
