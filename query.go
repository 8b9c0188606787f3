package dnsauth

import (
	"time"

	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/doe"
	"github.com/dnschain/dnsauth/dnssec"
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

type queryKey struct {
	Qname string
	Qtype uint16
}

// QueryAggregate groups every retry/sub-query the collector made for
// one (qname, rdtype) and the responses it got back, split by outcome
// (spec.md §3 "Query aggregate").
type QueryAggregate struct {
	Qname string
	Qtype uint16

	Responses []*Response

	Answers  []*RRsetInfo
	NODATA   []*NegativeResponseInfo
	NXDOMAIN []*NegativeResponseInfo
	Errors   []*Response
}

// RRsetInfo is an RRset together with its provenance: every
// (server,client,response) triple that returned it, its RRSIGs, and
// whatever CNAME/DNAME synthesis or wildcard proof accompanies it
// (spec.md §3).
type RRsetInfo struct {
	RRset  []dns.RR
	RRSIGs []*dns.RRSIG

	ServersClients []diag.ServerClientResponse

	// DNAMEInfo is set when this RRset's owner is the target of a
	// DNAME synthesis; CNAMEInfoFromDNAME is the synthesized CNAME
	// RRsetInfo these records accompany.
	DNAMEInfo          *RRsetInfo
	CNAMEInfoFromDNAME *RRsetInfo

	// WildcardInfo maps a wildcard-owner name to the proof that the
	// literal qname doesn't exist (spec.md §4.4).
	WildcardInfo map[string]*NSECSetInfo

	SOARRsetInfo []*RRsetInfo

	// RRSIGBindings is every candidate binding attempted for each
	// RRSIG on RRSIGs (invariant 1: one entry per candidate DNSKEY,
	// including the "no DNSKEY" sentinel).
	RRSIGBindings map[*dns.RRSIG][]dnssec.RRSIGBinding
	// Selected is the priority-group-selected subset of RRSIGBindings
	// actually reported for each RRSIG (spec.md §4.3 step 4).
	Selected map[*dns.RRSIG][]dnssec.RRSIGBinding

	Warnings diag.Bucket
	Errors   diag.Bucket
}

func (ri *RRsetInfo) Owner() string {
	if len(ri.RRset) == 0 {
		return ""
	}
	return ri.RRset[0].Header().Name
}

func (ri *RRsetInfo) Rrtype() uint16 {
	if len(ri.RRset) == 0 {
		return 0
	}
	return ri.RRset[0].Header().Rrtype
}

// signatureStatus reports VALID iff at least one RRSIG has a VALID selected
// binding -- the "one or more valid is enough" resolver policy the
// teacher's own signature-set verifier used.
func (ri *RRsetInfo) signatureStatus() status.RRSIGStatus {
	best := status.RRSIGIndeterminateNoDNSKEY
	for _, bindings := range ri.Selected {
		for _, b := range bindings {
			if b.Status == status.RRSIGValid {
				return status.RRSIGValid
			}
			if !b.Status.IsIndeterminate() {
				best = b.Status
			}
		}
	}
	return best
}

// DNSKEYMeta is one DNSKEY rdata together with its accumulated
// provenance and role (spec.md §3).
type DNSKEYMeta struct {
	DNSKEY *dns.DNSKEY

	KeyTag         uint16
	KeyTagNoRevoke uint16

	Owner string
	TTL   uint32

	RRsetInfos     []*RRsetInfo
	ServersClients []diag.ServerClientResponse

	Role dnssec.Role

	Warnings diag.Bucket
	Errors   diag.Bucket
}

// DNSKEYSet is one distinct DNSKEY RRset returned for a node, paired
// with its RRsetInfo (spec.md §4.2 "dnskey_sets").
type DNSKEYSet struct {
	Keys      []*DNSKEYMeta
	RRsetInfo *RRsetInfo
}

// NSECSetInfo is the set of NSEC or NSEC3 records, indexed by owner,
// returned by one (server,client,response) as a denial-of-existence
// proof (spec.md §3).
type NSECSetInfo struct {
	UseNSEC3 bool
	NSEC     *doe.NSEC
	NSEC3    *doe.NSEC3

	ServersClients []diag.ServerClientResponse
}

// NegativeResponseInfo is one (qname, rdtype) that received a NODATA
// or NXDOMAIN response, together with the SOA and NSEC evidence for it
// (spec.md §3).
type NegativeResponseInfo struct {
	Qname string
	Qtype uint16

	ServersClients []diag.ServerClientResponse

	SOARRsetInfo []*RRsetInfo
	NSECSetInfo  []*NSECSetInfo

	Status status.NSECStatus

	Warnings diag.Bucket
	Errors   diag.Bucket
}

// Analysis is one DomainNameAnalysis node: one per (name, analysis
// type), linked to its parent/DLV-parent/zone and its CNAME/MX/NS/
// signer dependencies, carrying the query index (C2) and, once
// PopulateStatus has visited it, the evaluator result fields below
// (spec.md §3). PublishedKeys, RevokedKeys, ZSKs and KSKs are not
// filled by PopulateStatus; key roles are recorded on DNSKEYMeta.Role.
type Analysis struct {
	Name string
	Type AnalysisType

	Parent    *Analysis
	DLVParent *Analysis
	Zone      *Analysis

	Queries map[queryKey]*QueryAggregate

	CNAMETargets    map[string]*Analysis
	MXTargets       map[string]*Analysis
	NSDependencies  map[string]*Analysis
	ExternalSigners map[string]*Analysis

	// AnalysisEnd is the "now" the RRSIG validator treats each
	// signature's validity period against.
	AnalysisEnd time.Time

	// --- evaluator result fields: zero/nil until PopulateStatus runs ---

	Status   status.NameStatus
	YXDomain map[string]bool
	YXRRset  map[queryKey]bool
	NXRRset  map[queryKey]bool

	// ResponseErrors holds response-classifier diagnostics for a signed
	// zone; ResponseWarnings holds the same diagnostics demoted to
	// warnings when the zone carries no DNSSEC (spec.md §4.7).
	ResponseErrors   map[*Response]diag.Bucket
	ResponseWarnings map[*Response]diag.Bucket

	// UpwardReferralResponses marks responses the negative-response
	// validator (C5) classified as upward referrals, so the
	// response-error classifier (C7) can suppress the overlapping
	// NotAuthoritative diagnostic for the same response (spec.md §4.5
	// step 3).
	UpwardReferralResponses map[*Response]bool

	DSStatusByDS     map[*dns.DS][]dnssec.DSBinding
	DSStatusByDNSKEY map[*dns.DNSKEY][]dnssec.DSBinding

	DelegationStatus   map[uint16]status.DelegationStatus
	DelegationWarnings map[uint16]diag.Bucket
	DelegationErrors   map[uint16]diag.Bucket

	PublishedKeys map[*dns.DNSKEY]bool
	RevokedKeys   map[*dns.DNSKEY]bool
	ZSKs          map[*dns.DNSKEY]bool
	KSKs          map[*dns.DNSKEY]bool
	DNSKEYWithDS  map[*dns.DNSKEY]bool

	DNSKEYs    map[string]*DNSKEYMeta
	DNSKEYSets []DNSKEYSet

	ResponseComponentStatus map[any]status.ComponentStatus

	DNSSECAlgorithmsInDNSKEY map[uint8]bool
	DNSSECAlgorithmsInDS     map[uint8]bool
	DNSSECAlgorithmsInDLV    map[uint8]bool
	DNSSECAlgorithmsDigestInDS  map[uint8]bool
	DNSSECAlgorithmsDigestInDLV map[uint8]bool
}

func newAnalysis(name string, t AnalysisType) *Analysis {
	return &Analysis{
		Name:            canonicalName(name),
		Type:            t,
		Queries:         make(map[queryKey]*QueryAggregate),
		CNAMETargets:    make(map[string]*Analysis),
		MXTargets:       make(map[string]*Analysis),
		NSDependencies:  make(map[string]*Analysis),
		ExternalSigners: make(map[string]*Analysis),
		AnalysisEnd:     time.Now(),
	}
}

// Query returns (creating if absent) the aggregate for (qname, qtype).
func (a *Analysis) Query(qname string, qtype uint16) *QueryAggregate {
	key := queryKey{canonicalName(qname), qtype}
	if q, ok := a.Queries[key]; ok {
		return q
	}
	q := &QueryAggregate{Qname: key.Qname, Qtype: qtype}
	a.Queries[key] = q
	return q
}

// PotentialTrustedKeys returns apex DNSKEYs whose RRset is
// self-signed-valid — a caller assembling a trust-anchor set from a
// previously collected corpus can use these as candidates, though
// choosing among them is out of scope here (offline.py
// potential_trusted_keys).
func (a *Analysis) PotentialTrustedKeys() []*dns.DNSKEY {
	var keys []*dns.DNSKEY
	for _, set := range a.DNSKEYSets {
		if set.RRsetInfo == nil || set.RRsetInfo.signatureStatus() != status.RRSIGValid {
			continue
		}
		for _, k := range set.Keys {
			keys = append(keys, k.DNSKEY)
		}
	}
	return keys
}
