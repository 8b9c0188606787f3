package dnsauth

import "github.com/miekg/dns"

// EDNSFlagDO is the extended RCODE/flags DO bit (RFC 3225), used in
// Query.EDNSFlags and Response.EffectiveEDNSFlags since collected
// responses carry it independently of whatever *dns.Msg.IsEdns0 reports.
const EDNSFlagDO uint16 = 1 << 15

// RetryCause classifies why a collector retried a query, mirroring
// spec.md §6's history entries.
type RetryCause uint8

const (
	CauseNone RetryCause = iota
	CauseNetworkError
	CauseFormErr
	CauseTimeout
	CauseRcode
	CauseOther
)

// RetryAction is what the collector changed before retrying.
type RetryAction uint8

const (
	ActionNone RetryAction = iota
	ActionRetryTCP
	ActionDisableEDNS
	ActionDisableEDNSFlag
	ActionRetryUDP
)

// RetryEvent is one entry in a Response's History.
type RetryEvent struct {
	Cause    RetryCause
	CauseArg string
	Action   RetryAction
}

// RequestParams is the request the collector intended to send: the
// qname/qtype plus the EDNS parameters it asked for, independent of
// what the eventual response's EffectiveEDNS fields report was
// actually echoed back.
type RequestParams struct {
	Qname             string
	Qtype             uint16
	EDNS              bool
	EDNSFlags         uint16
	EDNSMaxUDPPayload uint16
}

func (q RequestParams) dnssecRequested() bool {
	return q.EDNS && q.EDNSFlags&EDNSFlagDO != 0
}

// Response is one collected (server, client) exchange over a
// RequestParams. It is pure data — the collector populates it; the
// core only reads it.
type Response struct {
	Msg *dns.Msg
	Err error

	Server string
	Client string

	Request RequestParams

	EffectiveEDNS              bool
	EffectiveEDNSFlags         uint16
	EffectiveEDNSMaxUDPPayload uint16
	EffectiveTCP               bool

	History                 []RetryEvent
	ResponsiveCauseIndex    int
	ResponsiveCauseIndexTCP int
	TCPResponsive           bool
	UDPResponsive           bool

	MsgSize int
}

// IsEmpty reports whether no message was ever received.
func (r *Response) IsEmpty() bool {
	return r.Msg == nil
}

// HasError reports whether the exchange itself failed (network/timeout),
// as opposed to a DNS-level error response.
func (r *Response) HasError() bool {
	return r.Err != nil
}

// IsValidResponse reports whether r is usable as evidence at all.
func (r *Response) IsValidResponse() bool {
	return !r.HasError() && !r.IsEmpty()
}

// IsCompleteResponse reports whether r was not truncated, or was
// truncated but then successfully retried over TCP.
func (r *Response) IsCompleteResponse() bool {
	if !r.IsValidResponse() {
		return false
	}
	return !r.Msg.Truncated || r.EffectiveTCP
}

// IsReferral reports whether r points elsewhere rather than answering
// authoritatively: no answer, not authoritative, but carries NS records
// in the authority section.
func (r *Response) IsReferral() bool {
	if !r.IsValidResponse() {
		return false
	}
	return !r.Msg.Authoritative &&
		len(r.Msg.Answer) == 0 &&
		recordsOfTypeExist(r.Msg.Ns, dns.TypeNS)
}

// IsUpwardReferral reports whether r's referral points to an ancestor
// of (or a name unrelated to) qname rather than a proper descendant —
// a misconfiguration signal (spec.md Glossary "Upward referral").
func (r *Response) IsUpwardReferral(qname string) bool {
	if !r.IsReferral() {
		return false
	}
	for _, ns := range extractRecords[*dns.NS](r.Msg.Ns) {
		owner := dns.CanonicalName(ns.Header().Name)
		if !dns.IsSubDomain(dns.CanonicalName(qname), owner) || namesEqual(owner, qname) {
			return true
		}
	}
	return false
}

// IsProperReferral reports whether r is a referral whose delegated NS
// owner name falls at or within bailiwick — the zone the answering
// server is actually trusted to speak for (spec.md §6 "Bailiwick
// mapping"). A referral whose NS owner escapes bailiwick is out of
// place: forged, stale, or answered by a server reused as glue for an
// unrelated zone (offline.py is_referral(..., proper=True)).
func (r *Response) IsProperReferral(bailiwick string) bool {
	if !r.IsReferral() {
		return false
	}
	bailiwick = dns.CanonicalName(bailiwick)
	for _, ns := range extractRecords[*dns.NS](r.Msg.Ns) {
		owner := dns.CanonicalName(ns.Header().Name)
		if !dns.IsSubDomain(bailiwick, owner) {
			return false
		}
	}
	return true
}

func (r *Response) IsAuthoritative() bool {
	return r.IsValidResponse() && r.Msg.Authoritative
}

func (r *Response) RecursionDesired() bool {
	return r.IsValidResponse() && r.Msg.RecursionDesired
}

func (r *Response) RecursionAvailable() bool {
	return r.IsValidResponse() && r.Msg.RecursionAvailable
}

// DNSSECRequested reports whether the collector asked for DNSSEC
// records on the query that produced r.
func (r *Response) DNSSECRequested() bool {
	return r.Request.dnssecRequested()
}
