// Package diag models the diagnostic-error domain: categorized
// misbehaviors attached to DNS artifacts, accumulated (never raised)
// and always traceable back to the (server, client, response) triples
// that exhibited them.
package diag

import "sort"

// Code identifies a diagnostic kind. See spec.md §7 for the full taxonomy.
type Code string

const (
	NetworkError          Code = "NetworkError"
	FormError             Code = "FormError"
	Timeout               Code = "Timeout"
	InvalidRcode          Code = "InvalidRcode"
	UnknownResponseError  Code = "UnknownResponseError"
	EDNSIgnored           Code = "EDNSIgnored"
	UnsupportedEDNSVersion Code = "UnsupportedEDNSVersion"
	PMTUExceeded          Code = "PMTUExceeded"

	ResponseErrorWithEDNS     Code = "ResponseErrorWithEDNS"
	ResponseErrorWithEDNSFlag Code = "ResponseErrorWithEDNSFlag"

	NotAuthoritative      Code = "NotAuthoritative"
	RecursionNotAvailable Code = "RecursionNotAvailable"

	MissingRRSIG                  Code = "MissingRRSIG"
	UnableToRetrieveDNSSECRecords Code = "UnableToRetrieveDNSSECRecords"
	MissingRRSIGForAlgDNSKEY      Code = "MissingRRSIGForAlgDNSKEY"
	MissingRRSIGForAlgDS          Code = "MissingRRSIGForAlgDS"
	MissingRRSIGForAlgDLV         Code = "MissingRRSIGForAlgDLV"

	MissingNSECForWildcard    Code = "MissingNSECForWildcard"
	MissingNSECForNODATA      Code = "MissingNSECForNODATA"
	MissingNSECForNXDOMAIN    Code = "MissingNSECForNXDOMAIN"
	MissingSOAForNODATA       Code = "MissingSOAForNODATA"
	MissingSOAForNXDOMAIN     Code = "MissingSOAForNXDOMAIN"
	SOAOwnerNotZoneForNODATA  Code = "SOAOwnerNotZoneForNODATA"
	SOAOwnerNotZoneForNXDOMAIN Code = "SOAOwnerNotZoneForNXDOMAIN"
	UpwardReferral            Code = "UpwardReferral"

	NoSEP                 Code = "NoSEP"
	MissingSEPForAlg      Code = "MissingSEPForAlg"
	RevokedNotSigning     Code = "RevokedNotSigning"
	TrustAnchorNotSigning Code = "TrustAnchorNotSigning"
	DNSKEYNotAtZoneApex   Code = "DNSKEYNotAtZoneApex"
	DNSKEYMissingFromServers Code = "DNSKEYMissingFromServers"

	NoNSInParent          Code = "NoNSInParent"
	NSNameNotInChild       Code = "NSNameNotInChild"
	NSNameNotInParent      Code = "NSNameNotInParent"
	ErrorResolvingNSName   Code = "ErrorResolvingNSName"
	GlueMismatchError      Code = "GlueMismatchError"
	MissingGlueForNSName   Code = "MissingGlueForNSName"
	NoAddressForNSName     Code = "NoAddressForNSName"
	NoNSAddressesForIPv4   Code = "NoNSAddressesForIPv4"
	NoNSAddressesForIPv6   Code = "NoNSAddressesForIPv6"

	ServerUnresponsiveUDP  Code = "ServerUnresponsiveUDP"
	ServerUnresponsiveTCP  Code = "ServerUnresponsiveTCP"
	ServerInvalidResponse  Code = "ServerInvalidResponse"
	ServerNotAuthoritative Code = "ServerNotAuthoritative"

	InconsistentNXDOMAIN Code = "InconsistentNXDOMAIN"
)

// Severity distinguishes a warning from a hard error; spec.md §4.7
// decides this per response based on whether the zone is signed.
type Severity uint8

const (
	Warning Severity = iota
	Error
)

// ServerClientResponse is the provenance triple every diagnostic must
// carry (spec.md invariant 5). Response identifies the specific
// response object (by pointer identity, expressed here as an opaque
// comparable key supplied by the caller — e.g. a response index).
type ServerClientResponse struct {
	Server   string
	Client   string
	Response any
}

// Diagnostic is one categorized misbehavior, with the set of
// provenance triples it applies to and any kind-specific fields
// (e.g. "algorithm", "source", "parent").
type Diagnostic struct {
	Code     Code
	Fields   map[string]string
	Triggers []ServerClientResponse
}

func fieldsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func containsTrigger(list []ServerClientResponse, t ServerClientResponse) bool {
	for _, existing := range list {
		if existing == t {
			return true
		}
	}
	return false
}

// Bucket is an ordered collection of Diagnostics that merges
// provenance tuples into an existing entry of the same Code+Fields
// rather than creating duplicate entries — mirroring
// offline.py's DomainNameAnalysisError.insert_into_list.
type Bucket struct {
	items []*Diagnostic
}

// Insert adds trigger to the entry matching code+fields, creating one
// if none exists yet. fields may be nil.
func (b *Bucket) Insert(code Code, trigger ServerClientResponse, fields map[string]string) {
	for _, d := range b.items {
		if d.Code == code && fieldsEqual(d.Fields, fields) {
			if !containsTrigger(d.Triggers, trigger) {
				d.Triggers = append(d.Triggers, trigger)
			}
			return
		}
	}
	b.items = append(b.items, &Diagnostic{
		Code:     code,
		Fields:   fields,
		Triggers: []ServerClientResponse{trigger},
	})
}

// List returns the bucket's diagnostics in insertion order.
func (b *Bucket) List() []*Diagnostic {
	return b.items
}

// Len reports the number of distinct diagnostic entries.
func (b *Bucket) Len() int { return len(b.items) }

// SortTriggers sorts each diagnostic's trigger list for deterministic
// serialization. Each diagnostic is sorted exactly once; see
// DESIGN.md open-question #2.
func (b *Bucket) SortTriggers() {
	for _, d := range b.items {
		sort.Slice(d.Triggers, func(i, j int) bool {
			a, c := d.Triggers[i], d.Triggers[j]
			if a.Server != c.Server {
				return a.Server < c.Server
			}
			return a.Client < c.Client
		})
	}
}
