// Package status holds the canonical result enums produced by the
// analysis core. Each type maps to a single string form used by the
// serializer; callers should never rely on the underlying integer
// values, only on String().
package status

// RRSIGStatus is the outcome of binding one RRSIG to one candidate DNSKEY.
type RRSIGStatus uint8

const (
	RRSIGUnknown RRSIGStatus = iota
	RRSIGValid
	RRSIGInvalidSignature
	RRSIGExpired
	RRSIGPremature
	RRSIGAlgorithmIgnored
	RRSIGIndeterminateNoDNSKEY
	RRSIGIndeterminateMatchPreRevoke
)

var rrsigNames = map[RRSIGStatus]string{
	RRSIGUnknown:                     "UNKNOWN",
	RRSIGValid:                       "VALID",
	RRSIGInvalidSignature:            "INVALID_SIG",
	RRSIGExpired:                     "EXPIRED",
	RRSIGPremature:                   "PREMATURE",
	RRSIGAlgorithmIgnored:            "ALGORITHM_IGNORED",
	RRSIGIndeterminateNoDNSKEY:       "INDETERMINATE_NO_DNSKEY",
	RRSIGIndeterminateMatchPreRevoke: "INDETERMINATE_MATCH_PRE_REVOKE",
}

func (s RRSIGStatus) String() string { return lookup(rrsigNames, s) }

// IsIndeterminate reports whether s is one of the two indeterminate variants.
func (s RRSIGStatus) IsIndeterminate() bool {
	return s == RRSIGIndeterminateNoDNSKEY || s == RRSIGIndeterminateMatchPreRevoke
}

// DSStatus is the outcome of binding one DS record to one candidate DNSKEY.
type DSStatus uint8

const (
	DSUnknown DSStatus = iota
	DSValid
	DSInvalidDigest
	DSAlgorithmIgnored
	DSIndeterminateNoDNSKEY
	DSIndeterminateMatchPreRevoke
)

var dsNames = map[DSStatus]string{
	DSUnknown:                     "UNKNOWN",
	DSValid:                       "VALID",
	DSInvalidDigest:               "INVALID_DIGEST",
	DSAlgorithmIgnored:            "ALGORITHM_IGNORED",
	DSIndeterminateNoDNSKEY:       "INDETERMINATE_NO_DNSKEY",
	DSIndeterminateMatchPreRevoke: "INDETERMINATE_MATCH_PRE_REVOKE",
}

func (s DSStatus) String() string { return lookup(dsNames, s) }

func (s DSStatus) IsIndeterminate() bool {
	return s == DSIndeterminateNoDNSKEY || s == DSIndeterminateMatchPreRevoke
}

// NSECStatus is the validity of a single NSEC/NSEC3 proof.
type NSECStatus uint8

const (
	NSECUnknown NSECStatus = iota
	NSECValid
	NSECInvalid
)

var nsecNames = map[NSECStatus]string{
	NSECUnknown: "UNKNOWN",
	NSECValid:   "VALID",
	NSECInvalid: "INVALID",
}

func (s NSECStatus) String() string { return lookup(nsecNames, s) }

// DelegationStatus is the final status of a parent/child delegation.
type DelegationStatus uint8

const (
	DelegationUnknown DelegationStatus = iota
	DelegationSecure
	DelegationInsecure
	DelegationBogus
	DelegationLame
	DelegationIncomplete
)

var delegationNames = map[DelegationStatus]string{
	DelegationUnknown:    "UNKNOWN",
	DelegationSecure:     "SECURE",
	DelegationInsecure:   "INSECURE",
	DelegationBogus:      "BOGUS",
	DelegationLame:       "LAME",
	DelegationIncomplete: "INCOMPLETE",
}

func (s DelegationStatus) String() string { return lookup(delegationNames, s) }

// NameStatus is the existence status of a name, per RFC 2308 semantics.
type NameStatus uint8

const (
	NameUnknown NameStatus = iota
	NameNoError
	NameNXDomain
	NameIndeterminate
)

var nameNames = map[NameStatus]string{
	NameUnknown:       "UNKNOWN",
	NameNoError:       "NOERROR",
	NameNXDomain:      "NXDOMAIN",
	NameIndeterminate: "INDETERMINATE",
}

func (s NameStatus) String() string { return lookup(nameNames, s) }

// ComponentStatus is the final, chain-aware status assigned to a response
// component (RRset, DNSKEY, NSEC set, or negative response) by the propagator.
type ComponentStatus uint8

const (
	ComponentUnknown ComponentStatus = iota
	ComponentSecure
	ComponentInsecure
	ComponentBogus
	ComponentNonExistent
)

var componentNames = map[ComponentStatus]string{
	ComponentUnknown:     "UNKNOWN",
	ComponentSecure:      "SECURE",
	ComponentInsecure:    "INSECURE",
	ComponentBogus:       "BOGUS",
	ComponentNonExistent: "NON_EXISTENT",
}

func (s ComponentStatus) String() string { return lookup(componentNames, s) }

func lookup[T comparable](m map[T]string, key T) string {
	if name, ok := m[key]; ok {
		return name
	}
	return "UNKNOWN"
}
