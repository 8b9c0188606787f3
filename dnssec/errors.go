package dnssec

import "errors"

var (
	ErrInvalidLabelCount  = errors.New("dnssec: owner name has fewer labels than the rrsig labels field claims")
	ErrSignerNotInBailiwick = errors.New("dnssec: rrsig signer name is not an ancestor of the rrset owner")
	ErrNoCandidateDNSKEY = errors.New("dnssec: no candidate dnskey matched the rrsig's algorithm/key-tag")
	ErrNoCandidateForDS  = errors.New("dnssec: no candidate dnskey matched the ds's algorithm/key-tag")
)
