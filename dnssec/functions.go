package dnssec

import "github.com/miekg/dns"

// ExtractRecords filters rr down to the records of concrete type T.
func ExtractRecords[T dns.RR](rr []dns.RR) []T {
	r := make([]T, 0, len(rr))
	for _, record := range rr {
		if typedRecord, ok := record.(T); ok {
			r = append(r, typedRecord)
		}
	}
	return r
}

// ExtractRecordsOfNameAndType filters rr to records owned by name with rdtype t.
func ExtractRecordsOfNameAndType(rr []dns.RR, name string, t uint16) []dns.RR {
	name = dns.CanonicalName(name)
	r := make([]dns.RR, 0, len(rr))
	for _, record := range rr {
		if record.Header().Rrtype == t && dns.CanonicalName(record.Header().Name) == name {
			r = append(r, record)
		}
	}
	return r
}

// NamesEqual compares two names under canonicalization (case fold, trailing dot).
func NamesEqual(a, b string) bool {
	return dns.CanonicalName(a) == dns.CanonicalName(b)
}
