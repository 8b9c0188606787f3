package dnsauth

import (
	"github.com/miekg/dns"
)

// TypeToString renders an rrtype the way the serializer (C9) does,
// falling back to miekg/dns's own table for anything not listed here.
func TypeToString(rrtype uint16) string {
	if name, ok := dns.TypeToString[rrtype]; ok {
		return name
	}
	return "unknown"
}

var dnsRCodes = map[int]string{
	dns.RcodeSuccess:        "NoError",
	dns.RcodeFormatError:    "FormErr",
	dns.RcodeServerFailure:  "ServFail",
	dns.RcodeNameError:      "NXDomain",
	dns.RcodeNotImplemented: "NotImp",
	dns.RcodeRefused:        "Refused",
	dns.RcodeYXDomain:       "YXDomain",
	dns.RcodeYXRrset:        "YXRRSet",
	dns.RcodeNXRrset:        "NXRRSet",
	dns.RcodeNotAuth:        "NotAuth",
	dns.RcodeNotZone:        "NotZone",
	dns.RcodeBadSig:         "BADSIG",
	dns.RcodeBadKey:         "BADKEY",
	dns.RcodeBadTime:        "BADTIME",
	dns.RcodeBadMode:        "BADMODE",
	dns.RcodeBadName:        "BADNAME",
	dns.RcodeBadAlg:         "BADALG",
	dns.RcodeBadTrunc:       "BADTRUNC",
	dns.RcodeBadCookie:      "BADCOOKIE",
}

func RcodeToString(rcode int) string {
	if name, ok := dnsRCodes[rcode]; ok {
		return name
	}
	return "unknown"
}

// isSetDO reports whether msg's EDNS OPT record carries the DO bit.
func isSetDO(msg *dns.Msg) bool {
	if msg == nil {
		return false
	}
	if opt := msg.IsEdns0(); opt != nil {
		return opt.Do()
	}
	return false
}

func canonicalName(name string) string {
	return dns.CanonicalName(name)
}

func namesEqual(s1, s2 string) bool {
	return dns.CanonicalName(s1) == dns.CanonicalName(s2)
}

func extractRecords[T dns.RR](rr []dns.RR) []T {
	result := make([]T, 0, len(rr))
	for _, record := range rr {
		if typedRecord, ok := record.(T); ok {
			result = append(result, typedRecord)
		}
	}
	return result
}

func recordsOfTypeExist(rr []dns.RR, t uint16) bool {
	for _, record := range rr {
		if record.Header().Rrtype == t {
			return true
		}
	}
	return false
}

func extractRecordsOfType(rr []dns.RR, t uint16) []dns.RR {
	r := make([]dns.RR, 0, len(rr))
	for _, record := range rr {
		if record.Header().Rrtype == t {
			r = append(r, record)
		}
	}
	return r
}

func recordsOfNameAndTypeExist(rr []dns.RR, name string, t uint16) bool {
	name = dns.CanonicalName(name)
	for _, record := range rr {
		if record.Header().Rrtype == t && dns.CanonicalName(record.Header().Name) == name {
			return true
		}
	}
	return false
}
