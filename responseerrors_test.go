package dnsauth

import (
	"testing"

	"github.com/dnschain/dnsauth/diag"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func validMsg() *dns.Msg {
	m := &dns.Msg{}
	m.Response = true
	m.Authoritative = true
	m.Rcode = dns.RcodeSuccess
	return m
}

// signedAnalysis returns an authoritative analysis whose apex carries a
// DNSSEC algorithm, so zoneSigned reports true and response diagnostics
// land in ResponseErrors rather than ResponseWarnings.
func signedAnalysis(name string, atype AnalysisType) *Analysis {
	a := newAnalysis(name, atype)
	a.DNSSECAlgorithmsInDNSKEY = map[uint8]bool{dns.ECDSAP256SHA256: true}
	a.ResponseErrors = make(map[*Response]diag.Bucket)
	a.ResponseWarnings = make(map[*Response]diag.Bucket)
	a.UpwardReferralResponses = make(map[*Response]bool)
	return a
}

func TestClassifyResponseEDNSIgnoredWithoutFallbackCause(t *testing.T) {
	r := &Response{
		Msg:           validMsg(),
		Request:       RequestParams{EDNS: true},
		EffectiveEDNS: false,
	}
	a := signedAnalysis("example.com.", AnalysisAuthoritative)
	e := newTestEvaluator()

	e.classifyResponse(a, r)

	require.True(t, hasCode(a.ResponseErrors[r], diag.EDNSIgnored))
}

func TestClassifyResponseEDNSFallbackWrapsInnerCause(t *testing.T) {
	r := &Response{
		Msg:                  validMsg(),
		Request:              RequestParams{EDNS: true},
		EffectiveEDNS:        false,
		History:              []RetryEvent{{Cause: CauseTimeout}},
		ResponsiveCauseIndex: 0,
	}
	a := signedAnalysis("example.com.", AnalysisAuthoritative)
	e := newTestEvaluator()

	e.classifyResponse(a, r)

	require.True(t, hasCode(a.ResponseErrors[r], diag.ResponseErrorWithEDNS))
	require.False(t, hasCode(a.ResponseErrors[r], diag.EDNSIgnored))
}

func TestClassifyResponseBenignRcodeFallbackSuppressed(t *testing.T) {
	r := &Response{
		Msg:                  validMsg(),
		Request:              RequestParams{EDNS: true},
		EffectiveEDNS:        false,
		History:              []RetryEvent{{Cause: CauseRcode, CauseArg: "FORMERR"}},
		ResponsiveCauseIndex: 0,
	}
	a := signedAnalysis("example.com.", AnalysisAuthoritative)
	e := newTestEvaluator()

	e.classifyResponse(a, r)

	require.False(t, hasCode(a.ResponseErrors[r], diag.ResponseErrorWithEDNS))
	require.True(t, hasCode(a.ResponseErrors[r], diag.EDNSIgnored))
}

func TestClassifyAuthorityNotAuthoritative(t *testing.T) {
	m := validMsg()
	m.Authoritative = false
	r := &Response{Msg: m}
	a := signedAnalysis("example.com.", AnalysisAuthoritative)
	e := newTestEvaluator()

	e.classifyAuthority(a, r)

	require.True(t, hasCode(a.ResponseErrors[r], diag.NotAuthoritative))
}

func TestClassifyAuthorityRecursionNotAvailable(t *testing.T) {
	m := validMsg()
	m.RecursionDesired = true
	m.RecursionAvailable = false
	r := &Response{Msg: m}
	a := signedAnalysis("example.com.", AnalysisRecursive)
	e := newTestEvaluator()

	e.classifyAuthority(a, r)

	require.True(t, hasCode(a.ResponseErrors[r], diag.RecursionNotAvailable))
}

func TestClassifyAuthorityDemotesToWarningForUnsignedZone(t *testing.T) {
	m := validMsg()
	m.Authoritative = false
	r := &Response{Msg: m}
	a := newAnalysis("example.com.", AnalysisAuthoritative)
	a.ResponseErrors = make(map[*Response]diag.Bucket)
	a.ResponseWarnings = make(map[*Response]diag.Bucket)
	a.UpwardReferralResponses = make(map[*Response]bool)
	e := newTestEvaluator()

	e.classifyAuthority(a, r)

	require.True(t, hasCode(a.ResponseWarnings[r], diag.NotAuthoritative))
	require.False(t, hasCode(a.ResponseErrors[r], diag.NotAuthoritative))
}

func TestClassifyAuthoritySuppressesUpwardReferral(t *testing.T) {
	m := validMsg()
	m.Authoritative = false
	r := &Response{Msg: m}
	a := signedAnalysis("example.com.", AnalysisAuthoritative)
	a.UpwardReferralResponses[r] = true
	e := newTestEvaluator()

	e.classifyAuthority(a, r)

	require.False(t, hasCode(a.ResponseErrors[r], diag.NotAuthoritative))
}

func hasCode(b diag.Bucket, code diag.Code) bool {
	for _, d := range b.List() {
		if d.Code == code {
			return true
		}
	}
	return false
}
