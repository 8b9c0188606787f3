package dnsauth

import (
	"github.com/dnschain/dnsauth/diag"
)

// retryCauseCode maps a RetryCause to the diagnostic taxonomy spec.md
// §4.7 names. The benign rcode fallbacks (FORMERR/SERVFAIL/NOTIMP) are
// filtered out by fallbackCause before it is called.
func retryCauseCode(c RetryCause) (diag.Code, bool) {
	switch c {
	case CauseNetworkError:
		return diag.NetworkError, true
	case CauseFormErr:
		return diag.FormError, true
	case CauseTimeout:
		return diag.Timeout, true
	case CauseRcode:
		return diag.InvalidRcode, true
	case CauseOther:
		return diag.UnknownResponseError, true
	default:
		return "", false
	}
}

// PopulateResponseErrors runs the response-error classifier (C7) over
// every response collected for a, attributing EDNS fallback, version
// and payload mismatches, and (for non-cache analyses) authority/
// recursion-availability problems (spec.md §4.7). Diagnostics are filed
// as errors when a's zone is DNSSEC-signed, else demoted to warnings
// (spec.md §4.7, "errors are filed as errors if the zone is signed,
// else warnings").
func (e *Evaluator) PopulateResponseErrors(a *Analysis) {
	a.ResponseErrors = make(map[*Response]diag.Bucket)
	a.ResponseWarnings = make(map[*Response]diag.Bucket)

	for _, q := range a.Queries {
		for _, r := range q.Responses {
			e.classifyResponse(a, r)
		}
	}
}

// zoneSigned reports whether a's zone apex carries any DNSSEC
// algorithm, the signal spec.md §4.7 uses to decide whether a response
// diagnostic is filed as an error or demoted to a warning.
func zoneSigned(a *Analysis) bool {
	zone := a.Zone
	if zone == nil {
		zone = a
	}
	return len(zone.DNSSECAlgorithmsInDNSKEY) > 0
}

// insertResponseDiag files a response diagnostic into a's errors bucket
// when the zone is signed, else its warnings bucket.
func insertResponseDiag(a *Analysis, r *Response, code diag.Code, scr diag.ServerClientResponse, fields map[string]string) {
	m := a.ResponseWarnings
	if zoneSigned(a) {
		m = a.ResponseErrors
	}
	bucket := m[r]
	bucket.Insert(code, scr, fields)
	m[r] = bucket
}

func (e *Evaluator) classifyResponse(a *Analysis, r *Response) {
	if !r.Request.EDNS {
		e.classifyAuthority(a, r)
		return
	}

	scr := diag.ServerClientResponse{Server: r.Server, Client: r.Client, Response: r}

	if !r.EffectiveEDNS {
		if inner, ok := fallbackCause(r); ok {
			insertResponseDiag(a, r, diag.ResponseErrorWithEDNS, scr, map[string]string{"inner": string(inner)})
		} else {
			insertResponseDiag(a, r, diag.EDNSIgnored, scr, nil)
		}
	} else {
		if r.Msg != nil {
			if opt := r.Msg.IsEdns0(); opt != nil && opt.Version() != 0 {
				insertResponseDiag(a, r, diag.UnsupportedEDNSVersion, scr, nil)
			}
		}
		if r.EffectiveEDNSMaxUDPPayload != 0 && r.Request.EDNSMaxUDPPayload != 0 &&
			r.EffectiveEDNSMaxUDPPayload < r.Request.EDNSMaxUDPPayload && r.MsgSize >= int(r.EffectiveEDNSMaxUDPPayload) {
			insertResponseDiag(a, r, diag.PMTUExceeded, scr, nil)
		}
	}

	for _, flag := range []uint16{EDNSFlagDO} {
		if r.Request.EDNSFlags&flag != 0 && r.EffectiveEDNSFlags&flag == 0 {
			if inner, ok := fallbackCause(r); ok {
				insertResponseDiag(a, r, diag.ResponseErrorWithEDNSFlag, scr, map[string]string{"inner": string(inner)})
			}
		}
	}

	e.classifyAuthority(a, r)
}

// fallbackCause walks r's retry History at ResponsiveCauseIndex to find
// the cause that explains an EDNS or EDNS-flag fallback, skipping
// benign rcode fallbacks (FORMERR/SERVFAIL/NOTIMP) which are legitimate
// reasons to retry rather than signs of server misbehavior.
func fallbackCause(r *Response) (diag.Code, bool) {
	idx := r.ResponsiveCauseIndex
	if idx < 0 || idx >= len(r.History) {
		return "", false
	}
	event := r.History[idx]
	if event.Cause == CauseRcode {
		switch event.CauseArg {
		case "FORMERR", "SERVFAIL", "NOTIMP":
			return "", false
		}
	}
	return retryCauseCode(event.Cause)
}

// classifyAuthority flags responses that fail to answer authoritatively
// or, for a recursive analysis, fail to report recursion available. A
// response the negative-response validator (C5) already flagged as an
// upward referral never also gets NotAuthoritative (spec.md §4.5 step
// 3, "upward-referral errors suppress overlapping NotAuthoritative
// diagnostics for the same (server,client,response)").
func (e *Evaluator) classifyAuthority(a *Analysis, r *Response) {
	if !r.IsValidResponse() {
		return
	}
	scr := diag.ServerClientResponse{Server: r.Server, Client: r.Client, Response: r}

	switch a.Type {
	case AnalysisAuthoritative:
		if !r.IsAuthoritative() && !r.IsReferral() && !a.UpwardReferralResponses[r] {
			insertResponseDiag(a, r, diag.NotAuthoritative, scr, nil)
		}
	case AnalysisRecursive:
		if r.RecursionDesired() && !r.RecursionAvailable() {
			insertResponseDiag(a, r, diag.RecursionNotAvailable, scr, nil)
		}
	}
}
