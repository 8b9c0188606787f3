package dnsauth

import (
	"github.com/dnschain/dnsauth/status"
	"github.com/miekg/dns"
)

// PopulateNameStatus computes YXDOMAIN/YXRRSET/NXRRSET and the
// node's overall NAME status from its query index and CNAME
// dependencies (spec.md §4.1, C3). trace carries the set of nodes
// already visited on this recursion path; a repeat visit returns the
// node's current (possibly zero) status instead of recursing again,
// satisfying the cycle-tolerance invariant in spec.md §5.
func PopulateNameStatus(a *Analysis, trace map[*Analysis]bool) status.NameStatus {
	if trace == nil {
		trace = make(map[*Analysis]bool)
	}
	if trace[a] {
		return a.Status
	}
	trace[a] = true

	a.YXDomain = make(map[string]bool)
	a.YXRRset = make(map[queryKey]bool)
	a.NXRRset = make(map[queryKey]bool)

	bailiwick, defaultBailiwick := BailiwickMapping(a)

	for key, q := range a.Queries {
		for _, ans := range q.Answers {
			owner := canonicalName(ans.Owner())
			a.YXDomain[owner] = true
			a.YXRRset[queryKey{owner, ans.Rrtype()}] = true
		}

		for _, neg := range q.NODATA {
			qname := canonicalName(neg.Qname)
			if nodataProvesYXDomain(a, neg) {
				a.YXDomain[qname] = true
			}
			a.NXRRset[queryKey{qname, neg.Qtype}] = true
		}

		for _, neg := range q.NXDOMAIN {
			a.NXRRset[queryKey{canonicalName(neg.Qname), neg.Qtype}] = true
		}

		if namesEqual(key.Qname, a.Name) {
			for _, r := range q.Responses {
				bw := defaultBailiwick
				if mapped, ok := bailiwick[r.Server]; ok {
					bw = mapped
				}
				if r.IsProperReferral(bw) {
					a.YXDomain[a.Name] = true
				}
			}
		}
	}

	// Propagate CNAME-target yxrrset back into yxrrset for the
	// aliased name, guarded by trace against alias cycles.
	for target, dep := range a.CNAMETargets {
		if dep == nil {
			continue
		}
		PopulateNameStatus(dep, trace)
		var aliases []string
		for _, q := range a.Queries {
			for _, ans := range q.Answers {
				for _, c := range extractRecords[*dns.CNAME](ans.RRset) {
					if namesEqual(c.Target, target) {
						aliases = append(aliases, canonicalName(c.Header().Name))
					}
				}
			}
		}
		for key := range dep.YXRRset {
			if namesEqual(key.Qname, dep.Name) {
				for _, alias := range aliases {
					a.YXRRset[queryKey{alias, key.Qtype}] = true
				}
			}
		}
	}

	switch {
	case a.YXDomain[a.Name]:
		a.Status = status.NameNoError
	case nodeHasNXDOMAIN(a):
		a.Status = status.NameNXDomain
	default:
		a.Status = status.NameIndeterminate
	}

	return a.Status
}

// nodataProvesYXDomain reports whether a NODATA proof for neg counts
// as proof the queried name exists: either neg.Qname is literally this
// node's name, or some response to it had recursion desired+available
// and wasn't itself an upward referral of this zone.
func nodataProvesYXDomain(a *Analysis, neg *NegativeResponseInfo) bool {
	if namesEqual(neg.Qname, a.Name) {
		return true
	}
	for _, scr := range neg.ServersClients {
		r, ok := scr.Response.(*Response)
		if !ok {
			continue
		}
		if r.RecursionDesired() && r.RecursionAvailable() && !r.IsUpwardReferral(a.Name) {
			return true
		}
	}
	return false
}

// nodeHasNXDOMAIN reports whether any non-DS query produced an
// NXDOMAIN proof for this node's own name.
func nodeHasNXDOMAIN(a *Analysis) bool {
	for key := range a.NXRRset {
		if namesEqual(key.Qname, a.Name) && key.Qtype != dns.TypeDS {
			return true
		}
	}
	return false
}
