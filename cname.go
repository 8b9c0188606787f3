package dnsauth

import "github.com/miekg/dns"

// cnameTargets returns the canonical target names of every CNAME in
// rrset, in order. Nothing in the package calls it; Analysis.CNAMETargets
// is filled by whoever builds the graph.
func cnameTargets(rrset []dns.RR) []string {
	cnames := extractRecords[*dns.CNAME](rrset)
	targets := make([]string, 0, len(cnames))
	for _, c := range cnames {
		targets = append(targets, canonicalName(c.Target))
	}
	return targets
}

// mxTargets returns the canonical exchange names of every MX in rrset.
func mxTargets(rrset []dns.RR) []string {
	mxs := extractRecords[*dns.MX](rrset)
	targets := make([]string, 0, len(mxs))
	for _, m := range mxs {
		targets = append(targets, canonicalName(m.Mx))
	}
	return targets
}
