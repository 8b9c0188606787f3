package dnsauth

import (
	"fmt"
	"slices"

	"github.com/miekg/dns"
)

// domain walks a name's labels shortest-to-longest. BailiwickMapping
// uses it to find the nearest zone cut between a known ancestor and an
// out-of-bailiwick NS name, the way the teacher's resolver wound a
// domain root-to-qname while following zone cuts during iterative
// resolution.
type domain struct {
	name         string // full canonical domain name
	labelIndexes []int  // indices marking each label start in the domain
	currentIdx   int    // current traversal position in labelIndexes
}

// newDomain creates a new domain with a canonical name and prepares
// label indexes for traversal.
func newDomain(d string) domain {
	d = dns.CanonicalName(d)
	labelIndexes := append(dns.Split(d), len(d)-1)
	slices.Reverse(labelIndexes)
	return domain{name: d, labelIndexes: labelIndexes}
}

// inBailiwick reports whether target falls within (or equals) zone.
func inBailiwick(zone, target string) bool {
	return dns.IsSubDomain(dns.CanonicalName(zone), dns.CanonicalName(target))
}

// windTo moves to the specified label within the domain, returning an
// error if not found.
func (d *domain) windTo(target string) error {
	target = dns.CanonicalName(target)

	if !dns.IsSubDomain(target, d.name) {
		return fmt.Errorf("%s is not a subdomain of %s", target, d.name)
	}

	for d.more() {
		if d.current() == target {
			return nil
		}
		d.next()
	}

	return fmt.Errorf("%s not found", target)
}

// current returns the domain segment from the current label position onward.
func (d *domain) current() string {
	if d.currentIdx >= len(d.labelIndexes) {
		return d.name
	}
	return d.name[d.labelIndexes[d.currentIdx]:]
}

func (d *domain) next() {
	d.currentIdx++
}

func (d *domain) more() bool {
	return d.currentIdx <= len(d.labelIndexes)
}

func (d *domain) last() bool {
	return d.currentIdx >= len(d.labelIndexes)-1
}

// gap returns the domain segments from the current position (included)
// down towards a target with more labels, one per missing label —
// used by nearestZoneCut.
func (d *domain) gap(target string) []string {
	if !dns.IsSubDomain(target, d.name) {
		return nil
	}

	missing := dns.CountLabel(target) - dns.CountLabel(d.current())
	if missing <= 0 {
		return nil
	}

	results := make([]string, 0, missing)
	for i := d.currentIdx; i < missing+d.currentIdx; i++ {
		results = append(results, d.name[d.labelIndexes[i]:])
	}
	return results
}

// BailiwickMapping builds the per-zone server -> bailiwick map spec.md
// §6's "Bailiwick mapping" supplement describes (offline.py
// get_bailiwick_mapping): every server reachable through one of a's own
// delegated NS names is mapped to a.Name, the zone it was delegated to
// serve. A server reached only through an NS name that falls outside
// a's own subtree — glue reused from a sibling or ancestor zone — is
// instead attributed to the nearest zone cut between a's parent and
// that NS name. defaultBailiwick is a.Name, used for any server absent
// from the map (offline.py's own get_bailiwick_mapping default).
func BailiwickMapping(a *Analysis) (mapping map[string]string, defaultBailiwick string) {
	mapping = make(map[string]string)
	defaultBailiwick = a.Name

	if a.Parent == nil {
		return mapping, defaultBailiwick
	}
	pq, ok := a.Parent.Queries[queryKey{a.Name, dns.TypeNS}]
	if !ok {
		return mapping, defaultBailiwick
	}

	for _, ans := range pq.Answers {
		for _, rr := range ans.RRset {
			ns, isNS := rr.(*dns.NS)
			if !isNS {
				continue
			}
			nsName := canonicalName(ns.Ns)
			dep := a.NSDependencies[nsName]
			if dep == nil {
				continue
			}

			bailiwick := defaultBailiwick
			if !inBailiwick(a.Name, nsName) {
				bailiwick = nearestZoneCut(a.Parent.Name, nsName)
			}

			for _, q := range dep.Queries {
				for _, r := range q.Responses {
					if r.Server != "" {
						mapping[r.Server] = bailiwick
					}
				}
			}
		}
	}
	return mapping, defaultBailiwick
}

// nearestZoneCut winds a domain rooted at name back to ancestor and
// returns the gap segment closest to name: name's immediate parent when
// name lies two or more labels below ancestor, else ancestor itself
// (also returned when name is outside ancestor). Used
// when an NS name delegated at one zone cut actually belongs to a
// different, unanalysed zone somewhere below that ancestor.
func nearestZoneCut(ancestor, name string) string {
	if !inBailiwick(ancestor, name) {
		return ancestor
	}

	d := newDomain(name)
	if err := d.windTo(ancestor); err != nil {
		return ancestor
	}

	gaps := d.gap(name)
	if len(gaps) == 0 {
		return ancestor
	}
	return gaps[len(gaps)-1]
}

// serverInBailiwick reports whether server's recorded bailiwick (or the
// absence of one) agrees with zone — a server with no mapping entry
// defaults to belonging to zone.
func serverInBailiwick(mapping map[string]string, zone, server string) bool {
	bw, ok := mapping[server]
	return !ok || bw == zone
}
