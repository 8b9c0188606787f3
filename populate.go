package dnsauth

import (
	"github.com/hashicorp/go-multierror"
)

// depsOf returns every dependency/ancestor node PopulateStatus must
// visit before (and PropagateComponentStatus must visit alongside) a,
// in the order spec.md §4.9 recurses them for serialization: CNAME,
// MX, NS-dependency, external-signer subtrees, then parent/DLV-parent.
func depsOf(a *Analysis) []*Analysis {
	var deps []*Analysis
	appendUnique := func(m map[string]*Analysis) {
		for _, dep := range m {
			if dep != nil {
				deps = append(deps, dep)
			}
		}
	}
	appendUnique(a.CNAMETargets)
	appendUnique(a.MXTargets)
	appendUnique(a.NSDependencies)
	appendUnique(a.ExternalSigners)
	if a.Parent != nil {
		deps = append(deps, a.Parent)
	}
	if a.DLVParent != nil {
		deps = append(deps, a.DLVParent)
	}
	return deps
}

// PopulateStatus runs C3 through C7 over a and every dependency it
// reaches, in the order spec.md §5 requires (C3 precedes the DNSKEY
// indexing that is part of C2; C2 precedes C4; C4 precedes C5; C5
// precedes C6). Dependencies are visited first so a signer or parent
// node's DNSKEYSets/DelegationStatus already exist by the time this
// node consults them. trace carries the set of nodes already visited
// on this recursion path; revisiting one only recomputes its name
// status (spec.md §5's cycle-tolerance contract), never re-entering
// RRSIG/delegation evaluation.
func (e *Evaluator) PopulateStatus(g *Graph, a *Analysis, trace map[*Analysis]bool) error {
	if trace == nil {
		trace = make(map[*Analysis]bool)
	}
	if trace[a] {
		PopulateNameStatus(a, nil)
		return nil
	}
	trace[a] = true

	var errs *multierror.Error
	for _, dep := range depsOf(a) {
		if err := e.PopulateStatus(g, dep, trace); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	PopulateNameStatus(a, nil)
	indexDNSKEYs(a)
	e.PopulateRRSIGStatus(g, a)
	e.PopulateNegativeStatus(a)
	e.PopulateDelegationStatus(a)
	e.PopulateResponseErrors(a)

	return errs.ErrorOrNil()
}

// Evaluate runs PopulateStatus over root's entire reachable dependency
// set and, only once every reachable node has completed C4–C6, runs
// the component-status propagator (C8) over the same set — the
// ordering spec.md §5 requires ("C8 runs only after all reachable
// nodes have completed C4–C6").
func (e *Evaluator) Evaluate(g *Graph, root *Analysis, trust TrustGraph) error {
	if err := e.PopulateStatus(g, root, nil); err != nil {
		return err
	}

	visited := make(map[*Analysis]bool)
	e.propagateReachable(trust, root, visited)
	return nil
}

func (e *Evaluator) propagateReachable(trust TrustGraph, a *Analysis, visited map[*Analysis]bool) {
	if visited[a] {
		return
	}
	visited[a] = true

	e.PropagateComponentStatus(trust, a)
	for _, dep := range depsOf(a) {
		e.propagateReachable(trust, dep, visited)
	}
}
