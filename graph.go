package dnsauth

import (
	"fmt"

	"github.com/heimdalr/dag"
)

// AnalysisType is the context a name was analysed under (spec.md §3).
type AnalysisType uint8

const (
	AnalysisAuthoritative AnalysisType = iota
	AnalysisRecursive
	AnalysisCache
)

func (t AnalysisType) String() string {
	switch t {
	case AnalysisAuthoritative:
		return "authoritative"
	case AnalysisRecursive:
		return "recursive"
	case AnalysisCache:
		return "cache"
	default:
		return "unknown"
	}
}

// graphNode is the dag.IDInterface wrapper around an *Analysis — the
// graph needs a stable string id per (name, type) pair, since the same
// name can be analysed more than once under a different AnalysisType.
type graphNode struct {
	id string
	a  *Analysis
}

func (n *graphNode) ID() string { return n.id }

func graphKey(name string, t AnalysisType) string {
	return fmt.Sprintf("%s#%s", canonicalName(name), t)
}

// Graph is the Name Graph (C1): every analysed node plus the
// dependency/ancestor edges (CNAME/MX/NS-dependency/external-signer/
// parent/DLV-parent) linking them. It never hand-rolls a visited-set
// for loop detection — heimdalr/dag's AddEdge already refuses to
// create a cycle, so a rejected edge is the loop-detection signal
// spec.md §5/§9 calls for.
type Graph struct {
	dag   *dag.DAG
	nodes map[string]*graphNode
}

func NewGraph() *Graph {
	return &Graph{dag: dag.NewDAG(), nodes: make(map[string]*graphNode)}
}

// AddNode registers a (new, or returns the existing) Analysis node.
func (g *Graph) AddNode(name string, t AnalysisType) *Analysis {
	key := graphKey(name, t)
	if n, ok := g.nodes[key]; ok {
		return n.a
	}
	a := newAnalysis(name, t)
	n := &graphNode{id: key, a: a}
	// A vertex is only ever added once per key, so an error here would
	// be a heimdalr/dag internal inconsistency, not a caller mistake.
	_, _ = g.dag.AddVertex(n)
	g.nodes[key] = n
	return a
}

// Get returns a previously added node, or nil.
func (g *Graph) Get(name string, t AnalysisType) *Analysis {
	if n, ok := g.nodes[graphKey(name, t)]; ok {
		return n.a
	}
	return nil
}

// Link records a directed dependency edge from -> to. A cycle (the
// target is already an ancestor of the source in the dependency graph)
// is reported as ErrLoopDetected rather than an opaque dag error, so
// callers can match on it per spec.md §5's "cycle-tolerant" contract.
func (g *Graph) Link(from, to *Analysis) error {
	if from == nil || to == nil {
		return nil
	}
	fromKey := graphKey(from.Name, from.Type)
	toKey := graphKey(to.Name, to.Type)
	if fromKey == toKey {
		return fmt.Errorf("%w: %s -> %s", ErrLoopDetected, fromKey, toKey)
	}
	if err := g.dag.AddEdge(fromKey, toKey); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrLoopDetected, fromKey, toKey)
	}
	return nil
}
