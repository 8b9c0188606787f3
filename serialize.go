package dnsauth

import (
	"encoding/json"
	"strconv"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"

	"github.com/dnschain/dnsauth/diag"
	"github.com/dnschain/dnsauth/dnssec"
)

// ProcessedVersion is the version string every serialized tree is
// tagged with (spec.md §6 "Version string").
const ProcessedVersion = "1.0"

// orderedMap is a minimal insertion-ordered string-keyed map: Go's
// map[string]any can't preserve the key order spec.md §4.9 requires,
// and encoding/json always sorts map keys alphabetically before
// marshaling, so the serializer builds its own ordered structure and
// marshals it by hand.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]any)}
}

func (m *orderedMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// Serializer builds the nested status tree spec.md §4.9 describes,
// filtering diagnostics by the configured logrus level (so a WARN
// bucket is omitted entirely once the level is raised above Warning).
type Serializer struct {
	Level logrus.Level
}

// Serialize walks root's reachable dependency set, recursing into
// CNAME/MX/NS-dependency/signer subtrees (and parent/DLV-parent)
// before emitting a node, so that by the time a node is written every
// name it references already exists in the output map (spec.md §4.9).
func (s *Serializer) Serialize(root *Analysis) *orderedMap {
	out := newOrderedMap()
	out.Set("processed_version", ProcessedVersion)
	nodes := newOrderedMap()
	s.serializeNode(root, nodes, make(map[*Analysis]bool))
	out.Set("names", nodes)
	return out
}

func (s *Serializer) serializeNode(a *Analysis, nodes *orderedMap, trace map[*Analysis]bool) {
	if trace[a] {
		return
	}
	trace[a] = true

	for _, dep := range depsOf(a) {
		s.serializeNode(dep, nodes, trace)
	}

	node := newOrderedMap()
	node.Set("status", a.Status.String())
	node.Set("queries", s.serializeQueries(a))
	node.Set("dnskey", s.serializeDNSKEYs(a))
	node.Set("delegation", s.serializeDelegation(a, dns.TypeDS))
	if a.DLVParent != nil {
		node.Set("dlv", s.serializeDelegation(a, dns.TypeDLV))
	}

	nodes.Set(a.Name, node)
}

func (s *Serializer) serializeQueries(a *Analysis) *orderedMap {
	out := newOrderedMap()
	for key, q := range a.Queries {
		entry := newOrderedMap()

		var answers []any
		for _, ans := range q.Answers {
			answers = append(answers, s.serializeRRsetInfo(a, ans))
		}
		entry.Set("answer", answers)

		var nodata []any
		for _, neg := range q.NODATA {
			nodata = append(nodata, s.serializeNegative(a, neg))
		}
		entry.Set("nodata", nodata)

		var nxdomain []any
		for _, neg := range q.NXDOMAIN {
			nxdomain = append(nxdomain, s.serializeNegative(a, neg))
		}
		entry.Set("nxdomain", nxdomain)

		var errs []any
		for _, r := range q.Errors {
			errs = append(errs, s.serializeResponseErrors(a, r))
		}
		entry.Set("error", errs)

		out.Set(key.Qname+"/"+TypeToString(key.Qtype), entry)
	}
	return out
}

func (s *Serializer) serializeRRsetInfo(a *Analysis, ans *RRsetInfo) *orderedMap {
	out := newOrderedMap()
	out.Set("owner", ans.Owner())
	out.Set("type", TypeToString(ans.Rrtype()))

	var rrsigs []any
	for rrsig, bindings := range ans.Selected {
		for _, b := range bindings {
			entry := newOrderedMap()
			entry.Set("key_tag", strconv.Itoa(int(rrsig.KeyTag)))
			entry.Set("algorithm", strconv.Itoa(int(rrsig.Algorithm)))
			entry.Set("status", b.Status.String())
			rrsigs = append(rrsigs, entry)
		}
	}
	out.Set("rrsig", rrsigs)

	if ans.DNAMEInfo != nil {
		out.Set("dname", s.serializeRRsetInfo(a, ans.DNAMEInfo))
	}

	var wildcard []any
	for owner := range ans.WildcardInfo {
		wildcard = append(wildcard, owner)
	}
	out.Set("wildcard_proof", wildcard)

	out.Set("status", a.ResponseComponentStatus[ans].String())
	out.Set("warnings", serializeDiagnostics(s.Level, ans.Warnings))
	out.Set("errors", serializeDiagnostics(s.Level, ans.Errors))
	return out
}

func (s *Serializer) serializeNegative(a *Analysis, neg *NegativeResponseInfo) *orderedMap {
	out := newOrderedMap()
	out.Set("qname", neg.Qname)
	out.Set("type", TypeToString(neg.Qtype))
	out.Set("nsec_status", neg.Status.String())
	out.Set("status", a.ResponseComponentStatus[neg].String())
	out.Set("warnings", serializeDiagnostics(s.Level, neg.Warnings))
	out.Set("errors", serializeDiagnostics(s.Level, neg.Errors))
	return out
}

func (s *Serializer) serializeResponseErrors(a *Analysis, r *Response) *orderedMap {
	out := newOrderedMap()
	out.Set("server", r.Server)
	out.Set("client", r.Client)
	out.Set("warnings", serializeDiagnostics(s.Level, a.ResponseWarnings[r]))
	out.Set("errors", serializeDiagnostics(s.Level, a.ResponseErrors[r]))
	return out
}

func (s *Serializer) serializeDNSKEYs(a *Analysis) []any {
	var out []any
	for _, meta := range a.DNSKEYs {
		entry := newOrderedMap()
		entry.Set("key_tag", strconv.Itoa(int(meta.KeyTag)))
		entry.Set("algorithm", strconv.Itoa(int(meta.DNSKEY.Algorithm)))
		entry.Set("ksk", meta.Role.Has(dnssec.RoleKSK))
		entry.Set("zsk", meta.Role.Has(dnssec.RoleZSK))
		entry.Set("status", a.ResponseComponentStatus[meta].String())
		entry.Set("warnings", serializeDiagnostics(s.Level, meta.Warnings))
		entry.Set("errors", serializeDiagnostics(s.Level, meta.Errors))
		out = append(out, entry)
	}
	return out
}

func (s *Serializer) serializeDelegation(a *Analysis, rdtype uint16) *orderedMap {
	out := newOrderedMap()
	out.Set("status", a.DelegationStatus[rdtype].String())
	out.Set("warnings", serializeDiagnostics(s.Level, a.DelegationWarnings[rdtype]))
	out.Set("errors", serializeDiagnostics(s.Level, a.DelegationErrors[rdtype]))
	return out
}

// serializeDiagnostics renders a bucket's diagnostics at or above
// level, each as {code, servers, description?}.
func serializeDiagnostics(level logrus.Level, b diag.Bucket) []any {
	var out []any
	for _, d := range b.List() {
		if d.Code == "" {
			continue
		}
		if level < logrus.WarnLevel {
			continue
		}
		entry := newOrderedMap()
		entry.Set("code", string(d.Code))

		var servers []string
		for _, t := range d.Triggers {
			servers = append(servers, t.Server)
		}
		entry.Set("servers", servers)

		if len(d.Fields) > 0 {
			entry.Set("description", d.Fields)
		}
		out = append(out, entry)
	}
	return out
}
