package dnsauth

import "errors"

// Structural failures: programmer-visible conditions distinct from the
// diag package's accumulated diagnostics. Of these, only
// ErrLoopDetected is returned by this package (by Graph.Link).
var (
	ErrDLVParentMissing     = errors.New("dnsauth: DLV status requested but node has no dlv_parent")
	ErrNotADSRdtype         = errors.New("dnsauth: delegation status may only be populated for DS or DLV")
	ErrMissingDSQueries     = errors.New("dnsauth: zone node has no DS queries in its query index")
	ErrLoopDetected         = errors.New("dnsauth: dependency cycle detected in the name graph")
	ErrNoSignerNode         = errors.New("dnsauth: rrsig signer name did not resolve to a graph node")
	ErrPropagatorNotRun     = errors.New("dnsauth: response_component_status requested before PropagateComponentStatus")
)
