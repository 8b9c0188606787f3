package dnssec

import "github.com/dnschain/dnsauth/status"

// rrsigPriority orders RRSIGStatus values valid > invalid > indeterminate,
// the selection rule spec.md §4.3 uses to pick which candidate
// binding(s) to report when an RRSIG matched more than one DNSKEY.
func rrsigPriority(s status.RRSIGStatus) int {
	switch {
	case s == status.RRSIGValid:
		return 0
	case s.IsIndeterminate():
		return 2
	default:
		return 1
	}
}

// SelectRRSIGBindings implements the "first group in priority order
// valid, invalid, indeterminate" rule: among all bindings produced for
// one RRSIG against every candidate DNSKEY, return only those in the
// best-priority group actually seen.
func SelectRRSIGBindings(candidates []RRSIGBinding) []RRSIGBinding {
	if len(candidates) == 0 {
		return nil
	}
	best := rrsigPriority(candidates[0].Status)
	for _, c := range candidates[1:] {
		if p := rrsigPriority(c.Status); p < best {
			best = p
		}
	}
	selected := make([]RRSIGBinding, 0, len(candidates))
	for _, c := range candidates {
		if rrsigPriority(c.Status) == best {
			selected = append(selected, c)
		}
	}
	return selected
}

func dsPriority(s status.DSStatus) int {
	switch {
	case s == status.DSValid:
		return 0
	case s.IsIndeterminate():
		return 2
	default:
		return 1
	}
}

// SelectDSBindings applies the same valid/invalid/indeterminate
// priority rule to a DS record's candidate DNSKEY bindings (spec.md §4.6).
func SelectDSBindings(candidates []DSBinding) []DSBinding {
	if len(candidates) == 0 {
		return nil
	}
	best := dsPriority(candidates[0].Status)
	for _, c := range candidates[1:] {
		if p := dsPriority(c.Status); p < best {
			best = p
		}
	}
	selected := make([]DSBinding, 0, len(candidates))
	for _, c := range candidates {
		if dsPriority(c.Status) == best {
			selected = append(selected, c)
		}
	}
	return selected
}
