package form

// DisabledPolicy computes the effective disabled flag of a field. The gate
// baseline is captured once when the form session is created and never
// refreshed.
type DisabledPolicy struct {
	ReadOnly bool
	// Gate is the wire name of the field that keeps every other field inert
	// until its value moves away from Baseline.
	Gate     string
	Baseline any
}

// NewDisabledPolicy captures the gate baseline from the store.
func NewDisabledPolicy(readOnly bool, gate string, store *Store) DisabledPolicy {
	policy := DisabledPolicy{ReadOnly: readOnly, Gate: gate}
	if gate != "" && store != nil {
		policy.Baseline = store.Value(gate)
	}
	return policy
}

// Disabled applies, first match wins: read-only form; gate untouched for a
// non-gate field; the field's static flag.
func (p DisabledPolicy) Disabled(name string, static bool, gateValue any) bool {
	if p.ReadOnly {
		return true
	}
	if p.Gate != "" && name != p.Gate && equalValues(gateValue, p.Baseline) {
		return true
	}
	return static
}

// GateOpen reports whether the gate field has moved away from its baseline.
// Forms without a gate are always open.
func (p DisabledPolicy) GateOpen(gateValue any) bool {
	return p.Gate == "" || !equalValues(gateValue, p.Baseline)
}
