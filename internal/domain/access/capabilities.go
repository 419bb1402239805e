package access

// CapabilitiesFor lists what the dashboard may offer. Locked owners can still
// maintain their schedule and pay, but not record order payments.
func CapabilitiesFor(state State) []string {
	switch state {
	case StateTrial, StateFull:
		return []string{CapManageHours, CapManualOverride, CapRecordPayments, CapCheckout}
	default:
		return []string{CapManageHours, CapManualOverride, CapCheckout}
	}
}
