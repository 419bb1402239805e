package access

type State string

const (
	StateTrial  State = "trial"
	StateFull   State = "full"
	StateLocked State = "locked"
)

const (
	CapManageHours    = "manage_hours"
	CapManualOverride = "manual_override"
	CapRecordPayments = "record_payments"
	CapCheckout       = "checkout"
)
