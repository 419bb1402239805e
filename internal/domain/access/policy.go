package access

import (
	"time"

	"foodorder-api/internal/domain/subscriptions"
)

type Policy struct {
	State        State
	Capabilities []string
	// DaysLeft is nil without a live subscription. Partial days round down.
	DaysLeft *int
}

func ComputePolicy(now time.Time, sub *subscriptions.Subscription) Policy {
	state := StateFor(now, sub)

	p := Policy{State: state, Capabilities: CapabilitiesFor(state)}
	if state != StateLocked {
		d := int(sub.ExpiresAt.Sub(now).Hours() / 24)
		p.DaysLeft = &d
	}
	return p
}
