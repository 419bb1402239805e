package access

import (
	"time"

	"foodorder-api/internal/domain/subscriptions"
)

// StateFor derives the product access level of a store owner at now.
// A nil subscription means the owner never started a trial.
func StateFor(now time.Time, sub *subscriptions.Subscription) State {
	if sub == nil || !sub.Active(now) {
		return StateLocked
	}
	if sub.Status == subscriptions.StatusTrial {
		return StateTrial
	}
	return StateFull
}
