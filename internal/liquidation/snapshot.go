package liquidation

import "time"

// ActiveAsOf counts members whose replayed state is active at the given
// instant. A member is active when its most recent Alta/Baja strictly before
// the instant is an Alta; transfers do not change active state. Untimed
// movements count as having occurred before any instant. Members with no
// movement at all by the instant are not counted.
//
// The boundary is strict-before: callers pass the first instant of a period
// and the first instant of the next one, so a movement landing exactly on a
// boundary belongs to the period that starts there.
func ActiveAsOf(instant time.Time, movements []Movement) int {
	state := make(map[int64]MovementKind)
	for _, m := range movements {
		if m.Kind != KindAlta && m.Kind != KindBaja {
			continue
		}
		if m.Timed && !m.Timestamp.Before(instant) {
			continue
		}
		state[m.MemberID] = m.Kind
	}
	active := 0
	for _, kind := range state {
		if kind == KindAlta {
			active++
		}
	}
	return active
}
