package notification

import "time"

// ResolveFireTimes converts a trigger and a funding deadline into absolute
// fire times.
//
// A one-shot time-based trigger yields exactly deadline minus offset. A fire
// time already in the past is still emitted: the scheduler picks it up on its
// next tick, so late registration degrades to an immediate attempt instead of
// a silent drop.
//
// A recurring time-based trigger anchors at deadline minus offset and steps
// forward toward the deadline, spaced by the interval, capped at MaxReminders
// and never scheduled past the deadline itself.
//
// A milestone-based trigger yields a single "evaluate now" timestamp; whether
// funding actually crossed the threshold is the caller's decision. Custom
// triggers never self-schedule.
func ResolveFireTimes(t *Trigger, deadline time.Time, now func() time.Time) []time.Time {
	switch t.Kind {
	case TriggerMilestoneBased:
		return []time.Time{now()}

	case TriggerTimeBased:
		if t.Offset == nil {
			return nil
		}
		anchor := deadline.Add(-t.Offset.Duration())

		if t.Frequency.Type != FrequencyRecurring || t.Frequency.Interval == nil {
			return []time.Time{anchor}
		}

		step := t.Frequency.Interval.Duration()
		if step <= 0 {
			return []time.Time{anchor}
		}
		times := make([]time.Time, 0, t.Frequency.MaxReminders)
		for ts := anchor; len(times) < t.Frequency.MaxReminders && !ts.After(deadline); ts = ts.Add(step) {
			times = append(times, ts)
		}
		return times
	}

	return nil
}
