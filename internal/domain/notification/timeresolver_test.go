package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func timeBasedTrigger(offset Offset, freq Frequency) *Trigger {
	t := NewTrigger("deadline reminder", TriggerTimeBased)
	t.Offset = &offset
	t.Frequency = freq
	t.Template = MessageTemplate{Subject: "s", Body: "b", Channels: []Channel{ChannelEmail}}
	t.Targeting = Targeting{Audience: AudienceAll}
	return t
}

func TestResolveFireTimes_OnceAllUnits(t *testing.T) {
	deadline := fixedNow().Add(30 * 24 * time.Hour)

	tests := []struct {
		name     string
		offset   Offset
		expected time.Time
	}{
		{"48 hours before", Offset{Value: 48, Unit: OffsetHours}, deadline.Add(-48 * time.Hour)},
		{"7 days before", Offset{Value: 7, Unit: OffsetDays}, deadline.Add(-7 * 24 * time.Hour)},
		{"2 weeks before", Offset{Value: 2, Unit: OffsetWeeks}, deadline.Add(-14 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := timeBasedTrigger(tt.offset, Frequency{Type: FrequencyOnce})
			times := ResolveFireTimes(trigger, deadline, fixedNow)

			require.Len(t, times, 1)
			assert.True(t, times[0].Equal(tt.expected))
		})
	}
}

func TestResolveFireTimes_PastAnchorStillEmitted(t *testing.T) {
	// Deadline in 1 hour but offset of 2 days puts the fire time in the
	// past; it must still be emitted so the next tick fires it immediately.
	deadline := fixedNow().Add(time.Hour)
	trigger := timeBasedTrigger(Offset{Value: 2, Unit: OffsetDays}, Frequency{Type: FrequencyOnce})

	times := ResolveFireTimes(trigger, deadline, fixedNow)

	require.Len(t, times, 1)
	assert.True(t, times[0].Before(fixedNow()))
}

func TestResolveFireTimes_RecurringSteppingTowardDeadline(t *testing.T) {
	// Interval 1 day, cap 3, deadline now+10d, offset 7d: fire times land
	// on day 3, day 4 and day 5 from now.
	now := fixedNow()
	deadline := now.Add(10 * 24 * time.Hour)
	trigger := timeBasedTrigger(
		Offset{Value: 7, Unit: OffsetDays},
		Frequency{
			Type:         FrequencyRecurring,
			Interval:     &Interval{Value: 1, Unit: IntervalDays},
			MaxReminders: 3,
		},
	)

	times := ResolveFireTimes(trigger, deadline, fixedNow)

	require.Len(t, times, 3)
	assert.True(t, times[0].Equal(now.Add(3*24*time.Hour)))
	assert.True(t, times[1].Equal(now.Add(4*24*time.Hour)))
	assert.True(t, times[2].Equal(now.Add(5*24*time.Hour)))
}

func TestResolveFireTimes_RecurringProperties(t *testing.T) {
	deadline := fixedNow().Add(6 * 24 * time.Hour)
	trigger := timeBasedTrigger(
		Offset{Value: 5, Unit: OffsetDays},
		Frequency{
			Type:         FrequencyRecurring,
			Interval:     &Interval{Value: 12, Unit: IntervalHours},
			MaxReminders: 5,
		},
	)

	times := ResolveFireTimes(trigger, deadline, fixedNow)

	require.Len(t, times, 5)
	for i, ts := range times {
		assert.False(t, ts.After(deadline), "fire time %d past deadline", i)
		if i > 0 {
			assert.Equal(t, 12*time.Hour, ts.Sub(times[i-1]))
			assert.False(t, ts.Before(times[i-1]), "sequence must be non-decreasing")
		}
	}
}

func TestResolveFireTimes_RecurringNeverPastDeadline(t *testing.T) {
	// Anchor 1 day before deadline with a large cap: only steps that fit
	// before the deadline are produced.
	deadline := fixedNow().Add(48 * time.Hour)
	trigger := timeBasedTrigger(
		Offset{Value: 1, Unit: OffsetDays},
		Frequency{
			Type:         FrequencyRecurring,
			Interval:     &Interval{Value: 6, Unit: IntervalHours},
			MaxReminders: 100,
		},
	)

	times := ResolveFireTimes(trigger, deadline, fixedNow)

	// Anchor at deadline-24h, then every 6h up to and including the deadline.
	require.Len(t, times, 5)
	assert.True(t, times[len(times)-1].Equal(deadline))
}

func TestResolveFireTimes_Milestone(t *testing.T) {
	trigger := NewTrigger("funding milestone", TriggerMilestoneBased)

	times := ResolveFireTimes(trigger, fixedNow().Add(10*24*time.Hour), fixedNow)

	require.Len(t, times, 1)
	assert.True(t, times[0].Equal(fixedNow()))
}

func TestResolveFireTimes_CustomNeverSelfSchedules(t *testing.T) {
	trigger := NewTrigger("manual announcement", TriggerCustom)

	assert.Empty(t, ResolveFireTimes(trigger, fixedNow().Add(time.Hour), fixedNow))
}

func TestResolveFireTimes_TimeBasedWithoutOffset(t *testing.T) {
	trigger := NewTrigger("broken", TriggerTimeBased)

	assert.Empty(t, ResolveFireTimes(trigger, fixedNow().Add(time.Hour), fixedNow))
}

func TestOffset_Duration(t *testing.T) {
	assert.Equal(t, 3*time.Hour, Offset{Value: 3, Unit: OffsetHours}.Duration())
	assert.Equal(t, 48*time.Hour, Offset{Value: 2, Unit: OffsetDays}.Duration())
	assert.Equal(t, 7*24*time.Hour, Offset{Value: 1, Unit: OffsetWeeks}.Duration())
	assert.Equal(t, time.Duration(0), Offset{Value: 1, Unit: OffsetUnit("month")}.Duration())
}
