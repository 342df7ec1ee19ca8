package model

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

type TriggerKind int

const ONE_SHOT TriggerKind = 1
const REPEATING TriggerKind = 2
const CRON TriggerKind = 3

func (k TriggerKind) String() string {
	switch k {
	case ONE_SHOT:
		return "ONE_SHOT"
	case REPEATING:
		return "REPEATING"
	case CRON:
		return "CRON"
	}
	return "UNKNOWN"
}

type MisfirePolicy string

// MISFIRE_ALL replays every missed firing, MISFIRE_ONE replays a single one
// and MISFIRE_NONE drops them.
const MISFIRE_ALL MisfirePolicy = "ALL"
const MISFIRE_ONE MisfirePolicy = "ONE"
const MISFIRE_NONE MisfirePolicy = "NONE"

func ToMisfirePolicy(s string) (MisfirePolicy, error) {
	switch MisfirePolicy(s) {
	case MISFIRE_ALL, MISFIRE_ONE, MISFIRE_NONE:
		return MisfirePolicy(s), nil
	case "":
		return MISFIRE_ALL, nil
	}
	return "", fmt.Errorf("invalid misfire policy %s", s)
}

// MAX_FIRE_TIMES bounds how many missed firings are computed in one call.
const MAX_FIRE_TIMES = 1000

// Trigger tells when a unit of work fires. The zero value is not usable, build
// one with NewOneShotTrigger, NewRepeatTrigger or NewCronTrigger.
type Trigger struct {
	kind          TriggerKind
	name          string
	startDate     time.Time
	priority      int
	misfirePolicy MisfirePolicy

	count    int
	interval time.Duration

	expression string
	endDate    *time.Time
	schedule   cron.Schedule
}

func NewOneShotTrigger(name string, startDate time.Time, priority int, policy MisfirePolicy) (Trigger, error) {
	if len(name) == 0 {
		return Trigger{}, fmt.Errorf("trigger name can not be empty")
	}
	return Trigger{
		kind:          ONE_SHOT,
		name:          name,
		startDate:     startDate,
		priority:      priority,
		misfirePolicy: policy,
	}, nil
}

func NewRepeatTrigger(name string, startDate time.Time, priority int, policy MisfirePolicy, count int, intervalMillis int64) (Trigger, error) {
	t, err := NewOneShotTrigger(name, startDate, priority, policy)
	if err != nil {
		return Trigger{}, err
	}
	if count < 1 {
		return Trigger{}, fmt.Errorf("trigger %s: count should be at least 1, got %d", name, count)
	}
	if intervalMillis <= 0 {
		return Trigger{}, fmt.Errorf("trigger %s: interval should be positive, got %d", name, intervalMillis)
	}
	t.kind = REPEATING
	t.count = count
	t.interval = time.Duration(intervalMillis) * time.Millisecond
	return t, nil
}

func NewCronTrigger(name string, expression string, startDate time.Time, endDate *time.Time, priority int, policy MisfirePolicy) (Trigger, error) {
	t, err := NewOneShotTrigger(name, startDate, priority, policy)
	if err != nil {
		return Trigger{}, err
	}
	schedule, err := cron.ParseStandard(expression)
	if err != nil {
		return Trigger{}, fmt.Errorf("trigger %s: invalid cron expression %q: %w", name, expression, err)
	}
	if endDate != nil && endDate.Before(startDate) {
		return Trigger{}, fmt.Errorf("trigger %s: end date before start date", name)
	}
	t.kind = CRON
	t.expression = expression
	t.schedule = schedule
	if endDate != nil {
		end := *endDate
		t.endDate = &end
	}
	return t, nil
}

func (t Trigger) Kind() TriggerKind {
	return t.kind
}

func (t Trigger) Name() string {
	return t.name
}

func (t Trigger) StartDate() time.Time {
	return t.startDate
}

func (t Trigger) Priority() int {
	return t.priority
}

func (t Trigger) MisfirePolicy() MisfirePolicy {
	return t.misfirePolicy
}

func (t Trigger) Count() int {
	return t.count
}

func (t Trigger) IntervalMillis() int64 {
	return t.interval.Milliseconds()
}

func (t Trigger) Expression() string {
	return t.expression
}

func (t Trigger) EndDate() (time.Time, bool) {
	if t.endDate == nil {
		return time.Time{}, false
	}
	return *t.endDate, true
}

func (t Trigger) FirstFireTime() time.Time {
	if t.kind != CRON {
		return t.startDate
	}
	first := t.schedule.Next(t.startDate.Add(-time.Second))
	if first.Before(t.startDate) {
		first = t.schedule.Next(t.startDate)
	}
	return first
}

// NextFireTime returns the first fire instant strictly after the given time.
func (t Trigger) NextFireTime(after time.Time) (time.Time, bool) {
	switch t.kind {
	case ONE_SHOT:
		if t.startDate.After(after) {
			return t.startDate, true
		}
		return time.Time{}, false
	case REPEATING:
		if t.startDate.After(after) {
			return t.startDate, true
		}
		k := int(after.Sub(t.startDate)/t.interval) + 1
		if k >= t.count {
			return time.Time{}, false
		}
		return t.startDate.Add(time.Duration(k) * t.interval), true
	case CRON:
		var next time.Time
		if first := t.FirstFireTime(); first.After(after) {
			next = first
		} else {
			next = t.schedule.Next(after)
		}
		if next.IsZero() {
			return time.Time{}, false
		}
		if t.endDate != nil && next.After(*t.endDate) {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}

// FireTimesBetween lists fire instants in (from, to], at most MAX_FIRE_TIMES.
func (t Trigger) FireTimesBetween(from time.Time, to time.Time) []time.Time {
	var times []time.Time
	cursor := from
	for len(times) < MAX_FIRE_TIMES {
		next, ok := t.NextFireTime(cursor)
		if !ok || next.After(to) {
			break
		}
		times = append(times, next)
		cursor = next
	}
	return times
}

// Rescheduled returns the trigger describing what is left of the schedule once
// it fired at lastFire. The receiver is left untouched.
func (t Trigger) Rescheduled(lastFire time.Time) (Trigger, bool) {
	next, ok := t.NextFireTime(lastFire)
	if !ok {
		return Trigger{}, false
	}
	rs := t
	rs.startDate = next
	if t.kind == REPEATING {
		fired := 0
		if !lastFire.Before(t.startDate) {
			fired = int(lastFire.Sub(t.startDate)/t.interval) + 1
		}
		rs.count = t.count - fired
		if rs.count < 1 {
			return Trigger{}, false
		}
	}
	if t.endDate != nil {
		end := *t.endDate
		rs.endDate = &end
	}
	return rs, true
}

func (t Trigger) String() string {
	return fmt.Sprintf("%s[%s start=%s priority=%d misfire=%s]", t.name, t.kind, t.startDate.Format(time.RFC3339), t.priority, t.misfirePolicy)
}
