package scope

import "time"

// Timer is a cancellable deferred callback.
type Timer interface {
	Stop() bool
}

// Scheduler schedules deferred callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc is func type of Scheduler.
type SchedulerFunc func(time.Duration, func()) Timer

// AfterFunc implements Scheduler.
func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer {
	return f(d, fn)
}

// RealTime schedules callbacks with time.AfterFunc.
var RealTime Scheduler = SchedulerFunc(func(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
})
