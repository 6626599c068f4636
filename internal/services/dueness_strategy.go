package services

import (
	"time"
)

// DueChecker decides whether a payment scheduled at next is due at now.
type DueChecker interface {
	IsDue(next, now time.Time) bool
}

// DayChecker treats a payment as due for the whole of its calendar day,
// compared in now's location.
type DayChecker struct{}

func (DayChecker) IsDue(next, now time.Time) bool {
	n := next.In(now.Location())
	nextDay := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !nextDay.After(today)
}

// InstantChecker treats a payment as due once now reaches next exactly.
type InstantChecker struct{}

func (InstantChecker) IsDue(next, now time.Time) bool {
	return !next.After(now)
}
