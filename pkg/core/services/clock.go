package services

import "time"

// Clock supplies the current instant. The engine never calls time.Now
// directly so tests can pin "now" to a fixed point.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// NewRealClock returns a Clock backed by the system wall clock
func NewRealClock() Clock {
	return realClock{}
}
