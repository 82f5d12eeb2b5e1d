package chrono

import "time"

// API is the interface that anything depending on the system clock should use.
type API interface {
	Now() time.Time
}

// StandardImpl is the implementation of API backed by the system clock.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// UnixMilli returns the current time of the clock in epoch milliseconds.
func UnixMilli(clock API) int64 {
	return clock.Now().UnixMilli()
}
