package clock

import "time"

// Clock abstracts time so state transitions can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	Current time.Time
}

func (f *Fake) Now() time.Time {
	return f.Current
}

// Advance moves the fake clock forward and returns the new time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.Current = f.Current.Add(d)
	return f.Current
}
