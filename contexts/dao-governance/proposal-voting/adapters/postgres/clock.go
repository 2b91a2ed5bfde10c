package postgresadapter

import "time"

// SystemClock is the runtime clock for postgres-backed deployments.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
