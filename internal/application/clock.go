package application

import "time"

func nowFrom(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now()
}

func ptr[T any](v T) *T { return &v }
