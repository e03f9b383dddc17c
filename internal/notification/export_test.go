package notification

import "time"

func SetAfter(d *Dispatcher, after func(time.Duration) <-chan time.Time) {
	d.after = after
}
