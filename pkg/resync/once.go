package resync

import (
	"sync"
)

// Once is like sync.Once but supports Reset, so singletons can be recreated
// between tests.
type Once struct {
	m    sync.Mutex
	done bool
}

// Do calls f only if Do has not been called since creation or the last Reset.
func (o *Once) Do(f func()) {
	o.m.Lock()
	defer o.m.Unlock()
	if o.done {
		return
	}
	f()
	o.done = true
}

// Reset rearms the Once so the next Do runs its function again.
func (o *Once) Reset() {
	o.m.Lock()
	defer o.m.Unlock()
	o.done = false
}
