package eventlog

import "time"

// WaitForAppend blocks until a new append occurs or timeout elapses.
// It returns true when woken by an append, false on timeout.
// A timeout <= 0 waits indefinitely.
func (l *Log) WaitForAppend(timeout time.Duration) bool {
	l.mu.Lock()
	ch := l.notifyCh
	l.mu.Unlock()
	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
