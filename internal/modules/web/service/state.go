package service

import (
	"sync/atomic"
	"time"
)

// State — витрина живости процесса для health-ручек.
// Семантики внутрь не несёт: authenticated выставляется один раз
// по итогу логина, lastSignal трогает каждый обработанный сигнал.
type State struct {
	startedAt time.Time

	authenticated  atomic.Bool
	lastSignalUnix atomic.Int64 // unix seconds
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetAuthenticated(v bool) { s.authenticated.Store(v) }
func (s *State) Authenticated() bool     { return s.authenticated.Load() }

func (s *State) TouchSignal() { s.lastSignalUnix.Store(time.Now().Unix()) }
func (s *State) LastSignal() time.Time {
	u := s.lastSignalUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
