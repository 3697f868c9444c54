package session

import (
	"time"

	"github.com/shithead-online/server/internal/protocol"
)

// heartbeatInterval is the granularity of TURN_TIMER_UPDATE broadcasts.
const heartbeatInterval = time.Second

// startTurnTimer arms a fresh countdown for the current player, atomically
// replacing any previous timer and heartbeat. At most one of each is
// outstanding per session. Callers hold s.mu; lock order is always
// s.mu → s.timerMu.
func (s *Session) startTurnTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	s.stopTimerLocked()

	playerID := s.game.CurrentPlayer().ID
	s.turnDeadline = time.Now().Add(s.turnTimeout)
	gen := s.timerGen
	s.turnTimer = time.AfterFunc(s.turnTimeout, func() { s.handleTurnTimeout(gen) })

	stop := make(chan struct{})
	s.tickerStop = stop
	go s.heartbeatLoop(playerID, stop)
}

// stopTurnTimer cancels the countdown and its heartbeat.
func (s *Session) stopTurnTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.stopTimerLocked()
}

func (s *Session) stopTimerLocked() {
	s.timerGen++
	if s.turnTimer != nil {
		s.turnTimer.Stop()
		s.turnTimer = nil
	}
	if s.tickerStop != nil {
		close(s.tickerStop)
		s.tickerStop = nil
	}
}

// heartbeatLoop reports the remaining turn time to every connection once a
// second until the countdown it belongs to is cancelled.
func (s *Session) heartbeatLoop(playerID string, stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.timerMu.Lock()
			remaining := time.Until(s.turnDeadline)
			s.timerMu.Unlock()
			if remaining < 0 {
				remaining = 0
			}

			msg := protocol.MustNewMessage(protocol.MsgTurnTimerUpdate, protocol.TurnTimerUpdatePayload{
				PlayerID:        playerID,
				TimeRemainingMs: remaining.Milliseconds(),
			})

			s.mu.Lock()
			select {
			case <-stop:
				// Cancelled while waiting for the session lock; a tick
				// for a superseded countdown must not leak out.
				s.mu.Unlock()
				return
			default:
			}
			s.broadcastLocked(msg)
			s.mu.Unlock()

			if remaining == 0 {
				return
			}
		}
	}
}
