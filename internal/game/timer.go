package game

import (
	"context"
	"time"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

// timerTick is how often running timers broadcast their remaining budget.
const timerTick = time.Second

// armTimer replaces the room's outstanding timer with a new one. Caller must
// hold room.Mu. When the deadline passes, expire runs under room.Mu and its
// events are published afterwards; a timer that was superseded or cancelled
// does nothing.
func (reg *Registry) armTimer(room *internal.Room, d time.Duration, expire func(*internal.Room) []outEvent) {
	reg.cancelTimer(room)

	ctx, cancel := context.WithTimeout(context.Background(), d)
	timer := &internal.GameTimer{
		StartTime: time.Now(),
		Duration:  d,
		Active:    true,
		Context:   ctx,
		Cancel:    cancel,
	}
	room.Timer = timer

	go func() {
		ticker := time.NewTicker(timerTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				room.Mu.RLock()
				if room.Timer != timer {
					room.Mu.RUnlock()
					return
				}
				update := internal.TimerUpdateData{
					TimeRemaining: timer.Remaining().Milliseconds(),
					Phase:         room.Phase,
					IsActive:      true,
				}
				room.Mu.RUnlock()
				reg.bc.BroadcastToRoom(room.Id, internal.Message[any]{
					Type: internal.EventTimerUpdate,
					Data: update,
				})
			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					return // cancelled, a newer timer owns the room now
				}
				room.Mu.Lock()
				if room.Timer != timer {
					room.Mu.Unlock()
					return
				}
				timer.Active = false
				room.Timer = nil
				events := expire(room)
				room.Mu.Unlock()
				reg.publish(room.Id, events)
				return
			}
		}
	}()
}

// cancelTimer stops the outstanding timer, if any. Caller must hold room.Mu.
func (reg *Registry) cancelTimer(room *internal.Room) {
	if room.Timer == nil {
		return
	}
	room.Timer.Active = false
	if room.Timer.Cancel != nil {
		room.Timer.Cancel()
	}
	room.Timer = nil
}
