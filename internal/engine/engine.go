package engine

import (
	"time"

	"commons-hub/internal/database"
	"commons-hub/internal/engine/actors"
	"commons-hub/internal/utils"
	"commons-hub/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	system            *actor.ActorSystem
	directoryActor    *actor.PID
	conversationActor *actor.PID
	notificationActor *actor.PID
	issueActor        *actor.PID
	bulletinActor     *actor.PID
	hub               *websocket.Hub
	timeout           time.Duration
}

func NewEngine(system *actor.ActorSystem, db *database.MongoDB, hub *websocket.Hub, metrics *utils.MetricsCollector, timeout time.Duration) *Engine {
	context := system.Root

	directoryProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewDirectoryActor(db, metrics)
	})
	conversationProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewConversationActor(db, metrics)
	})
	notificationProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewNotificationActor(db, metrics)
	})
	issueProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewIssueActor(db, metrics)
	})
	bulletinProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewBulletinActor(db, metrics)
	})

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Engine{
		system:            system,
		directoryActor:    context.Spawn(directoryProps),
		conversationActor: context.Spawn(conversationProps),
		notificationActor: context.Spawn(notificationProps),
		issueActor:        context.Spawn(issueProps),
		bulletinActor:     context.Spawn(bulletinProps),
		hub:               hub,
		timeout:           timeout,
	}
}

// GetDirectoryActor returns the PID of the user directory actor
func (e *Engine) GetDirectoryActor() *actor.PID {
	return e.directoryActor
}

// GetConversationActor returns the PID of the conversation actor
func (e *Engine) GetConversationActor() *actor.PID {
	return e.conversationActor
}

// GetNotificationActor returns the PID of the notification actor
func (e *Engine) GetNotificationActor() *actor.PID {
	return e.notificationActor
}

// GetIssueActor returns the PID of the issue actor
func (e *Engine) GetIssueActor() *actor.PID {
	return e.issueActor
}

// GetBulletinActor returns the PID of the bulletin actor
func (e *Engine) GetBulletinActor() *actor.PID {
	return e.bulletinActor
}

// request sends msg to pid and waits for the reply, translating timeouts
// into an AppError.
func (e *Engine) request(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := e.system.Root.RequestFuture(pid, msg, e.timeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(pid.String())
	}
	return result, nil
}

// StartSweeper runs the periodic expiry sweep for notifications and
// announcements. The returned stop function ends the loop.
func (e *Engine) StartSweeper(interval time.Duration) func() {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				now := time.Now()
				e.system.Root.Send(e.notificationActor, &actors.SweepExpiredMsg{Now: now})
				e.system.Root.Send(e.bulletinActor, &actors.SweepExpiredAnnouncementsMsg{Now: now})
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
