package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/log"
)

type TeamSubscriber struct {
	ID uuid.UUID
	Ch chan<- *TeamEvent
}

type TeamType uint32

const (
	TCreate TeamType = iota
	TJoin
	TUpdate
	TKick
	TPromote
)

type TeamEvent struct {
	Type     TeamType        `json:"type"`
	TeamName string          `json:"team_name"`
	Email    string          `json:"email"`
	Members  []entity.Member `json:"members"`
}

func ConsumeTeam(ctx context.Context) <-chan *TeamEvent {
	ensureEvents()

	ch := make(chan *TeamEvent, 16)
	e.lock.Lock()
	defer e.lock.Unlock()

	ID, err := uuid.NewUUID()
	if err != nil {
		panic(err)
	}
	e.teamSubscribers = append(e.teamSubscribers, &TeamSubscriber{ID: ID, Ch: ch})
	go func() {
		<-ctx.Done()
		e.lock.Lock()
		defer e.lock.Unlock()

		for k, v := range e.teamSubscribers {
			if v.ID == ID {
				a := e.teamSubscribers
				a[k] = a[len(a)-1]
				a[len(a)-1] = nil
				e.teamSubscribers = a[:len(a)-1]
				break
			}
		}
	}()

	return ch
}

func PublishTeam(event *TeamEvent) {
	ensureEvents()

	b, err := json.Marshal(event)
	if err != nil {
		log.Logger.Error("marshal failure", zap.Error(err))
		return
	}

	err = e.Ch.Publish(TeamsExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
	if err != nil {
		// membership write already landed, a lost event only delays
		// dashboard refreshes
		log.Logger.Error("queue publish failure", zap.Error(err))
	}

	e.lock.Lock()
	subs := make([]*TeamSubscriber, len(e.teamSubscribers))
	copy(subs, e.teamSubscribers)
	e.lock.Unlock()

	for _, v := range subs {
		select {
		case v.Ch <- event:
		default:
			// a subscriber that stopped draining must not stall writes
			log.Logger.Warn("dropping team event for slow subscriber", zap.String("subscriber", v.ID.String()))
		}
	}
}
