package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/assistant"
)

// Answer is an assistant reply with its provenance.
type Answer struct {
	assistant.Reply
	Origin Origin
	Reason error
}

// Canned reports whether the reply was produced offline.
func (a Answer) Canned() bool { return a.Origin == OriginFallback }

// Advisor answers questions through the API chat endpoint, falling back to
// canned replies.
type Advisor struct {
	client *Client
	canned assistant.Canned
	log    *zap.Logger
}

func NewAdvisor(client *Client, log *zap.Logger) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{client: client, log: log.Named("advisor")}
}

func (a *Advisor) Ask(ctx context.Context, q assistant.Question) Answer {
	reason := ErrNoBackend
	if a.client != nil {
		r, err := a.client.Chat(ctx, q.Task.ID, q.Text)
		if err == nil {
			return Answer{Reply: *r, Origin: OriginLive}
		}
		reason = err
		a.log.Warn("chat unavailable, using canned reply", zap.String("task_id", q.Task.ID), zap.Error(err))
	}
	return Answer{Reply: a.canned.Reply(q), Origin: OriginFallback, Reason: reason}
}
