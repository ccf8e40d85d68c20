package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/task"
)

// Origin says where a result came from.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginFallback Origin = "fallback"
)

// Result is a task list together with its provenance. Reason is set when the
// fallback was used.
type Result struct {
	Tasks  []task.Task
	Origin Origin
	Reason error
}

// Live reports whether the backend answered.
func (r Result) Live() bool { return r.Origin == OriginLive }

// Local is the offline task source.
type Local interface {
	ListTasks() ([]task.Task, error)
	ReplaceTasks([]task.Task) error
}

// Catalog loads tasks from the API when possible and otherwise from Local.
// A successful live load refreshes Local so the next offline start sees it.
type Catalog struct {
	client *Client // nil when no backend is configured
	local  Local
	log    *zap.Logger
}

func NewCatalog(client *Client, local Local, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{client: client, local: local, log: log.Named("catalog")}
}

// Load never fails outright: backend problems produce a fallback result. It
// only returns an error when the local catalog itself cannot be read.
func (c *Catalog) Load(ctx context.Context) (Result, error) {
	reason := ErrNoBackend
	if c.client != nil {
		tasks, err := c.client.Tasks(ctx)
		if err == nil {
			// An empty answer never wipes the local catalog.
			if len(tasks) > 0 {
				if err := c.local.ReplaceTasks(tasks); err != nil {
					c.log.Warn("cache live tasks", zap.Error(err))
				}
			}
			c.log.Debug("loaded live tasks", zap.Int("count", len(tasks)))
			return Result{Tasks: tasks, Origin: OriginLive}, nil
		}
		reason = err
		c.log.Warn("backend unavailable, using local catalog", zap.Error(err))
	}

	tasks, err := c.local.ListTasks()
	if err != nil {
		return Result{}, fmt.Errorf("load local catalog: %w", err)
	}
	return Result{Tasks: tasks, Origin: OriginFallback, Reason: reason}, nil
}
