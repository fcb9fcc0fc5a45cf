package ui

import (
	"context"
	"sync"

	"github.com/juju/errors"

	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/log2"
)

// Registry maps application ids to their implementations. Registration
// happens at startup, lookups for the rest of the process life.
type Registry struct {
	Log *log2.Log

	mu   sync.RWMutex
	apps map[types.AppID]types.Apper
	// registration order, for stable launcher layout
	order []types.AppID
}

func NewRegistry(log *log2.Log) *Registry {
	return &Registry{
		Log:  log,
		apps: make(map[types.AppID]types.Apper, 4),
	}
}

// Register installs app under id. Registering an id again replaces the
// previous implementation.
func (r *Registry) Register(id types.AppID, app types.Apper) {
	if id == "" || app == nil {
		panic("code error app register id=" + string(id))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; ok {
		r.Log.Infof("app id=%s replaced", id)
	} else {
		r.order = append(r.order, id)
	}
	r.apps[id] = app
}

// Dispatch launches the app. Unknown id is a logged no-op.
func (r *Registry) Dispatch(ctx context.Context, id types.AppID) error {
	app := r.Get(id)
	if app == nil {
		r.Log.Errorf("app dispatch unknown id=%s", id)
		return nil
	}
	return errors.Annotatef(app.Show(ctx), "dispatch app=%s", id)
}

// Get returns nil for unknown ids.
func (r *Registry) Get(id types.AppID) types.Apper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.apps[id]
}

func (r *Registry) IsRunning(id types.AppID) bool {
	app := r.Get(id)
	return app != nil && app.IsRunning()
}

// Running returns the currently running app, if any. At most one app
// runs at a time by construction.
func (r *Registry) Running() (types.AppID, types.Apper) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if app := r.apps[id]; app.IsRunning() {
			return id, app
		}
	}
	return "", nil
}

func (r *Registry) Each(f func(id types.AppID, app types.Apper)) {
	r.mu.RLock()
	ids := make([]types.AppID, len(r.order))
	copy(ids, r.order)
	r.mu.RUnlock()
	for _, id := range ids {
		f(id, r.Get(id))
	}
}

func (r *Registry) IDs() []types.AppID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.AppID, len(r.order))
	copy(out, r.order)
	return out
}
