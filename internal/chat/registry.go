package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	view     *View
	lastSeen time.Time
}

// Registry keeps the live views, one per open chat page. A view is dropped when
// its page closes or when it has had no observers for longer than the idle TTL.
type Registry struct {
	mu       sync.Mutex
	views    map[uuid.UUID]*entry
	backend  Backend
	idleTTL  time.Duration
	log      *slog.Logger
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewRegistry(backend Backend, idleTTL time.Duration, log *slog.Logger) *Registry {
	return &Registry{
		views:    make(map[uuid.UUID]*entry),
		backend:  backend,
		idleTTL:  idleTTL,
		log:      log,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Open creates and activates a new view for videoID.
func (r *Registry) Open(ctx context.Context, videoID string) (uuid.UUID, *View) {
	id := uuid.New()
	view := NewView(videoID, r.backend, r.log)

	r.mu.Lock()
	r.views[id] = &entry{view: view, lastSeen: r.now()}
	total := len(r.views)
	r.mu.Unlock()

	r.log.Debug("view opened",
		slog.String("view_id", id.String()),
		slog.String("video_id", videoID),
		slog.Int("total", total),
	)

	view.Activate(ctx)
	return id, view
}

// Get looks up a live view. The view must belong to videoID.
func (r *Registry) Get(id uuid.UUID, videoID string) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[id]
	if !ok || e.view.VideoID() != videoID {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.view, true
}

// Close tears the view down. In-flight backend calls are left to finish.
func (r *Registry) Close(id uuid.UUID) {
	r.mu.Lock()
	_, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if ok {
		r.log.Debug("view closed", slog.String("view_id", id.String()))
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Start runs the idle sweep in the background until Stop is called. A
// non-positive idle TTL disables the sweep.
func (r *Registry) Start() {
	if r.idleTTL <= 0 {
		return
	}
	interval := r.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stopChan:
				return
			case <-ticker.C:
				if n := r.sweep(); n > 0 {
					r.log.Info("idle views dropped", slog.Int("count", n))
				}
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *Registry) sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, e := range r.views {
		if e.view.Observers() > 0 {
			e.lastSeen = r.now()
			continue
		}
		if e.lastSeen.Before(cutoff) {
			delete(r.views, id)
			dropped++
		}
	}
	return dropped
}
