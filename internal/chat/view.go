package chat

import (
	"context"
	"log/slog"
	"sync"

	"ytquery-web/internal/models"
)

// Fallback texts shown in place of a backend reply.
const (
	LoadFailedText  = "Failed to load video data."
	QueryFailedText = "Failed to get a response."
)

// Backend is the question-answering service a View talks to.
type Backend interface {
	Load(ctx context.Context, videoID string) (*models.APIResponse, error)
	Query(ctx context.Context, videoID, question string) (*models.APIResponse, error)
}

// Snapshot is an immutable copy of a view's observable state.
type Snapshot struct {
	VideoID  string           `json:"video_id"`
	Messages []models.Message `json:"messages"`
	Typing   bool             `json:"typing"`
}

// Observer is called with a fresh snapshot after every change.
// Observers run with the view's notification lock held and must not call
// any of the view's methods.
type Observer func(Snapshot)

// View is the conversation about a single video: an append-only message list plus
// a typing flag that is true while a backend call is outstanding.
//
// Backend calls run in their own goroutines. Replies are appended in the order
// they complete, so overlapping submissions may interleave.
type View struct {
	videoID string
	backend Backend
	log     *slog.Logger

	mu        sync.Mutex
	messages  []models.Message
	typing    bool
	activated bool
	observers map[int]Observer
	nextObsID int

	// held while observers run so they see snapshots in mutation order
	notifyMu sync.Mutex

	inflight sync.WaitGroup
}

// NewView creates an idle view for videoID.
func NewView(videoID string, backend Backend, log *slog.Logger) *View {
	return &View{
		videoID:   videoID,
		backend:   backend,
		log:       log.With(slog.String("video_id", videoID)),
		observers: make(map[int]Observer),
	}
}

func (v *View) VideoID() string {
	return v.videoID
}

// Activate requests the initial context for the video. Only the first call has
// any effect.
func (v *View) Activate(ctx context.Context) {
	v.mu.Lock()
	if v.activated {
		v.mu.Unlock()
		return
	}
	v.activated = true
	v.typing = true
	v.inflight.Add(1)
	v.commitLocked()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer v.inflight.Done()

		resp, err := v.backend.Load(ctx, v.videoID)
		if err != nil {
			v.log.Warn("load failed", slog.Any("error", err))
			v.pushAssistant(LoadFailedText)
			return
		}
		v.pushAssistant(resp.Message)
	}()
}

// Submit appends the user's message right away and sends it to the backend as a
// question. The reply (or a fallback) is appended when the call completes.
func (v *View) Submit(ctx context.Context, text string) {
	v.mu.Lock()
	v.appendLocked(text, models.SenderUser)
	v.typing = true
	v.inflight.Add(1)
	v.commitLocked()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer v.inflight.Done()

		resp, err := v.backend.Query(ctx, v.videoID, text)
		if err != nil {
			v.log.Warn("query failed", slog.Any("error", err))
			v.pushAssistant(QueryFailedText)
			return
		}
		v.pushAssistant(resp.Message)
	}()
}

// Subscribe registers an observer and returns a function that removes it.
// The observer is called right away with the current state.
func (v *View) Subscribe(obs Observer) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextObsID
	v.nextObsID++
	v.observers[id] = obs
	snap := v.snapshotLocked()

	v.notifyMu.Lock()
	v.mu.Unlock()
	obs(snap)
	v.notifyMu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.observers, id)
		v.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Observers reports how many observers are attached.
func (v *View) Observers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.observers)
}

// Wait blocks until every dispatched backend call has completed.
func (v *View) Wait() {
	v.inflight.Wait()
}

func (v *View) pushAssistant(text string) {
	v.mu.Lock()
	v.appendLocked(text, models.SenderAssistant)
	v.typing = false
	v.commitLocked()
}

func (v *View) appendLocked(text string, sender models.Sender) {
	v.messages = append(v.messages, models.Message{
		Text:   text,
		Sender: sender,
		Order:  len(v.messages),
	})
}

// commitLocked notifies observers of the current state and releases v.mu.
func (v *View) commitLocked() {
	snap := v.snapshotLocked()
	obs := make([]Observer, 0, len(v.observers))
	for _, o := range v.observers {
		obs = append(obs, o)
	}

	v.notifyMu.Lock()
	v.mu.Unlock()
	defer v.notifyMu.Unlock()

	for _, o := range obs {
		o(snap)
	}
}

func (v *View) snapshotLocked() Snapshot {
	msgs := make([]models.Message, len(v.messages))
	copy(msgs, v.messages)
	return Snapshot{
		VideoID:  v.videoID,
		Messages: msgs,
		Typing:   v.typing,
	}
}
