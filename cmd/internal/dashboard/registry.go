package dashboard

import (
	"context"
	"sync"

	"gobarber/cmd/internal/integration/gobarber"
)

// Registry holds one Board per signed-in session.
type Registry struct {
	ctx  context.Context
	api  gobarber.ClientInterface
	opts Options

	mu     sync.Mutex
	boards map[string]*Board
}

// NewRegistry creates boards whose fetches stop when ctx is cancelled.
func NewRegistry(ctx context.Context, api gobarber.ClientInterface, opts Options) *Registry {
	return &Registry{ctx: ctx, api: api, opts: opts, boards: make(map[string]*Board)}
}

// Get returns the board of sessionID, opening one for who on first use.
func (r *Registry) Get(sessionID string, who Identity) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.boards[sessionID]; ok {
		return b
	}
	b := NewBoard(r.ctx, r.api, who, r.opts)
	r.boards[sessionID] = b
	return b
}

// Drop closes and forgets the board of sessionID, if any.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	b, ok := r.boards[sessionID]
	delete(r.boards, sessionID)
	r.mu.Unlock()

	if ok {
		b.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
