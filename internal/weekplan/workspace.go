package weekplan

import (
	"sync"
	"time"

	"github.com/fdg312/weekplan/internal/planner"
	"github.com/fdg312/weekplan/internal/userctx"
)

// Caller is one browser session of a user. Every signed-in session gets its
// own workspace; requests without a session id (the local user) share one
// per user.
type Caller struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time // zero means the workspace never expires
}

// User is a Caller without a session.
func User(userID string) Caller {
	return Caller{UserID: userID}
}

// CallerFrom maps a request identity to its workspace owner.
func CallerFrom(id userctx.Identity) Caller {
	return Caller{UserID: id.UserID, SessionID: id.SessionID, ExpiresAt: id.ExpiresAt}
}

func (c Caller) key() string {
	if c.SessionID == "" {
		return c.UserID
	}
	return c.UserID + "/" + c.SessionID
}

// Workspace is the planner state of one session. The mutex is held for
// whole operations, remote load and save included.
type Workspace struct {
	mu      sync.Mutex
	store   *planner.Store
	loaded  bool
	expires time.Time
}

func newWorkspace() *Workspace {
	return &Workspace{store: planner.NewStore()}
}

// Registry maps sessions to workspaces. Workspaces of expired tokens are
// dropped on the next Get.
type Registry struct {
	mu     sync.Mutex
	spaces map[string]*Workspace
	now    func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{spaces: make(map[string]*Workspace), now: time.Now}
}

// Get returns the caller's workspace, creating an empty one on first use.
func (r *Registry) Get(c Caller) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, ws := range r.spaces {
		if !ws.expires.IsZero() && now.After(ws.expires) {
			delete(r.spaces, k)
		}
	}

	ws, ok := r.spaces[c.key()]
	if !ok {
		ws = newWorkspace()
		r.spaces[c.key()] = ws
	}
	if c.ExpiresAt.After(ws.expires) {
		ws.expires = c.ExpiresAt
	}
	return ws
}

// Remove forgets the caller's workspace and returns it, or nil.
func (r *Registry) Remove(c Caller) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	ws := r.spaces[c.key()]
	delete(r.spaces, c.key())
	return ws
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}
