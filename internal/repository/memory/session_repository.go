package memory

import (
	"time"

	"ai-studypal-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository holds live sessions in process memory. Sessions are
// created at login and removed at logout; the TTL evicts abandoned ones.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// Touch extends the session's lifetime. Called on every authenticated request
// so active sessions never expire mid-use.
func (r *SessionRepository) Touch(sessionID string) {
	if x, found := r.cache.Get(sessionID); found {
		r.cache.Set(sessionID, x, cache.DefaultExpiration)
	}
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
