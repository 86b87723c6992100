package session

import "context"

// Store is the injected session lookup/save/list interface (§6 "Session
// store interface"). Reads after a successful Save of the same id return
// the written value — the one ordering guarantee §6 requires; beyond that,
// the store may be a remote, possibly multi-writer service, and the
// machine tolerates duplicate saves as long as UpdatedAt is monotone (§5).
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
	ListByState(ctx context.Context, state State) ([]*Session, error)
}
