package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clientlinkhq/clientlink/internal/store/core"
)

// Store is an in-memory repository. Used by tests and by the memory
// storage driver for local runs without postgres.
type Store struct {
	mu             sync.RWMutex
	linksByToken   map[string]core.OnboardingLink
	clients        map[string]core.Client
	authorizations map[string]core.Authorization // key: clientID + "\x00" + platform
}

func New() *Store {
	return &Store{
		linksByToken:   make(map[string]core.OnboardingLink),
		clients:        make(map[string]core.Client),
		authorizations: make(map[string]core.Authorization),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

func (s *Store) CreateLink(_ context.Context, l *core.OnboardingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.linksByToken[l.Token]; ok {
		return core.ErrConflict
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	s.linksByToken[l.Token] = cloneLink(*l)
	return nil
}

func (s *Store) GetLinkByToken(_ context.Context, token string) (*core.OnboardingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.linksByToken[token]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := cloneLink(l)
	return &out, nil
}

func (s *Store) ListLinks(_ context.Context, limit, offset int) ([]core.OnboardingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]core.OnboardingLink, 0, len(s.linksByToken))
	for _, l := range s.linksByToken {
		all = append(all, cloneLink(l))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) UpdateLinkStatus(_ context.Context, token string, status core.LinkStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.linksByToken[token]
	if !ok {
		return core.ErrNotFound
	}
	l.Status = status
	s.linksByToken[token] = l
	return nil
}

func (s *Store) ClaimLink(_ context.Context, token, clientID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.linksByToken[token]
	if !ok {
		return core.ErrNotFound
	}
	if l.UsedBy != nil && *l.UsedBy != clientID {
		return core.ErrConflict
	}
	l.UsedBy = &clientID
	l.UsedAt = &at
	s.linksByToken[token] = l
	return nil
}

func (s *Store) MarkLinkUsed(_ context.Context, token, clientID string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.linksByToken[token]
	if !ok {
		return core.ErrNotFound
	}
	l.Status = core.LinkStatusUsed
	l.UsedBy = &clientID
	l.UsedAt = &usedAt
	s.linksByToken[token] = l
	return nil
}

func (s *Store) CreateClient(_ context.Context, c *core.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; ok {
		return core.ErrConflict
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.clients[c.ID] = *c
	return nil
}

func (s *Store) GetClient(_ context.Context, id string) (*core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetClientByEmail(_ context.Context, email string) (*core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if strings.EqualFold(c.Email, email) {
			out := c
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) UpsertAuthorization(_ context.Context, a *core.Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := authKey(a.ClientID, a.Platform)
	now := time.Now().UTC()
	if prev, ok := s.authorizations[key]; ok {
		a.ID = prev.ID
		a.CreatedAt = prev.CreatedAt
	} else {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	s.authorizations[key] = cloneAuthorization(*a)
	return nil
}

func (s *Store) GetAuthorization(_ context.Context, clientID, platform string) (*core.Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.authorizations[authKey(clientID, platform)]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := cloneAuthorization(a)
	return &out, nil
}

func (s *Store) ListAuthorizationsByClient(_ context.Context, clientID string) ([]core.Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Authorization
	for _, a := range s.authorizations {
		if a.ClientID == clientID {
			out = append(out, cloneAuthorization(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out, nil
}

func authKey(clientID, platform string) string {
	return fmt.Sprintf("%s\x00%s", clientID, platform)
}

func cloneLink(l core.OnboardingLink) core.OnboardingLink {
	l.Platforms = append([]string(nil), l.Platforms...)
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		l.ExpiresAt = &t
	}
	if l.UsedBy != nil {
		v := *l.UsedBy
		l.UsedBy = &v
	}
	if l.UsedAt != nil {
		t := *l.UsedAt
		l.UsedAt = &t
	}
	return l
}

func cloneAuthorization(a core.Authorization) core.Authorization {
	a.Scopes = append([]string(nil), a.Scopes...)
	a.TokenData.SelectedOptions = append([]string(nil), a.TokenData.SelectedOptions...)
	return a
}
