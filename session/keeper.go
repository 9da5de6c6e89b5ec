package session

import (
	"context"
	"errors"
	"sync"
)

// Keeper owns the two credential entries of one logical session on top of a
// Store. Writes (login pair, profile merge, clear) are serialized; reads go
// straight to the store.
type Keeper struct {
	store Store
	mu    sync.Mutex
}

func NewKeeper(store Store) *Keeper {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Keeper{store: store}
}

// Token returns the stored bearer token, or "" when none is stored.
func (k *Keeper) Token(ctx context.Context) (string, error) {
	v, ok, err := k.store.Get(ctx, KeyToken)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// UserInfo returns the stored user record, or nil when none is stored.
func (k *Keeper) UserInfo(ctx context.Context) (UserInfo, error) {
	raw, ok, err := k.store.Get(ctx, KeyUserInfo)
	if err != nil || !ok {
		return nil, err
	}
	return DecodeUserInfo(raw)
}

// Load reads both entries.
func (k *Keeper) Load(ctx context.Context) (Session, error) {
	token, err := k.Token(ctx)
	if err != nil {
		return Session{}, err
	}
	info, err := k.UserInfo(ctx)
	if err != nil {
		return Session{Token: token}, err
	}
	return Session{Token: token, UserInfo: info}, nil
}

// Establish stores token and info together, replacing the previous session.
// An empty token removes any stale token so the pair stays consistent.
func (k *Keeper) Establish(ctx context.Context, token string, info UserInfo) error {
	encoded, err := EncodeUserInfo(info)
	if err != nil {
		return err
	}

	set := map[string]string{KeyUserInfo: encoded}
	var del []string
	if token != "" {
		set[KeyToken] = token
	} else {
		del = []string{KeyToken}
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	return k.apply(ctx, set, del)
}

// MergeUserInfo applies patch to the stored record and writes it back. The
// token entry is left untouched. The merged record is returned.
func (k *Keeper) MergeUserInfo(ctx context.Context, patch map[string]any) (UserInfo, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	current, err := k.UserInfo(ctx)
	if err != nil && !errors.Is(err, ErrUserInfoCorrupt) {
		return nil, err
	}
	merged := current.Merge(patch)
	encoded, err := EncodeUserInfo(merged)
	if err != nil {
		return nil, err
	}
	if err := k.store.Set(ctx, KeyUserInfo, encoded); err != nil {
		return nil, err
	}
	return merged, nil
}

// Clear deletes both entries. It is idempotent.
func (k *Keeper) Clear(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.apply(ctx, nil, []string{KeyToken, KeyUserInfo})
}

func (k *Keeper) apply(ctx context.Context, set map[string]string, del []string) error {
	if b, ok := k.store.(BatchStore); ok {
		return b.Apply(ctx, set, del)
	}

	var errs []error
	for key, v := range set {
		if err := k.store.Set(ctx, key, v); err != nil {
			errs = append(errs, err)
		}
	}
	for _, key := range del {
		if err := k.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
