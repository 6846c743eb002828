// Package memory implements the store contracts in process memory. It backs
// the test suite and STORE_DRIVER=memory runs; semantics match the Postgres
// implementation, including first-writer-wins edges and at-most-once
// activation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/olimp-shop/backend/internal/models"
	"github.com/olimp-shop/backend/internal/store"
)

type data struct {
	users     map[string]models.User
	referrals map[string]models.Referral // keyed by referee id
	refSeq    map[string]int64           // insertion order, for the leaderboard tie-break
	nextSeq   int64
	orders    map[int64]models.Order
	nextOrder int64
}

func newData() *data {
	return &data{
		users:     make(map[string]models.User),
		referrals: make(map[string]models.Referral),
		refSeq:    make(map[string]int64),
		orders:    make(map[int64]models.Order),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.referrals {
		c.referrals[k] = v
	}
	for k, v := range d.refSeq {
		c.refSeq[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	c.nextSeq = d.nextSeq
	c.nextOrder = d.nextOrder
	return c
}

// Store is the in-memory store. A single mutex serializes all mutations,
// which doubles as the transaction boundary.
type Store struct {
	mu sync.Mutex
	d  *data
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{d: newData()}
}

func (s *Store) Identities() store.Identities { return &identities{s: s} }
func (s *Store) Referrals() store.Referrals   { return &referrals{s: s} }
func (s *Store) Orders() store.Orders         { return &orders{s: s} }

// InTx runs fn under the store mutex against the live data; on error the
// pre-transaction snapshot is restored, so partial writes never survive.
func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.d.clone()
	if err := fn(&txStore{s: s}); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// txStore is the transaction-bound view: same data, no re-locking.
type txStore struct {
	s *Store
}

func (t *txStore) Identities() store.Identities { return &identities{s: t.s, inTx: true} }
func (t *txStore) Referrals() store.Referrals   { return &referrals{s: t.s, inTx: true} }
func (t *txStore) Orders() store.Orders         { return &orders{s: t.s, inTx: true} }

func (t *txStore) InTx(ctx context.Context, fn func(store.Store) error) error {
	return fn(t)
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type identities struct {
	s    *Store
	inTx bool
}

func (r *identities) Upsert(ctx context.Context, id, displayName string, invitedBy *string) error {
	defer r.s.lock(r.inTx)()
	u, ok := r.s.d.users[id]
	if !ok {
		u = models.User{ID: id, RegisteredAt: time.Now()}
	}
	u.DisplayName = displayName
	u.InvitedBy = invitedBy
	r.s.d.users[id] = u
	return nil
}

func (r *identities) SetJoinedChannel(ctx context.Context, id string, joined bool) error {
	defer r.s.lock(r.inTx)()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil
	}
	u.JoinedChannel = joined
	r.s.d.users[id] = u
	return nil
}

func (r *identities) Get(ctx context.Context, id string) (*models.User, error) {
	defer r.s.lock(r.inTx)()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

type referrals struct {
	s    *Store
	inTx bool
}

func (r *referrals) Register(ctx context.Context, inviterID, refereeID string) (models.RegisterOutcome, error) {
	if inviterID == refereeID {
		return models.RegisterSelfReferral, nil
	}
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.d.referrals[refereeID]; ok {
		return models.RegisterAlreadyExists, nil
	}
	r.s.d.nextSeq++
	r.s.d.referrals[refereeID] = models.Referral{
		InviterID: inviterID,
		RefereeID: refereeID,
		CreatedAt: time.Now(),
	}
	r.s.d.refSeq[refereeID] = r.s.d.nextSeq
	return models.RegisterCreated, nil
}

func (r *referrals) ActivatePending(ctx context.Context, refereeID string) (bool, error) {
	defer r.s.lock(r.inTx)()
	ref, ok := r.s.d.referrals[refereeID]
	if !ok || ref.Activated {
		return false, nil
	}
	ref.Activated = true
	r.s.d.referrals[refereeID] = ref
	return true, nil
}

func (r *referrals) Get(ctx context.Context, refereeID string) (*models.Referral, error) {
	defer r.s.lock(r.inTx)()
	ref, ok := r.s.d.referrals[refereeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ref, nil
}

func (r *referrals) CountActivated(ctx context.Context, inviterID string) (int, error) {
	defer r.s.lock(r.inTx)()
	n := 0
	for _, ref := range r.s.d.referrals {
		if ref.InviterID == inviterID && ref.Activated {
			n++
		}
	}
	return n, nil
}

func (r *referrals) TopInviters(ctx context.Context, limit int) ([]models.InviterStanding, error) {
	defer r.s.lock(r.inTx)()
	type agg struct {
		count  int
		minSeq int64
	}
	byInviter := make(map[string]*agg)
	for referee, ref := range r.s.d.referrals {
		if !ref.Activated {
			continue
		}
		a, ok := byInviter[ref.InviterID]
		if !ok {
			a = &agg{minSeq: r.s.d.refSeq[referee]}
			byInviter[ref.InviterID] = a
		}
		a.count++
		if seq := r.s.d.refSeq[referee]; seq < a.minSeq {
			a.minSeq = seq
		}
	}
	var list []models.InviterStanding
	for id, a := range byInviter {
		list = append(list, models.InviterStanding{InviterID: id, Activated: a.count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Activated != list[j].Activated {
			return list[i].Activated > list[j].Activated
		}
		return byInviter[list[i].InviterID].minSeq < byInviter[list[j].InviterID].minSeq
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

type orders struct {
	s    *Store
	inTx bool
}

func (r *orders) Create(ctx context.Context, userID string, payload models.OrderPayload) (*models.Order, error) {
	defer r.s.lock(r.inTx)()
	r.s.d.nextOrder++
	o := models.Order{
		ID:        r.s.d.nextOrder,
		UserID:    userID,
		Payload:   payload,
		Status:    models.OrderNew,
		CreatedAt: time.Now(),
	}
	r.s.d.orders[o.ID] = o
	return &o, nil
}

func (r *orders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (models.OrderStatus, error) {
	defer r.s.lock(r.inTx)()
	o, ok := r.s.d.orders[id]
	if !ok {
		return "", store.ErrNotFound
	}
	if o.Status.Terminal() {
		return o.Status, nil
	}
	o.Status = status
	r.s.d.orders[id] = o
	return o.Status, nil
}

func (r *orders) Get(ctx context.Context, id int64) (*models.Order, error) {
	defer r.s.lock(r.inTx)()
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}
