// Package memory is an in-process Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"trendhive/internal/model"
	"trendhive/internal/store"
)

type data struct {
	products     map[string]model.Product
	productOrder []string
	carts        map[string]model.Cart // by user id
	wishlists    map[string]model.Wishlist
	orders       map[string]model.Order
	orderOrder   []string
	reviews      []model.Review
	users        map[string]model.User
}

func newData() *data {
	return &data{
		products:  map[string]model.Product{},
		carts:     map[string]model.Cart{},
		wishlists: map[string]model.Wishlist{},
		orders:    map[string]model.Order{},
		users:     map[string]model.User{},
	}
}

func (d *data) clone() *data {
	out := newData()
	for k, v := range d.products {
		out.products[k] = v.Clone()
	}
	out.productOrder = append([]string(nil), d.productOrder...)
	for k, v := range d.carts {
		out.carts[k] = v.Clone()
	}
	for k, v := range d.wishlists {
		out.wishlists[k] = v.Clone()
	}
	for k, v := range d.orders {
		out.orders[k] = v.Clone()
	}
	out.orderOrder = append([]string(nil), d.orderOrder...)
	out.reviews = append([]model.Review(nil), d.reviews...)
	for k, v := range d.users {
		out.users[k] = v
	}
	return out
}

// Store keeps every collection in maps guarded by one lock
type Store struct {
	mu   *sync.RWMutex
	d    *data
	inTx bool
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store
func New() *Store {
	return &Store{mu: &sync.RWMutex{}, d: newData()}
}

// Inside Tx the lock is already held by the caller
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) Products() store.ProductRepository   { return productRepo{s} }
func (s *Store) Carts() store.CartRepository         { return cartRepo{s} }
func (s *Store) Wishlists() store.WishlistRepository { return wishlistRepo{s} }
func (s *Store) Orders() store.OrderRepository       { return orderRepo{s} }
func (s *Store) Reviews() store.ReviewRepository     { return reviewRepo{s} }
func (s *Store) Users() store.UserRepository         { return userRepo{s} }

// Tx holds the write lock for the duration of fn and restores a snapshot
// when fn fails
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, s store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(ctx, &Store{mu: s.mu, d: s.d, inTx: true}); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

type productRepo struct{ s *Store }

func (r productRepo) List(ctx context.Context, filter store.ProductFilter) ([]model.Product, error) {
	defer r.s.rlock()()
	out := []model.Product{}
	for _, id := range r.s.d.productOrder {
		p := r.s.d.products[id]
		if filter.Match(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r productRepo) Get(ctx context.Context, id string) (*model.Product, error) {
	defer r.s.rlock()()
	p, ok := r.s.d.products[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (r productRepo) Create(ctx context.Context, p *model.Product) error {
	defer r.s.lock()()
	if p.ID == "" {
		p.ID = store.NewID()
	}
	r.s.d.products[p.ID] = p.Clone()
	r.s.d.productOrder = append(r.s.d.productOrder, p.ID)
	return nil
}

func (r productRepo) Update(ctx context.Context, p *model.Product) error {
	defer r.s.lock()()
	if _, ok := r.s.d.products[p.ID]; !ok {
		return model.ErrNotFound
	}
	r.s.d.products[p.ID] = p.Clone()
	return nil
}

func (r productRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.d.products[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.s.d.products, id)
	for idx, pid := range r.s.d.productOrder {
		if pid == id {
			r.s.d.productOrder = append(r.s.d.productOrder[:idx:idx], r.s.d.productOrder[idx+1:]...)
			break
		}
	}
	return nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	defer r.s.rlock()()
	return int64(len(r.s.d.products)), nil
}

type cartRepo struct{ s *Store }

func (r cartRepo) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	defer r.s.rlock()()
	c, ok := r.s.d.carts[userID]
	if !ok {
		return nil, nil
	}
	out := c.Clone()
	return &out, nil
}

func (r cartRepo) Save(ctx context.Context, c *model.Cart) error {
	defer r.s.lock()()
	if c.ID == "" {
		c.ID = store.NewID()
	}
	r.s.d.carts[c.UserID] = c.Clone()
	return nil
}

func (r cartRepo) DeleteByUser(ctx context.Context, userID string) error {
	defer r.s.lock()()
	delete(r.s.d.carts, userID)
	return nil
}

type wishlistRepo struct{ s *Store }

func (r wishlistRepo) GetByUser(ctx context.Context, userID string) (*model.Wishlist, error) {
	defer r.s.rlock()()
	w, ok := r.s.d.wishlists[userID]
	if !ok {
		return nil, nil
	}
	out := w.Clone()
	return &out, nil
}

func (r wishlistRepo) Save(ctx context.Context, w *model.Wishlist) error {
	defer r.s.lock()()
	if w.ID == "" {
		w.ID = store.NewID()
	}
	r.s.d.wishlists[w.UserID] = w.Clone()
	return nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(ctx context.Context, o *model.Order) error {
	defer r.s.lock()()
	if o.ID == "" {
		o.ID = store.NewID()
	}
	r.s.d.orders[o.ID] = o.Clone()
	r.s.d.orderOrder = append(r.s.d.orderOrder, o.ID)
	return nil
}

func (r orderRepo) Get(ctx context.Context, id string) (*model.Order, error) {
	defer r.s.rlock()()
	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := o.Clone()
	return &out, nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	defer r.s.rlock()()
	out := []model.Order{}
	// newest inserted first, then a stable sort keeps that order for equal timestamps
	for idx := len(r.s.d.orderOrder) - 1; idx >= 0; idx-- {
		o := r.s.d.orders[r.s.d.orderOrder[idx]]
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	defer r.s.lock()()
	o, ok := r.s.d.orders[id]
	if !ok {
		return model.ErrNotFound
	}
	o.Status = status
	r.s.d.orders[id] = o
	return nil
}

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	defer r.s.lock()()
	if rv.ID == "" {
		rv.ID = store.NewID()
	}
	r.s.d.reviews = append(r.s.d.reviews, *rv)
	return nil
}

func (r reviewRepo) ListByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	defer r.s.rlock()()
	out := []model.Review{}
	for idx := len(r.s.d.reviews) - 1; idx >= 0; idx-- {
		if rv := r.s.d.reviews[idx]; rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	defer r.s.lock()()
	email := store.NormalizeEmail(u.Email)
	for _, existing := range r.s.d.users {
		if existing.Email == email {
			return model.ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = store.NewID()
	}
	u.Email = email
	r.s.d.users[u.ID] = *u
	return nil
}

func (r userRepo) Get(ctx context.Context, id string) (*model.User, error) {
	defer r.s.rlock()()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer r.s.rlock()()
	email = store.NormalizeEmail(email)
	for _, u := range r.s.d.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}
