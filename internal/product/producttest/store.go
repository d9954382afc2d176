// Package producttest provides an in-memory product store for tests.
package producttest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tair/product-catalog/internal/product/domain"
)

// Store is an in-memory domain.UnitOfWork. Each transaction works on a copy
// of the data that replaces the committed state only when fn succeeds.
type Store struct {
	mu       sync.Mutex
	products map[uint]domain.Product
	nextID   uint
	now      func() time.Time

	// Err, when set, is returned by every repository call named in FailOps
	Err     error
	FailOps map[string]bool

	commits int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		products: map[uint]domain.Product{},
		nextID:   1,
		now:      time.Now,
	}
}

// FailOn makes the named repository operations return err
func (s *Store) FailOn(err error, ops ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
	s.FailOps = map[string]bool{}
	for _, op := range ops {
		s.FailOps[op] = true
	}
}

// Within implements domain.UnitOfWork
func (s *Store) Within(ctx context.Context, fn domain.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.begin(false)
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.products = tx.products
	s.nextID = tx.nextID
	s.commits++
	return nil
}

// WithinReadOnly implements domain.UnitOfWork
func (s *Store) WithinReadOnly(ctx context.Context, fn domain.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(ctx, s.begin(true))
}

// Products returns a copy of the committed rows ordered by id
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.products)
}

// Commits returns the number of committed read-write transactions
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Seed inserts products directly, assigning ids and timestamps
func (s *Store) Seed(products ...domain.Product) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		p.ID = s.nextID
		s.nextID++
		if p.Status == "" {
			p.Status = domain.StatusActive
		}
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
		s.products[p.ID] = clone(p)
		out = append(out, p)
	}
	return out
}

func (s *Store) begin(readOnly bool) *txRepo {
	products := make(map[uint]domain.Product, len(s.products))
	for id, p := range s.products {
		products[id] = clone(p)
	}
	return &txRepo{store: s, products: products, nextID: s.nextID, readOnly: readOnly}
}

var errReadOnly = errors.New("write in read-only transaction")

type txRepo struct {
	store    *Store
	products map[uint]domain.Product
	nextID   uint
	readOnly bool
}

func (r *txRepo) fail(op string) error {
	if r.store.Err != nil && r.store.FailOps[op] {
		return r.store.Err
	}
	return nil
}

func (r *txRepo) FindByID(_ context.Context, id uint) (*domain.Product, error) {
	if err := r.fail("FindByID"); err != nil {
		return nil, err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError(id)
	}
	c := clone(p)
	return &c, nil
}

// FindByIDForUpdate needs no lock: Within already serialises transactions
func (r *txRepo) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	if r.readOnly {
		return nil, errReadOnly
	}
	if err := r.fail("FindByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *txRepo) FindBySKU(_ context.Context, sku string) (*domain.Product, error) {
	if err := r.fail("FindBySKU"); err != nil {
		return nil, err
	}
	for _, p := range r.products {
		if p.SKU == sku {
			c := clone(p)
			return &c, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *txRepo) FindAll(_ context.Context, filter domain.ListFilter) ([]domain.Product, error) {
	if err := r.fail("FindAll"); err != nil {
		return nil, err
	}

	all := sortedCopy(r.products)
	out := []domain.Product{}
	for _, p := range all {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.Product{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *txRepo) Create(_ context.Context, product *domain.Product) error {
	if r.readOnly {
		return errReadOnly
	}
	if err := r.fail("Create"); err != nil {
		return err
	}
	for _, p := range r.products {
		if p.SKU == product.SKU {
			return domain.NewDuplicateSKUError(product.SKU)
		}
	}

	product.ID = r.nextID
	r.nextID++
	product.CreatedAt = r.store.now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = clone(*product)
	return nil
}

func (r *txRepo) Update(_ context.Context, product *domain.Product) error {
	if r.readOnly {
		return errReadOnly
	}
	if err := r.fail("Update"); err != nil {
		return err
	}
	existing, ok := r.products[product.ID]
	if !ok {
		return domain.NewNotFoundError(product.ID)
	}

	product.SKU = existing.SKU
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = r.store.now()
	r.products[product.ID] = clone(*product)
	return nil
}

func (r *txRepo) Delete(_ context.Context, id uint) error {
	if r.readOnly {
		return errReadOnly
	}
	if err := r.fail("Delete"); err != nil {
		return err
	}
	if _, ok := r.products[id]; !ok {
		return domain.NewNotFoundError(id)
	}
	delete(r.products, id)
	return nil
}

func (r *txRepo) CountByStatus(_ context.Context) (map[domain.Status]int64, error) {
	if err := r.fail("CountByStatus"); err != nil {
		return nil, err
	}
	counts := map[domain.Status]int64{}
	for _, p := range r.products {
		counts[p.Status]++
	}
	return counts, nil
}

func sortedCopy(products map[uint]domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clone(p domain.Product) domain.Product {
	if p.Description != nil {
		v := *p.Description
		p.Description = &v
	}
	if p.DiscontinuedAt != nil {
		v := *p.DiscontinuedAt
		p.DiscontinuedAt = &v
	}
	if p.DiscontinuedNote != nil {
		v := *p.DiscontinuedNote
		p.DiscontinuedNote = &v
	}
	return p
}
