// Package memory implementa los repositorios en memoria con transacciones copy-on-begin.
// Lo usan los tests de casos de uso y handlers; el comportamiento de bloqueo imita SELECT ... FOR UPDATE
// serializando transacciones completas.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
	"github.com/jhoicas/inventario-pos/internal/domain/repository"
)

type state struct {
	seq       int64
	users     map[int64]entity.User
	products  map[int64]entity.Product
	sales     map[int64]entity.Sale // Items incluidos
	movements []entity.Movement
	tickets   map[int64]entity.SupportTicket
}

func newState() *state {
	return &state{
		users:    make(map[int64]entity.User),
		products: make(map[int64]entity.Product),
		sales:    make(map[int64]entity.Sale),
		tickets:  make(map[int64]entity.SupportTicket),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sales {
		v.Items = append([]entity.SaleItem(nil), v.Items...)
		c.sales[k] = v
	}
	c.movements = append([]entity.Movement(nil), s.movements...)
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	return c
}

// Store base de datos en memoria. Es seguro para uso concurrente.
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), failures: make(map[string]error)}
}

// FailOn hace que la operación indicada (ej. "movements.Create") falle con err hasta que se limpie con FailOn(op, nil).
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al estado solo si fn no devuelve error.
// Las transacciones se serializan.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	h := handle{store: s, tx: work}
	if err := fn(&ProductRepo{h}, &SaleRepo{h}, &MovementRepo{h}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Products devuelve el repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{handle{store: s}} }

// Sales devuelve el repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{handle{store: s}} }

// Movements devuelve el repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{handle{store: s}} }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{handle{store: s}} }

// Tickets devuelve el repositorio de tickets.
func (s *Store) Tickets() *TicketRepo { return &TicketRepo{handle{store: s}} }

// Analytics devuelve el repositorio de analítica.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{handle{store: s}} }

// handle resuelve sobre qué estado opera un repo: la copia de la tx (lock ya tomado) o el estado vigente.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) do(op string, fn func(st *state) error) error {
	if h.tx != nil {
		if err := h.store.failures[op]; err != nil {
			return err
		}
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if err := h.store.failures[op]; err != nil {
		return err
	}
	return fn(h.store.st)
}

// ── Productos ─────────────────────────────────────────────────────────────────

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct{ h handle }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.h.do("products.Create", func(st *state) error {
		for _, other := range st.products {
			if !other.IsArchived() && other.UserID == p.UserID && other.Barcode == p.Barcode {
				return domain.ErrDuplicate
			}
		}
		if p.Stock < 0 {
			return domain.ErrInsufficientStock
		}
		p.ID = st.nextID()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		p.UpdatedAt = p.CreatedAt
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, userID, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.do("products.GetByID", func(st *state) error {
		if p, ok := st.products[id]; ok && p.UserID == userID && !p.IsArchived() {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByBarcode(_ context.Context, userID int64, barcode string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.do("products.GetByBarcode", func(st *state) error {
		for _, p := range st.products {
			if p.UserID == userID && p.Barcode == barcode && !p.IsArchived() {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, userID, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, userID, id)
}

func (r *ProductRepo) GetByBarcodeForUpdate(ctx context.Context, userID int64, barcode string) (*entity.Product, error) {
	return r.GetByBarcode(ctx, userID, barcode)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.h.do("products.Update", func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok || cur.UserID != p.UserID || cur.IsArchived() {
			return domain.ErrNotFound
		}
		for _, other := range st.products {
			if other.ID != p.ID && !other.IsArchived() && other.UserID == p.UserID && other.Barcode == p.Barcode {
				return domain.ErrDuplicate
			}
		}
		cur.Barcode, cur.Name = p.Barcode, p.Name
		cur.CostPrice, cur.SalePrice = p.CostPrice, p.SalePrice
		cur.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, id int64, stock int) error {
	return r.h.do("products.UpdateStock", func(st *state) error {
		cur, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if stock < 0 {
			return domain.ErrInsufficientStock
		}
		cur.Stock = stock
		cur.UpdatedAt = time.Now()
		st.products[id] = cur
		return nil
	})
}

func (r *ProductRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*entity.Product, error) {
	return r.list(func(p entity.Product) bool { return p.UserID == userID }, limit, offset)
}

func (r *ProductRepo) ListAll(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	return r.list(func(entity.Product) bool { return true }, limit, offset)
}

func (r *ProductRepo) list(keep func(entity.Product) bool, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.h.do("products.List", func(st *state) error {
		for _, p := range st.products {
			if !p.IsArchived() && keep(p) {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), err
}

func (r *ProductRepo) Delete(_ context.Context, userID, id int64) error {
	return r.h.do("products.Delete", func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.UserID != userID || p.IsArchived() {
			return domain.ErrNotFound
		}
		now := time.Now()
		p.ArchivedAt = &now
		p.UpdatedAt = now
		st.products[id] = p
		return nil
	})
}

// ── Ventas ────────────────────────────────────────────────────────────────────

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct{ h handle }

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.h.do("sales.Create", func(st *state) error {
		s.ID = st.nextID()
		if s.Date.IsZero() {
			s.Date = time.Now()
		}
		stored := *s
		stored.Items = nil
		st.sales[s.ID] = stored
		return nil
	})
}

func (r *SaleRepo) AddItem(_ context.Context, it *entity.SaleItem) error {
	return r.h.do("sales.AddItem", func(st *state) error {
		s, ok := st.sales[it.SaleID]
		if !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.products[it.ProductID]; !ok {
			return domain.ErrNotFound
		}
		it.ID = st.nextID()
		s.Items = append(s.Items, *it)
		st.sales[it.SaleID] = s
		return nil
	})
}

func (r *SaleRepo) UpdateTotal(_ context.Context, saleID int64, total decimal.Decimal) error {
	return r.h.do("sales.UpdateTotal", func(st *state) error {
		s, ok := st.sales[saleID]
		if !ok {
			return domain.ErrNotFound
		}
		s.TotalAmount = total
		st.sales[saleID] = s
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, userID, id int64) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.h.do("sales.GetByID", func(st *state) error {
		if s, ok := st.sales[id]; ok && s.UserID == userID {
			s.Items = append([]entity.SaleItem(nil), s.Items...)
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) ListByUser(_ context.Context, userID int64, from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.h.do("sales.ListByUser", func(st *state) error {
		for _, s := range st.sales {
			if s.UserID != userID || !inRange(s.Date, from, to) {
				continue
			}
			s.Items = append([]entity.SaleItem(nil), s.Items...)
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), err
}

func (r *SaleRepo) ExistsForProduct(_ context.Context, productID int64) (bool, error) {
	found := false
	err := r.h.do("sales.ExistsForProduct", func(st *state) error {
		for _, s := range st.sales {
			for _, it := range s.Items {
				if it.ProductID == productID {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

// All devuelve todas las ventas (aserciones en tests).
func (r *SaleRepo) All() []entity.Sale {
	var out []entity.Sale
	_ = r.h.do("sales.All", func(st *state) error {
		for _, s := range st.sales {
			out = append(out, s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ── Movimientos ───────────────────────────────────────────────────────────────

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo historial en memoria.
type MovementRepo struct{ h handle }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.h.do("movements.Create", func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.ErrNotFound
		}
		m.ID = st.nextID()
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.h.do("movements.List", func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.UserID != f.UserID || (f.ProductID > 0 && m.ProductID != f.ProductID) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ h handle }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.h.do("users.Create", func(st *state) error {
		for _, other := range st.users {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		u.ID = st.nextID()
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now()
		}
		u.UpdatedAt = u.CreatedAt
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.h.do("users.GetByID", func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.h.do("users.GetByEmail", func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.h.do("users.Update", func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := r.h.do("users.List", func(st *state) error {
		for _, u := range st.users {
			u := u
			out = append(out, &u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), err
}

// ── Tickets ───────────────────────────────────────────────────────────────────

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo tickets en memoria.
type TicketRepo struct{ h handle }

func (r *TicketRepo) Create(_ context.Context, t *entity.SupportTicket) error {
	return r.h.do("tickets.Create", func(st *state) error {
		t.ID = st.nextID()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		st.tickets[t.ID] = *t
		return nil
	})
}

func (r *TicketRepo) GetByID(_ context.Context, id int64) (*entity.SupportTicket, error) {
	var out *entity.SupportTicket
	err := r.h.do("tickets.GetByID", func(st *state) error {
		if t, ok := st.tickets[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *TicketRepo) ListByUser(_ context.Context, userID int64) ([]*entity.SupportTicket, error) {
	return r.list(func(t entity.SupportTicket) bool { return t.UserID == userID }, 0, 0)
}

func (r *TicketRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.SupportTicket, error) {
	return r.list(func(t entity.SupportTicket) bool { return status == "" || t.Status == status }, limit, offset)
}

func (r *TicketRepo) list(keep func(entity.SupportTicket) bool, limit, offset int) ([]*entity.SupportTicket, error) {
	var out []*entity.SupportTicket
	err := r.h.do("tickets.List", func(st *state) error {
		for _, t := range st.tickets {
			if keep(t) {
				t := t
				out = append(out, &t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), err
}

func (r *TicketRepo) Close(_ context.Context, id int64, closedAt time.Time) error {
	return r.h.do("tickets.Close", func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return domain.ErrNotFound
		}
		t.Status = entity.TicketClosed
		t.ClosedAt = &closedAt
		st.tickets[id] = t
		return nil
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

// page aplica limit/offset; limit <= 0 = sin límite.
func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	if offset > 0 {
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
