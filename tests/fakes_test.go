package tests

// Shared in-memory repository fakes. They implement the repository
// interfaces so services can be unit-tested without postgres; the
// transactional methods accept the nil tx that services pass in fake mode.

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── UserRepository fake ───────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		if !includeInactive && !u.Active {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) ListOperators(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Active && (u.Role == model.RoleAdmin || u.Role == model.RoleCashier) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *fakeUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = true
	}
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// ── ProductRepository fake ────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || !p.Active {
		return nil, errNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeProductRepo) FindAnyByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindAnyByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeProductRepo) Search(_ context.Context, term string) ([]model.Product, error) {
	lower := strings.ToLower(term)
	var out []model.Product
	for _, p := range r.products {
		if !p.Active {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.Barcode), lower) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > 20 {
		out = out[:20]
	}
	return out, nil
}

func (r *fakeProductRepo) LowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		switch filter.Active {
		case "false":
			if p.Active {
				continue
			}
		case "all":
		default:
			if !p.Active {
				continue
			}
		}
		if filter.Barcode != "" && p.Barcode != filter.Barcode {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) CountActive(_ context.Context) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.Active {
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) CountLowStock(_ context.Context) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) SetImagePath(_ context.Context, id uuid.UUID, path string) error {
	if p, ok := r.products[id]; ok {
		p.ImagePath = &path
	}
	return nil
}

func (r *fakeProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *fakeProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *fakeProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	p, ok := r.products[id]
	if !ok || !p.Active || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *fakeProductRepo) RestoreStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	if p, ok := r.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (r *fakeProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// ── SaleRepository fake ───────────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales []*model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo { return &fakeSaleRepo{} }

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	r.sales = append(r.sales, s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeSaleRepo) NumberExists(_ context.Context, number string) (bool, error) {
	for _, s := range r.sales {
		if s.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	for _, s := range r.sales {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return errNotFound
}

func (r *fakeSaleRepo) WindowTotals(_ context.Context, userID uuid.UUID, from, to time.Time, methods []string) (int64, decimal.Decimal, error) {
	var count int64
	total := decimal.Zero
	for _, s := range r.sales {
		if s.UserID != userID || s.Status != model.SaleFinalized {
			continue
		}
		if s.SoldAt.Before(from) || s.SoldAt.After(to) {
			continue
		}
		if len(methods) > 0 && !contains(methods, s.PaymentMethod) {
			continue
		}
		count++
		total = total.Add(s.Total)
	}
	return count, total, nil
}

func (r *fakeSaleRepo) inWindow(s *model.Sale, q dto.ReportQuery) bool {
	if s.Status != model.SaleFinalized {
		return false
	}
	if s.SoldAt.Before(q.Start) || s.SoldAt.After(q.End) {
		return false
	}
	if q.UserID != nil && s.UserID != *q.UserID {
		return false
	}
	if q.PaymentMethod != "" && s.PaymentMethod != q.PaymentMethod {
		return false
	}
	return true
}

func (r *fakeSaleRepo) Summary(_ context.Context, q dto.ReportQuery) (int64, decimal.Decimal, error) {
	var count int64
	total := decimal.Zero
	for _, s := range r.sales {
		if r.inWindow(s, q) {
			count++
			total = total.Add(s.Total)
		}
	}
	return count, total, nil
}

func (r *fakeSaleRepo) SummaryByMethod(_ context.Context, q dto.ReportQuery) ([]dto.MethodTotal, error) {
	byMethod := make(map[string]*dto.MethodTotal)
	for _, s := range r.sales {
		if !r.inWindow(s, q) {
			continue
		}
		mt, ok := byMethod[s.PaymentMethod]
		if !ok {
			mt = &dto.MethodTotal{Method: s.PaymentMethod, Total: decimal.Zero}
			byMethod[s.PaymentMethod] = mt
		}
		mt.Count++
		mt.Total = mt.Total.Add(s.Total)
	}
	out := make([]dto.MethodTotal, 0, len(byMethod))
	for _, mt := range byMethod {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}

func (r *fakeSaleRepo) TopProducts(_ context.Context, q dto.ReportQuery, limit int) ([]dto.TopProductRow, error) {
	type agg struct {
		row   dto.TopProductRow
		first int
	}
	byProduct := make(map[string]*agg)
	seq := 0
	for _, s := range r.sales {
		if !r.inWindow(s, q) {
			continue
		}
		for _, item := range s.Items {
			key := item.ProductID.String()
			a, ok := byProduct[key]
			if !ok {
				a = &agg{first: seq, row: dto.TopProductRow{ProductID: key, Revenue: decimal.Zero}}
				if item.Product != nil {
					a.row.Name = item.Product.Name
					a.row.Barcode = item.Product.Barcode
				}
				byProduct[key] = a
				seq++
			}
			a.row.Quantity += int64(item.Quantity)
			a.row.Revenue = a.row.Revenue.Add(item.Subtotal)
		}
	}
	all := make([]*agg, 0, len(byProduct))
	for _, a := range byProduct {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].row.Quantity != all[j].row.Quantity {
			return all[i].row.Quantity > all[j].row.Quantity
		}
		return all[i].first < all[j].first
	})
	out := make([]dto.TopProductRow, 0, len(all))
	for _, a := range all {
		out = append(out, a.row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) ItemRows(_ context.Context, q dto.ReportQuery) ([]dto.SaleItemRow, error) {
	var out []dto.SaleItemRow
	for _, s := range r.sales {
		if !r.inWindow(s, q) {
			continue
		}
		for _, item := range s.Items {
			row := dto.SaleItemRow{
				SaleID:        s.ID.String(),
				SaleNumber:    s.Number,
				SoldAt:        s.SoldAt,
				PaymentMethod: s.PaymentMethod,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				Subtotal:      item.Subtotal,
			}
			if s.User != nil {
				row.Operator = s.User.Name
			}
			if item.Product != nil {
				row.Product = item.Product.Name
				row.Barcode = item.Product.Barcode
			}
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	return out, nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── TillRepository fake ───────────────────────────────────────────────────────

type fakeTillRepo struct {
	sessions map[uuid.UUID]*model.TillSession
}

func newFakeTillRepo() *fakeTillRepo {
	return &fakeTillRepo{sessions: make(map[uuid.UUID]*model.TillSession)}
}

func (r *fakeTillRepo) Create(_ context.Context, s *model.TillSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeTillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TillSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *fakeTillRepo) FindOpenByUser(_ context.Context, userID uuid.UUID) (*model.TillSession, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == model.TillOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeTillRepo) LatestByUser(_ context.Context, userID uuid.UUID) (*model.TillSession, error) {
	var latest *model.TillSession
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.OpenedAt.After(latest.OpenedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (r *fakeTillRepo) ListOpenBefore(_ context.Context, t time.Time) ([]model.TillSession, error) {
	var out []model.TillSession
	for _, s := range r.sessions {
		if s.Status == model.TillOpen && s.OpenedAt.Before(t) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeTillRepo) Update(_ context.Context, s *model.TillSession) error {
	r.sessions[s.ID] = s
	return nil
}

var _ repository.TillRepository = (*fakeTillRepo)(nil)

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
