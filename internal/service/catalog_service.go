package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// lookupTTL keeps cached lookups short-lived: stock moves with every sale
// and the cache is not invalidated by checkout.
const lookupTTL = 60 * time.Second

const lookupKeyPrefix = "lookup:"

type CatalogService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// Lookup resolves a scanned code for the POS screen: barcode first,
	// then UUID. Inactive products are not found; out-of-stock products
	// are rejected so they never enter a cart.
	Lookup(ctx context.Context, code string) (*dto.LookupResponse, error)
	// Search is the typeahead behind the POS search box. Terms shorter
	// than two characters return an empty list without querying.
	Search(ctx context.Context, term string) ([]dto.LookupResponse, error)
	LowStock(ctx context.Context) ([]dto.ProductResponse, error)
	// SetImage stores the image path previously written by infra.ImageStore.
	SetImage(ctx context.Context, id uuid.UUID, relPath string) (*dto.ProductResponse, error)
}

type catalogService struct {
	repo  repository.ProductRepository
	cache *redis.Client
}

// NewCatalogService builds the catalog. cache may be nil; lookups then go
// straight to the database.
func NewCatalogService(repo repository.ProductRepository, cache *redis.Client) CatalogService {
	return &catalogService{repo: repo, cache: cache}
}

func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if existing, err := s.repo.FindAnyByBarcode(ctx, req.Barcode); err == nil && existing != nil {
		return nil, apperr.Conflict("barcode already registered: %s", req.Barcode)
	}

	p := &model.Product{
		Barcode:     strings.TrimSpace(req.Barcode),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		SalePrice:   req.SalePrice,
		CostPrice:   req.CostPrice,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("product not found")
	}
	return productToResponse(p), nil
}

func (s *catalogService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data = append(resp.Data, *productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("product not found")
	}

	newBarcode := strings.TrimSpace(req.Barcode)
	if newBarcode != p.Barcode {
		if other, err := s.repo.FindAnyByBarcode(ctx, newBarcode); err == nil && other != nil && other.ID != p.ID {
			return nil, apperr.Conflict("barcode already registered: %s", newBarcode)
		}
	}
	oldBarcode := p.Barcode

	p.Barcode = newBarcode
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Category = req.Category
	p.SalePrice = req.SalePrice
	p.CostPrice = req.CostPrice
	p.Stock = req.Stock
	p.MinStock = req.MinStock

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldBarcode, p.Barcode, p.ID.String())
	return productToResponse(p), nil
}

func (s *catalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		return apperr.NotFound("product not found")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, p.Barcode, p.ID.String())
	return nil
}

func (s *catalogService) Reactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		return apperr.NotFound("product not found")
	}
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, p.Barcode, p.ID.String())
	return nil
}

func (s *catalogService) Lookup(ctx context.Context, code string) (*dto.LookupResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("empty product code")
	}

	if cached := s.cacheGet(ctx, code); cached != nil {
		if cached.Stock <= 0 {
			return nil, apperr.Validation("product out of stock: %s", cached.Name)
		}
		return cached, nil
	}

	p, err := s.repo.FindByBarcode(ctx, code)
	if err != nil {
		// Not a known barcode; the POS also sends raw product IDs when the
		// item was picked from search results.
		id, parseErr := uuid.Parse(code)
		if parseErr != nil {
			return nil, apperr.NotFound("product not found: %s", code)
		}
		p, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, apperr.NotFound("product not found: %s", code)
		}
	}

	resp := lookupFromProduct(p)
	s.cacheSet(ctx, code, resp)
	if p.Stock <= 0 {
		return nil, apperr.Validation("product out of stock: %s", p.Name)
	}
	return resp, nil
}

func (s *catalogService) Search(ctx context.Context, term string) ([]dto.LookupResponse, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return []dto.LookupResponse{}, nil
	}
	products, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LookupResponse, 0, len(products))
	for i := range products {
		out = append(out, *lookupFromProduct(&products[i]))
	}
	return out, nil
}

func (s *catalogService) LowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *catalogService) SetImage(ctx context.Context, id uuid.UUID, relPath string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindAnyByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("product not found")
	}
	if err := s.repo.SetImagePath(ctx, id, relPath); err != nil {
		return nil, err
	}
	p.ImagePath = &relPath
	s.invalidate(ctx, p.Barcode, p.ID.String())
	return productToResponse(p), nil
}

// cacheGet / cacheSet / invalidate wrap the optional redis client. Cache
// failures are logged and otherwise ignored; the database stays the source
// of truth.
func (s *catalogService) cacheGet(ctx context.Context, code string) *dto.LookupResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, lookupKeyPrefix+code).Result()
	if err != nil {
		return nil
	}
	var resp dto.LookupResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *catalogService) cacheSet(ctx context.Context, code string, resp *dto.LookupResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, lookupKeyPrefix+code, raw, lookupTTL).Err(); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("lookup cache write failed")
	}
}

func (s *catalogService) invalidate(ctx context.Context, codes ...string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(codes))
	for _, c := range codes {
		if c != "" {
			keys = append(keys, lookupKeyPrefix+c)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("lookup cache invalidation failed")
	}
}

func lookupFromProduct(p *model.Product) *dto.LookupResponse {
	return &dto.LookupResponse{
		ID:        p.ID.String(),
		Barcode:   p.Barcode,
		Name:      p.Name,
		SalePrice: p.SalePrice,
		Stock:     p.Stock,
		ImagePath: p.ImagePath,
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		SalePrice:   p.SalePrice,
		CostPrice:   p.CostPrice,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		ImagePath:   p.ImagePath,
		Active:      p.Active,
		LowStock:    p.LowOnStock(),
	}
}
