package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pdvcore/internal/dto"
	"pdvcore/internal/idgen"
	"pdvcore/internal/model"
	"pdvcore/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductService is the catalog entry point. Stock is never written here
// directly: every quantity change goes through the ledger so the kardex
// chain stays the single source of truth.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	// GetByCode serves the price-check path; results are cached in Redis
	// for a short TTL when a client is configured.
	GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*model.KardexEntry, error)
	StockAlerts(ctx context.Context) ([]dto.StockAlertResponse, error)
}

type productService struct {
	repo     repository.ProductRepository
	ledger   LedgerService
	ids      idgen.Generator
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewProductService(
	repo repository.ProductRepository,
	ledger LedgerService,
	ids idgen.Generator,
	rdb *redis.Client,
	cacheTTL time.Duration,
) ProductService {
	return &productService{repo: repo, ledger: ledger, ids: ids, rdb: rdb, cacheTTL: cacheTTL}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.IsNegative() || req.Cost.IsNegative() || req.MinStock.IsNegative() || req.InitialStock.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.FindByCode(ctx, req.Code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("code lookup", err)
	}

	unit := req.Unit
	if unit == "" {
		unit = "unit"
	}
	product := &model.Product{
		ID:       s.ids.New(),
		Code:     req.Code,
		Name:     req.Name,
		Price:    req.Price,
		Cost:     req.Cost,
		MinStock: req.MinStock,
		Unit:     unit,
		Active:   true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, persistence("create product", err)
	}

	// Seed the kardex so the chain starts consistent with the stored stock.
	if req.InitialStock.IsPositive() {
		entry, err := s.ledger.RecordMovement(ctx, MovementInput{
			ProductID:     product.ID,
			QuantityDelta: req.InitialStock,
			Type:          model.MovementEntry,
			DocumentRef:   "initial:" + product.ID.String(),
			Description:   "initial stock",
		})
		if err != nil {
			return nil, err
		}
		product.Stock = entry.BalanceAfter
	}

	return productToResponse(product), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("product lookup", err)
	}
	return productToResponse(product), nil
}

func (s *productService) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	cacheKey := "product:code:" + code
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, persistence("product lookup", err)
	}

	resp := productToResponse(product)
	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("code", code).Msg("product cache write failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, persistence("product list", err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*model.KardexEntry, error) {
	if req.QuantityDelta.IsZero() {
		return nil, ErrInvalidAmount
	}
	entry, err := s.ledger.RecordMovement(ctx, MovementInput{
		ProductID:     id,
		QuantityDelta: req.QuantityDelta,
		Type:          req.Type,
		DocumentRef:   req.DocumentRef,
		Description:   req.Description,
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, id)
	return entry, nil
}

func (s *productService) StockAlerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	products, err := s.repo.ListBelowMinStock(ctx)
	if err != nil {
		return nil, persistence("stock alerts", err)
	}
	alerts := make([]dto.StockAlertResponse, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, dto.StockAlertResponse{
			ProductID: p.ID.String(),
			Code:      p.Code,
			Name:      p.Name,
			Stock:     p.Stock,
			MinStock:  p.MinStock,
		})
	}
	return alerts, nil
}

func (s *productService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return
	}
	if err := s.rdb.Del(ctx, "product:code:"+product.Code).Err(); err != nil {
		log.Debug().Err(err).Str("code", product.Code).Msg("product cache invalidation failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:       p.ID.String(),
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		Cost:     p.Cost,
		Stock:    p.Stock,
		MinStock: p.MinStock,
		Unit:     p.Unit,
		Active:   p.Active,
	}
}
