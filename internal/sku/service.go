package sku

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Service applies validation and caching around a Repository.
type Service struct {
	repo     Repository
	cache    *Cache
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService constructs a Service. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, validate: newValidator(), logger: logger}
}

// Create validates and stores a new record.
func (s *Service) Create(ctx context.Context, req CreateRequest) (SKU, error) {
	req.normalize()
	if err := validateStruct(s.validate, req); err != nil {
		return SKU{}, fmt.Errorf("create sku: %w", err)
	}
	created, err := s.repo.Create(ctx, req.toSKU())
	if err != nil {
		return SKU{}, fmt.Errorf("create sku %s: %w", req.NDC, err)
	}
	s.invalidate(ctx)
	s.logger.Info("sku created", slog.Int64("id", created.ID), slog.String("ndc", created.NDC))
	return created, nil
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, id int64) (SKU, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return SKU{}, fmt.Errorf("get sku %d: %w", id, err)
	}
	return rec, nil
}

// Search returns one page of matching records.
func (s *Service) Search(ctx context.Context, req SearchRequest) (Page, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return Page{}, fmt.Errorf("search skus: %w", err)
	}
	f := req.toFilter()
	key, err := s.cache.BuildKey(ctx, "search", f.NDC, f.Name, f.Manufacturer, string(f.Status),
		strconv.Itoa(f.Page), strconv.Itoa(f.PageSize))
	if err != nil {
		return s.search(ctx, f)
	}
	var page Page
	err = s.cache.FetchJSON(ctx, key, &page, func(ctx context.Context) (any, error) {
		return s.search(ctx, f)
	})
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

func (s *Service) search(ctx context.Context, f Filter) (Page, error) {
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("search skus: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// All returns every record matching the search fields, ignoring paging.
func (s *Service) All(ctx context.Context, req SearchRequest) ([]SKU, error) {
	req.Page, req.PageSize = 0, DefaultPageSize
	if err := validateStruct(s.validate, req); err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	f := req.toFilter()
	f.PageSize = 0
	items, _, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	return items, nil
}

// Replace overwrites a record with a full set of fields.
func (s *Service) Replace(ctx context.Context, id int64, req CreateRequest) (SKU, error) {
	req.normalize()
	if err := validateStruct(s.validate, req); err != nil {
		return SKU{}, fmt.Errorf("replace sku %d: %w", id, err)
	}
	updated, err := s.repo.Replace(ctx, id, req.toSKU())
	if err != nil {
		return SKU{}, fmt.Errorf("replace sku %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logger.Info("sku replaced", slog.Int64("id", id))
	return updated, nil
}

// Patch changes only the fields present in req.
func (s *Service) Patch(ctx context.Context, id int64, req PatchRequest) (SKU, error) {
	req.normalize()
	if err := validateStruct(s.validate, req); err != nil {
		return SKU{}, fmt.Errorf("patch sku %d: %w", id, err)
	}
	updated, err := s.repo.Patch(ctx, id, req.toPatch())
	if err != nil {
		return SKU{}, fmt.Errorf("patch sku %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logger.Info("sku patched", slog.Int64("id", id), slog.String("status", string(updated.Status)))
	return updated, nil
}

// Delete removes a record permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sku %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.logger.Info("sku deleted", slog.Int64("id", id))
	return nil
}

// Duplicates reports groups of records that share a name.
func (s *Service) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	key, err := s.cache.BuildKey(ctx, "duplicates")
	if err != nil {
		return s.duplicates(ctx)
	}
	var groups []DuplicateGroup
	err = s.cache.FetchJSON(ctx, key, &groups, func(ctx context.Context) (any, error) {
		return s.duplicates(ctx)
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Service) duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	groups, err := s.repo.Duplicates(ctx)
	if err != nil {
		return nil, fmt.Errorf("find duplicate skus: %w", err)
	}
	return groups, nil
}

// RepairStatuses rewrites every status outside the enumerated set and
// returns how many records changed.
func (s *Service) RepairStatuses(ctx context.Context) (int, error) {
	broken, err := s.repo.InvalidStatuses(ctx)
	if err != nil {
		return 0, fmt.Errorf("repair statuses: %w", err)
	}
	fixed := 0
	for _, rec := range broken {
		next := rec.Status.Repaired()
		if err := s.repo.SetStatus(ctx, rec.ID, next); err != nil {
			return fixed, fmt.Errorf("repair status of sku %d: %w", rec.ID, err)
		}
		s.logger.Info("sku status repaired",
			slog.Int64("id", rec.ID),
			slog.String("ndc", rec.NDC),
			slog.String("from", string(rec.Status)),
			slog.String("to", string(next)))
		fixed++
	}
	if fixed > 0 {
		s.invalidate(ctx)
	}
	return fixed, nil
}

// Seed inserts the sample catalogue, skipping ndcs that are already live.
func (s *Service) Seed(ctx context.Context) (int, error) {
	added := 0
	for _, req := range SampleSKUs() {
		_, err := s.Create(ctx, req)
		if errors.Is(err, ErrDuplicateNDC) {
			continue
		}
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("sku cache bump", slog.Any("error", err))
	}
}
