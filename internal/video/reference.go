package video

import (
	"context"
	"fmt"
	"strings"

	"videoads/internal/domain"
)

// SaveBase creates or replaces a base.
func (s *Service) SaveBase(ctx context.Context, base *domain.Base) error {
	base.Title = strings.TrimSpace(base.Title)
	base.File = strings.TrimSpace(base.File)
	if base.Title == "" || base.File == "" {
		return fmt.Errorf("%w: base title and file are required", domain.ErrInvalidInput)
	}
	for i, slot := range base.Products {
		if slot.EndTime != 0 && slot.EndTime < slot.StartTime {
			return fmt.Errorf("%w: product slot %d ends before it starts", domain.ErrInvalidInput, i)
		}
	}
	if err := s.bases.Upsert(ctx, base); err != nil {
		return err
	}
	s.invalidateConfigs()
	return nil
}

// DeleteBase removes a base and, through the schema, its offer types.
func (s *Service) DeleteBase(ctx context.Context, title string) error {
	if err := s.bases.Delete(ctx, title); err != nil {
		return err
	}
	s.invalidateConfigs()
	return nil
}

// SaveProduct creates or replaces a product.
func (s *Service) SaveProduct(ctx context.Context, p *domain.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.OfferType) == "" {
		return fmt.Errorf("%w: product offer type is required", domain.ErrInvalidInput)
	}
	if p.Values == nil {
		p.Values = map[string]string{}
	}
	return s.products.Upsert(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// SaveOfferType creates or replaces an offer type and drops its cached
// configuration.
func (s *Service) SaveOfferType(ctx context.Context, ot *domain.OfferType) error {
	ot.Title = strings.TrimSpace(ot.Title)
	ot.Base = strings.TrimSpace(ot.Base)
	if ot.Title == "" || ot.Base == "" {
		return fmt.Errorf("%w: offer type title and base are required", domain.ErrInvalidInput)
	}
	for _, c := range ot.Configs {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if ot.Configs == nil {
		ot.Configs = []domain.OverlayConfig{}
	}
	if err := s.offerTypes.Upsert(ctx, ot); err != nil {
		return err
	}
	s.invalidateConfigs(configKey(ot.Title, ot.Base))
	return nil
}

func (s *Service) DeleteOfferType(ctx context.Context, title, base string) error {
	if err := s.offerTypes.Delete(ctx, title, base); err != nil {
		return err
	}
	s.invalidateConfigs(configKey(title, base))
	return nil
}
