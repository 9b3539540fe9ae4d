package video

import (
	"context"
	"fmt"
	"sort"

	"videoads/internal/domain"
)

func configKey(offerType, base string) string {
	return offerType + "\x00" + base
}

// ConfigsFromOfferType returns the overlay configuration of offerType for
// baseTitle. Results are cached until the offer type is written.
func (s *Service) ConfigsFromOfferType(ctx context.Context, offerType, baseTitle string) ([]domain.OverlayConfig, error) {
	key := configKey(offerType, baseTitle)
	if cached, ok := s.configs.Get(key); ok {
		return cloneConfigs(cached.([]domain.OverlayConfig)), nil
	}
	s.configMu.Lock()
	gen := s.configGen
	s.configMu.Unlock()

	ot, err := s.offerTypes.Get(ctx, offerType, baseTitle)
	if err != nil {
		return nil, fmt.Errorf("offer type %q for base %q: %w", offerType, baseTitle, err)
	}
	configs := cloneConfigs(ot.Configs)

	// A write since gen may have been read too late to see; skip caching.
	s.configMu.Lock()
	if s.configGen == gen {
		s.configs.Add(key, configs)
	}
	s.configMu.Unlock()
	return cloneConfigs(configs), nil
}

// invalidateConfigs drops keys from the config cache, or the whole cache
// when no key is given, and fences out lookups that started earlier.
func (s *Service) invalidateConfigs(keys ...string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.configGen++
	if len(keys) == 0 {
		s.configs.Purge()
		return
	}
	for _, k := range keys {
		s.configs.Remove(k)
	}
}

func cloneConfigs(in []domain.OverlayConfig) []domain.OverlayConfig {
	out := make([]domain.OverlayConfig, len(in))
	copy(out, in)
	return out
}

// AvailableGroupsForBase groups products by their group name and keeps the
// groups that can fill every slot of the base: the group size equals the slot
// count and every member's offer type is configured for the base. Members
// are ordered by position.
func (s *Service) AvailableGroupsForBase(ctx context.Context, baseTitle string) (domain.ProductGroups, error) {
	base, err := s.bases.Get(ctx, baseTitle)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	offerTypes, err := s.offerTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	configured := make(map[string]bool)
	for _, ot := range offerTypes {
		if ot.Base == base.Title && len(ot.Configs) > 0 {
			configured[ot.Title] = true
		}
	}
	return availableGroups(base, products, configured), nil
}

func availableGroups(base *domain.Base, products []domain.Product, configured map[string]bool) domain.ProductGroups {
	all := make(domain.ProductGroups)
	for _, p := range products {
		if p.Group == "" {
			continue
		}
		all[p.Group] = append(all[p.Group], p)
	}
	groups := make(domain.ProductGroups)
	for name, members := range all {
		if len(members) == 0 || len(members) != base.SlotCount() {
			continue
		}
		ok := true
		for _, p := range members {
			if !configured[p.OfferType] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		domain.SortByPosition(members)
		groups[name] = members
	}
	return groups
}

// SelectGroups resolves the operator's selection against the available
// groups. all selects every available group; otherwise requested is
// de-duplicated and returned in name order. Unknown names are reported as
// ErrGroupUnavailable.
func SelectGroups(available domain.ProductGroups, requested []string, all bool) ([]string, error) {
	if all {
		return available.Names(), nil
	}
	seen := make(map[string]struct{}, len(requested))
	selected := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := available[name]; !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrGroupUnavailable, name)
		}
		selected = append(selected, name)
	}
	sort.Strings(selected)
	return selected, nil
}
