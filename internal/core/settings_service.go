package core

import (
	"context"
	"fmt"
	"strings"

	"invoizo/internal/store"
)

// SettingsService reads and writes the singleton settings documents. Each
// getter returns the defaults when nothing has been saved yet.
type SettingsService interface {
	GetBusiness(ctx context.Context) (*Business, error)
	UpdateBusiness(ctx context.Context, input BusinessInput) (*Business, error)
	GetPrinterSettings(ctx context.Context) (*PrinterSettings, error)
	UpdatePrinterSettings(ctx context.Context, settings PrinterSettings) (*PrinterSettings, error)
	GetAuditSettings(ctx context.Context) (*AuditSettings, error)
	UpdateAuditSettings(ctx context.Context, settings AuditSettings) (*AuditSettings, error)
}

type settingsService struct {
	store store.Store
}

func NewSettingsService(s store.Store) SettingsService {
	return &settingsService{store: s}
}

func (s *settingsService) GetBusiness(ctx context.Context) (*Business, error) {
	var b Business
	if err := store.Load(ctx, s.store, store.KeyBusiness, &b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, notFoundf("No business registered. Please sign up first.")
	}
	return &b, nil
}

func (s *settingsService) UpdateBusiness(ctx context.Context, in BusinessInput) (*Business, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("Business name is required")
	}
	var b Business
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if err := store.Load(ctx, tx, store.KeyBusiness, &b); err != nil {
			return err
		}
		if b.ID == "" {
			return notFoundf("No business registered. Please sign up first.")
		}
		b.Name = strings.TrimSpace(in.Name)
		b.Email = in.Email
		b.Phone = in.Phone
		b.Address = in.Address
		b.Country = in.Country
		if in.Currency != "" {
			b.Currency = in.Currency
		}
		return store.Save(ctx, tx, store.KeyBusiness, b)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}
	return &b, nil
}

func (s *settingsService) GetPrinterSettings(ctx context.Context) (*PrinterSettings, error) {
	ps := DefaultPrinterSettings()
	if err := store.Load(ctx, s.store, store.KeyPrinterSettings, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (s *settingsService) UpdatePrinterSettings(ctx context.Context, ps PrinterSettings) (*PrinterSettings, error) {
	if ps.Cash.Copies < 1 || ps.Credit.Copies < 1 {
		return nil, validationf("Number of copies must be at least 1")
	}
	if err := store.Save(ctx, s.store, store.KeyPrinterSettings, ps); err != nil {
		return nil, fmt.Errorf("failed to save printer settings: %w", err)
	}
	return &ps, nil
}

func (s *settingsService) GetAuditSettings(ctx context.Context) (*AuditSettings, error) {
	as := DefaultAuditSettings()
	if err := store.Load(ctx, s.store, store.KeyAuditSettings, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *settingsService) UpdateAuditSettings(ctx context.Context, as AuditSettings) (*AuditSettings, error) {
	switch as.Frequency {
	case AuditDaily, AuditWeekly, AuditMonthly:
	case "":
		as.Frequency = AuditMonthly
	default:
		return nil, validationf("Unknown audit frequency %q", as.Frequency)
	}
	if err := store.Save(ctx, s.store, store.KeyAuditSettings, as); err != nil {
		return nil, fmt.Errorf("failed to save audit settings: %w", err)
	}
	return &as, nil
}
