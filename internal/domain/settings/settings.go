// Package settings keeps the employer profile and the rate configuration.
// Stored values are overlaid on defaults field by field, so settings saved
// by an older version pick up rates added later.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/platform/kv"
)

const (
	Key = "gen_settings"

	DefaultName = "My Business Ltd"
	DefaultPIN  = "P000000000X"
)

var ErrInvalidEmployerPIN = errors.New("employer KRA PIN must be a letter, nine digits and a letter")

type Settings struct {
	Name    string        `json:"name"`
	PIN     string        `json:"pin"`
	Address string        `json:"address"`
	Logo    string        `json:"logo"`
	Rates   payroll.Rates `json:"rates"`
}

// Input is the stored and accepted form: every field optional.
type Input struct {
	Name    *string             `json:"name,omitempty"`
	PIN     *string             `json:"pin,omitempty"`
	Address *string             `json:"address,omitempty"`
	Logo    *string             `json:"logo,omitempty"`
	Rates   *payroll.RatesInput `json:"rates,omitempty"`
}

type Service struct {
	kv       kv.Store
	defaults payroll.Rates
}

// NewService uses defaults as the base rates, normally payroll.DefaultRates
// or the contents of the rates file.
func NewService(store kv.Store, defaults payroll.Rates) *Service {
	return &Service{kv: store, defaults: defaults}
}

func (s *Service) Defaults() Settings {
	return Settings{Name: DefaultName, PIN: DefaultPIN, Rates: s.defaults}
}

func (s *Service) Get(ctx context.Context) (Settings, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	return s.merge(stored), nil
}

// Rates returns the effective rate configuration.
func (s *Service) Rates(ctx context.Context) (payroll.Rates, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return payroll.Rates{}, err
	}
	return current.Rates, nil
}

// Save applies a partial update on top of what is stored.
func (s *Service) Save(ctx context.Context, in Input) (Settings, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		stored.Name = &name
	}
	if in.PIN != nil {
		pin := employees.NormalizePIN(*in.PIN)
		if pin != "" && !employees.ValidPIN(pin) {
			return Settings{}, ErrInvalidEmployerPIN
		}
		stored.PIN = &pin
	}
	if in.Address != nil {
		stored.Address = in.Address
	}
	if in.Logo != nil {
		stored.Logo = in.Logo
	}
	if in.Rates != nil {
		rates := overlay(stored.Rates, *in.Rates)
		stored.Rates = &rates
	}
	merged := s.merge(stored)
	if err := merged.Rates.Validate(); err != nil {
		return Settings{}, err
	}
	if err := s.store(ctx, stored); err != nil {
		return Settings{}, err
	}
	return merged, nil
}

// Restore stores a settings document taken from a backup as-is.
func (s *Service) Restore(ctx context.Context, in Input) error {
	if err := s.Validate(in); err != nil {
		return err
	}
	return s.store(ctx, in)
}

// Stored returns the settings document as saved, without defaults.
func (s *Service) Stored(ctx context.Context) (Input, error) {
	return s.load(ctx)
}

// Validate checks a stored-form document without saving it.
func (s *Service) Validate(in Input) error {
	return s.merge(in).Rates.Validate()
}

func (s *Service) ResetRates(ctx context.Context) (Settings, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	stored.Rates = nil
	if err := s.store(ctx, stored); err != nil {
		return Settings{}, err
	}
	return s.merge(stored), nil
}

func (s *Service) load(ctx context.Context) (Input, error) {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, kv.ErrNotFound) {
		return Input{}, nil
	}
	if err != nil {
		return Input{}, err
	}
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}, fmt.Errorf("decode settings: %w", err)
	}
	return in, nil
}

func (s *Service) store(ctx context.Context, in Input) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, Key, raw)
}

func (s *Service) merge(in Input) Settings {
	out := s.Defaults()
	if in.Name != nil {
		out.Name = *in.Name
	}
	if in.PIN != nil {
		out.PIN = *in.PIN
	}
	if in.Address != nil {
		out.Address = *in.Address
	}
	if in.Logo != nil {
		out.Logo = *in.Logo
	}
	if in.Rates != nil {
		out.Rates = in.Rates.Merge(out.Rates)
	}
	return out
}

func overlay(base *payroll.RatesInput, update payroll.RatesInput) payroll.RatesInput {
	var out payroll.RatesInput
	if base != nil {
		out = *base
	}
	pick := func(dst **float64, v *float64) {
		if v != nil {
			*dst = v
		}
	}
	pick(&out.SHIFPercent, update.SHIFPercent)
	pick(&out.AHLPercent, update.AHLPercent)
	pick(&out.NSSFPercent, update.NSSFPercent)
	pick(&out.PersonalRelief, update.PersonalRelief)
	pick(&out.InsuranceRelief, update.InsuranceRelief)
	pick(&out.Benefits, update.Benefits)
	pick(&out.Quarters, update.Quarters)
	return out
}

// ToInput converts merged settings back to the stored form.
func ToInput(value Settings) Input {
	r := value.Rates
	return Input{
		Name:    &value.Name,
		PIN:     &value.PIN,
		Address: &value.Address,
		Logo:    &value.Logo,
		Rates: &payroll.RatesInput{
			SHIFPercent:     &r.SHIFPercent,
			AHLPercent:      &r.AHLPercent,
			NSSFPercent:     &r.NSSFPercent,
			PersonalRelief:  &r.PersonalRelief,
			InsuranceRelief: &r.InsuranceRelief,
			Benefits:        &r.Benefits,
			Quarters:        &r.Quarters,
		},
	}
}
