package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"p9ify/internal/platform/kv"
)

// MFAKey holds the sealed TOTP secret of the administrator.
const MFAKey = "auth_mfa"

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

type MFAStatus struct {
	Enabled bool `json:"enabled"`
}

type mfaRecord struct {
	SecretEnc []byte `json:"secretEnc"`
	Enabled   bool   `json:"enabled"`
}

// SetupMFA generates a new secret and stores it sealed but not yet
// enabled. A previous secret is replaced and the second factor switched
// off until EnableMFA confirms a code.
func (s *Service) SetupMFA(ctx context.Context) (MFASetup, error) {
	if !s.Enabled() {
		return MFASetup{}, ErrAuthDisabled
	}
	if !s.mfaAvailable() {
		return MFASetup{}, ErrMFAUnavailable
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: AdminSubject,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, fmt.Errorf("generate mfa secret: %w", err)
	}
	sealed, err := s.crypto.Encrypt([]byte(key.Secret()))
	if err != nil {
		return MFASetup{}, fmt.Errorf("seal mfa secret: %w", err)
	}
	if err := s.saveMFA(ctx, mfaRecord{SecretEnc: sealed}); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// EnableMFA switches the second factor on after a valid code.
func (s *Service) EnableMFA(ctx context.Context, code string) error {
	return s.toggleMFA(ctx, code, true)
}

// DisableMFA switches the second factor off after a valid code.
func (s *Service) DisableMFA(ctx context.Context, code string) error {
	return s.toggleMFA(ctx, code, false)
}

func (s *Service) MFAStatus(ctx context.Context) (MFAStatus, error) {
	if !s.mfaAvailable() {
		return MFAStatus{}, nil
	}
	rec, err := s.loadMFA(ctx)
	if errors.Is(err, ErrMFANotSetUp) {
		return MFAStatus{}, nil
	}
	if err != nil {
		return MFAStatus{}, err
	}
	return MFAStatus{Enabled: rec.Enabled}, nil
}

func (s *Service) toggleMFA(ctx context.Context, code string, enabled bool) error {
	if !s.Enabled() {
		return ErrAuthDisabled
	}
	if !s.mfaAvailable() {
		return ErrMFAUnavailable
	}
	rec, err := s.loadMFA(ctx)
	if err != nil {
		return err
	}
	if err := s.validateCode(rec, code); err != nil {
		return err
	}
	rec.Enabled = enabled
	return s.saveMFA(ctx, rec)
}

func (s *Service) checkSecondFactor(ctx context.Context, code string) error {
	if !s.mfaAvailable() {
		return nil
	}
	rec, err := s.loadMFA(ctx)
	if errors.Is(err, ErrMFANotSetUp) {
		return nil
	}
	if err != nil {
		return err
	}
	if !rec.Enabled {
		return nil
	}
	if code == "" {
		return ErrMFARequired
	}
	return s.validateCode(rec, code)
}

func (s *Service) validateCode(rec mfaRecord, code string) error {
	secret, err := s.crypto.Decrypt(rec.SecretEnc)
	if err != nil {
		return fmt.Errorf("open mfa secret: %w", err)
	}
	if len(secret) == 0 || !totp.Validate(code, string(secret)) {
		return ErrInvalidMFACode
	}
	return nil
}

func (s *Service) mfaAvailable() bool {
	return s.kv != nil && s.crypto.Configured()
}

func (s *Service) loadMFA(ctx context.Context) (mfaRecord, error) {
	raw, err := s.kv.Get(ctx, MFAKey)
	if errors.Is(err, kv.ErrNotFound) {
		return mfaRecord{}, ErrMFANotSetUp
	}
	if err != nil {
		return mfaRecord{}, err
	}
	var rec mfaRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return mfaRecord{}, fmt.Errorf("decode mfa record: %w", err)
	}
	return rec, nil
}

func (s *Service) saveMFA(ctx context.Context, rec mfaRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, MFAKey, raw)
}
