package entity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entity-registry/entity_registry/internal/verify"
)

// Service orchestrates the two-phase registration flow: initiate sends a
// verification code to the phone number, confirm checks the code and creates
// the entity. No attempt state is held between the two phases; every check is
// re-run against the store on confirm because the two requests are separated
// by unbounded real time.
type Service struct {
	repo     Repository
	verifier verify.Provider
}

// NewService creates a registration service.
func NewService(repo Repository, verifier verify.Provider) *Service {
	return &Service{repo: repo, verifier: verifier}
}

// Initiate triggers delivery of a one-time code to msisdn. The entity does
// not exist yet after this call; only the verification attempt is pending on
// the provider side.
func (s *Service) Initiate(ctx context.Context, msisdn string) error {
	if msisdn == "" {
		return &MissingFieldError{Field: "msisdn"}
	}

	taken, err := s.msisdnTaken(ctx, msisdn)
	if err != nil {
		return err
	}
	if taken {
		return ErrMSISDNTaken
	}

	if err := s.verifier.Start(ctx, msisdn); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// Confirm validates the submitted code against the provider and creates the
// entity record. The uniqueness pre-checks fail fast before the provider
// call; the store's own constraints remain the enforcement point under
// concurrent confirms.
func (s *Service) Confirm(ctx context.Context, reg Registration) (Entity, error) {
	if reg.MSISDN == "" {
		return Entity{}, &MissingFieldError{Field: "msisdn"}
	}
	if reg.Code == "" {
		return Entity{}, &MissingFieldError{Field: "code"}
	}
	if reg.Password == "" {
		return Entity{}, &MissingFieldError{Field: "password"}
	}
	if reg.Username == "" {
		return Entity{}, &MissingFieldError{Field: "username"}
	}

	taken, err := s.msisdnTaken(ctx, reg.MSISDN)
	if err != nil {
		return Entity{}, err
	}
	if taken {
		return Entity{}, ErrMSISDNTaken
	}

	if _, err := s.repo.FindByUsername(ctx, reg.Username); err == nil {
		return Entity{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Entity{}, fmt.Errorf("lookup username: %w", err)
	}

	ok, err := s.verifier.Check(ctx, reg.MSISDN, reg.Code)
	if err != nil {
		return Entity{}, fmt.Errorf("check verification code: %w", err)
	}
	if !ok {
		return Entity{}, ErrIncorrectCode
	}

	e := Entity{
		EID:          DeriveEID(reg.Username, reg.MSISDN),
		MSISDNHash:   reg.MSISDN,
		Username:     reg.Username,
		PasswordHash: reg.Password,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		// A concurrent confirm may have won the race after our pre-checks.
		if errors.Is(err, ErrDuplicate) {
			return Entity{}, ErrDuplicate
		}
		return Entity{}, fmt.Errorf("create entity: %w", err)
	}

	return e, nil
}

func (s *Service) msisdnTaken(ctx context.Context, msisdn string) (bool, error) {
	if _, err := s.repo.FindByMSISDN(ctx, msisdn); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("lookup msisdn: %w", err)
	}
	return false, nil
}
