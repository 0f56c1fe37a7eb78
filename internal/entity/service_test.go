package entity

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeProvider scripts provider behavior per test. When singleUse is set, a
// code stops validating after its first successful check.
type fakeProvider struct {
	code       string
	startErr   error
	checkErr   error
	singleUse  bool
	consumed   bool
	startCalls int
	checkCalls int
}

func (p *fakeProvider) Start(_ context.Context, _ string) error {
	p.startCalls++
	return p.startErr
}

func (p *fakeProvider) Check(_ context.Context, _, code string) (bool, error) {
	p.checkCalls++
	if p.checkErr != nil {
		return false, p.checkErr
	}
	if p.singleUse && p.consumed {
		return false, nil
	}
	if code == p.code {
		if p.singleUse {
			p.consumed = true
		}
		return true, nil
	}
	return false, nil
}

func TestInitiateSendsCode(t *testing.T) {
	provider := &fakeProvider{code: "000000"}
	svc := NewService(NewMemoryRepository(), provider)

	if err := svc.Initiate(context.Background(), "+15551111111"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if provider.startCalls != 1 {
		t.Fatalf("expected 1 delivery, got %d", provider.startCalls)
	}
}

func TestInitiateRequiresMSISDN(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(NewMemoryRepository(), provider)

	err := svc.Initiate(context.Background(), "")
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "msisdn" {
		t.Fatalf("expected missing msisdn error, got %v", err)
	}
	if provider.startCalls != 0 {
		t.Fatalf("provider called despite validation failure")
	}
}

func TestInitiateConflictsOnRegisteredMSISDN(t *testing.T) {
	repo := NewMemoryRepository()
	provider := &fakeProvider{code: "000000"}
	svc := NewService(repo, provider)
	ctx := context.Background()

	seedEntity(t, repo, "alice", "+15551111111")

	if err := svc.Initiate(ctx, "+15551111111"); !errors.Is(err, ErrMSISDNTaken) {
		t.Fatalf("expected ErrMSISDNTaken, got %v", err)
	}
	if provider.startCalls != 0 {
		t.Fatalf("provider called despite conflict")
	}
}

func TestInitiateSurfacesDeliveryFailure(t *testing.T) {
	provider := &fakeProvider{startErr: errors.New("sms gateway down")}
	svc := NewService(NewMemoryRepository(), provider)

	err := svc.Initiate(context.Background(), "+15551111111")
	if err == nil {
		t.Fatal("expected delivery failure to surface")
	}
	var missing *MissingFieldError
	if errors.As(err, &missing) || errors.Is(err, ErrMSISDNTaken) {
		t.Fatalf("delivery failure misclassified: %v", err)
	}
}

func TestConfirmValidationOrder(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &fakeProvider{code: "000000"})
	ctx := context.Background()

	cases := []struct {
		name  string
		reg   Registration
		field string
	}{
		{"missing msisdn", Registration{}, "msisdn"},
		{"missing code", Registration{MSISDN: "+15551111111"}, "code"},
		{"missing password", Registration{MSISDN: "+15551111111", Code: "000000", Username: "alice"}, "password"},
		{"missing username", Registration{MSISDN: "+15551111111", Code: "000000", Password: "hash"}, "username"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Confirm(ctx, tc.reg)
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tc.field {
				t.Fatalf("expected field %q reported, got %q", tc.field, missing.Field)
			}
		})
	}
}

func TestConfirmCreatesEntity(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeProvider{code: "000000"})
	ctx := context.Background()

	e, err := svc.Confirm(ctx, Registration{MSISDN: "+15551111111", Code: "000000", Username: "alice", Password: "hash"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if e.EID != DeriveEID("alice", "+15551111111") {
		t.Fatalf("unexpected eid %q", e.EID)
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	stored, err := repo.FindByMSISDN(ctx, "+15551111111")
	if err != nil {
		t.Fatalf("lookup created entity: %v", err)
	}
	if stored.Username != "alice" || stored.PasswordHash != "hash" {
		t.Fatalf("stored entity mismatch: %+v", stored)
	}
}

func TestConfirmRejectsWrongCode(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeProvider{code: "000000"})
	ctx := context.Background()

	_, err := svc.Confirm(ctx, Registration{MSISDN: "+15551111111", Code: "999999", Username: "alice", Password: "hash"})
	if !errors.Is(err, ErrIncorrectCode) {
		t.Fatalf("expected ErrIncorrectCode, got %v", err)
	}

	if _, err := repo.FindByMSISDN(ctx, "+15551111111"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("entity created despite rejected code")
	}
}

func TestConfirmSingleUseCode(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeProvider{code: "000000", singleUse: true})
	ctx := context.Background()

	first := Registration{MSISDN: "+15551111111", Code: "000000", Username: "alice", Password: "hash"}
	if _, err := svc.Confirm(ctx, first); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	// The replay trips the msisdn conflict before the provider is consulted.
	if _, err := svc.Confirm(ctx, first); !errors.Is(err, ErrMSISDNTaken) {
		t.Fatalf("expected ErrMSISDNTaken on replay, got %v", err)
	}

	// A different number reusing the consumed code is an ownership rejection.
	second := Registration{MSISDN: "+15552222222", Code: "000000", Username: "bob", Password: "hash"}
	if _, err := svc.Confirm(ctx, second); !errors.Is(err, ErrIncorrectCode) {
		t.Fatalf("expected ErrIncorrectCode for consumed code, got %v", err)
	}
}

func TestConfirmConflictsOnTakenUsername(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeProvider{code: "000000"})
	ctx := context.Background()

	seedEntity(t, repo, "alice", "+15551111111")

	_, err := svc.Confirm(ctx, Registration{MSISDN: "+15552222222", Code: "000000", Username: "alice", Password: "hash"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

// raceRepository makes the pre-checks pass and then loses the create to a
// concurrent writer, exercising the store-enforced uniqueness path.
type raceRepository struct {
	Repository
}

func (r *raceRepository) FindByMSISDN(context.Context, string) (Entity, error) {
	return Entity{}, ErrNotFound
}

func (r *raceRepository) FindByUsername(context.Context, string) (Entity, error) {
	return Entity{}, ErrNotFound
}

func (r *raceRepository) Create(context.Context, Entity) error {
	return ErrDuplicate
}

func TestConfirmLosesCreateRace(t *testing.T) {
	svc := NewService(&raceRepository{}, &fakeProvider{code: "000000"})

	_, err := svc.Confirm(context.Background(), Registration{MSISDN: "+15551111111", Code: "000000", Username: "alice", Password: "hash"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestConfirmSurfacesCheckFailure(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &fakeProvider{checkErr: fmt.Errorf("provider unreachable")})
	ctx := context.Background()

	_, err := svc.Confirm(ctx, Registration{MSISDN: "+15551111111", Code: "000000", Username: "alice", Password: "hash"})
	if err == nil || errors.Is(err, ErrIncorrectCode) {
		t.Fatalf("expected unclassified failure, got %v", err)
	}
	if _, err := repo.FindByMSISDN(ctx, "+15551111111"); !errors.Is(err, ErrNotFound) {
		t.Fatal("entity created despite provider failure")
	}
}

func seedEntity(t *testing.T, repo Repository, username, msisdn string) {
	t.Helper()
	err := repo.Create(context.Background(), Entity{
		EID:          DeriveEID(username, msisdn),
		MSISDNHash:   msisdn,
		Username:     username,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("seed entity: %v", err)
	}
}
