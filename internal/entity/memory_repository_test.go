package entity

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryRepositoryEnforcesUniqueness(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	base := Entity{EID: "eid-1", MSISDNHash: "+15551111111", Username: "alice", PasswordHash: "hash"}
	if err := repo.Create(ctx, base); err != nil {
		t.Fatalf("create: %v", err)
	}

	samePhone := Entity{EID: "eid-2", MSISDNHash: "+15551111111", Username: "bob", PasswordHash: "hash"}
	if err := repo.Create(ctx, samePhone); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for phone, got %v", err)
	}

	sameName := Entity{EID: "eid-3", MSISDNHash: "+15552222222", Username: "alice", PasswordHash: "hash"}
	if err := repo.Create(ctx, sameName); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for username, got %v", err)
	}

	// The losing creates must not leave partial index entries behind.
	if _, err := repo.FindByMSISDN(ctx, "+15552222222"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected create left a phone index entry: %v", err)
	}
}

func TestMemoryRepositoryConcurrentCreateSameUsername(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, Entity{
				EID:        DeriveEID("alice", string(rune('a'+i))),
				MSISDNHash: string(rune('a' + i)),
				Username:   "alice",
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else if !errors.Is(err, ErrDuplicate) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one winner, got %d", created)
	}
}
