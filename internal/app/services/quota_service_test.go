package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/vuhoang/defcom/internal/app/models"
	"github.com/vuhoang/defcom/internal/pkg/apperrors"
)

func TestQuotaReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve within quota", func(t *testing.T) {
		repo := newMockLecturerRepo()
		repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 2}
		svc := NewQuotaService(repo)

		reserved, err := svc.Reserve(ctx, "GV01", "committee:COM001")
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if !reserved {
			t.Error("Reserve() reported an existing reservation, want a new one")
		}
		if got := repo.lecturers["GV01"].CurrentDefenseLoad; got != 1 {
			t.Errorf("load = %d, want 1", got)
		}
	})

	t.Run("reserve at quota fails with current load in message", func(t *testing.T) {
		repo := newMockLecturerRepo()
		repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 2, CurrentDefenseLoad: 2}
		svc := NewQuotaService(repo)

		_, err := svc.Reserve(ctx, "GV01", "committee:COM001")
		if !errors.Is(err, apperrors.ErrQuotaExceeded) {
			t.Fatalf("Reserve() error = %v, want ErrQuotaExceeded", err)
		}
		if !strings.Contains(err.Error(), "2/2") {
			t.Errorf("error %q does not name the quota state", err)
		}
	})

	t.Run("zero quota is unlimited", func(t *testing.T) {
		repo := newMockLecturerRepo()
		repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 0, CurrentDefenseLoad: 99}
		svc := NewQuotaService(repo)

		if _, err := svc.Reserve(ctx, "GV01", "committee:COM001"); err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
	})

	t.Run("reserving a held ref is idempotent", func(t *testing.T) {
		repo := newMockLecturerRepo()
		repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 1}
		svc := NewQuotaService(repo)

		reserved, err := svc.Reserve(ctx, "GV01", "committee:COM001")
		if err != nil {
			t.Fatalf("first Reserve() error = %v", err)
		}
		if !reserved {
			t.Error("first Reserve() reported an existing reservation")
		}
		reserved, err = svc.Reserve(ctx, "GV01", "committee:COM001")
		if err != nil {
			t.Fatalf("repeat Reserve() error = %v", err)
		}
		if reserved {
			t.Error("repeat Reserve() claimed to create a new reservation")
		}
		if got := repo.lecturers["GV01"].CurrentDefenseLoad; got != 1 {
			t.Errorf("load = %d, want 1 after repeated reserve", got)
		}
	})

	t.Run("unknown lecturer", func(t *testing.T) {
		svc := NewQuotaService(newMockLecturerRepo())
		if _, err := svc.Reserve(ctx, "GV99", "committee:COM001"); !errors.Is(err, apperrors.ErrLecturerNotFound) {
			t.Fatalf("Reserve() error = %v, want ErrLecturerNotFound", err)
		}
	})
}

func TestQuotaConcurrentReserve(t *testing.T) {
	// Ten goroutines compete for the last three units; exactly three may
	// win.
	ctx := context.Background()
	repo := newMockLecturerRepo()
	repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 3}
	svc := NewQuotaService(repo)

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.Reserve(ctx, "GV01", "committee:COM"+string(rune('A'+n))); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if won != 3 {
		t.Errorf("%d reservations won, want 3", won)
	}
	if got := repo.lecturers["GV01"].CurrentDefenseLoad; got != 3 {
		t.Errorf("load = %d, want 3", got)
	}
}

func TestQuotaRelease(t *testing.T) {
	ctx := context.Background()
	repo := newMockLecturerRepo()
	repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 1}
	svc := NewQuotaService(repo)

	if _, err := svc.Reserve(ctx, "GV01", "committee:COM001"); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if _, err := svc.Reserve(ctx, "GV01", "committee:COM002"); !errors.Is(err, apperrors.ErrQuotaExceeded) {
		t.Fatalf("Reserve() beyond quota error = %v, want ErrQuotaExceeded", err)
	}

	if err := svc.Release(ctx, "GV01", "committee:COM001"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	// Released capacity can be spent again.
	if _, err := svc.Reserve(ctx, "GV01", "committee:COM002"); err != nil {
		t.Fatalf("Reserve() after release error = %v", err)
	}

	// Releasing a ref never reserved, or already released, is a no-op.
	if err := svc.Release(ctx, "GV01", "committee:COM001"); err != nil {
		t.Fatalf("repeat Release() error = %v", err)
	}
	if got := repo.lecturers["GV01"].CurrentDefenseLoad; got != 1 {
		t.Errorf("load = %d, want 1", got)
	}
}

func TestQuotaHeadroom(t *testing.T) {
	ctx := context.Background()
	repo := newMockLecturerRepo()
	repo.lecturers["GV01"] = &models.Lecturer{Code: "GV01", DefenseQuota: 5, CurrentDefenseLoad: 2}
	repo.lecturers["GV02"] = &models.Lecturer{Code: "GV02", DefenseQuota: 0}
	svc := NewQuotaService(repo)

	h, err := svc.Headroom(ctx, "GV01")
	if err != nil {
		t.Fatalf("Headroom() error = %v", err)
	}
	if h != 3 {
		t.Errorf("headroom = %d, want 3", h)
	}

	h, err = svc.Headroom(ctx, "GV02")
	if err != nil {
		t.Fatalf("Headroom() error = %v", err)
	}
	if h < 1<<30 {
		t.Errorf("unlimited headroom = %d, want effectively unbounded", h)
	}
}
