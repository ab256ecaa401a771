package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	"github.com/dalemusser/vitrine/internal/domain/models"
)

func TestStore_InsertSelectOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, title := range []string{"A", "B", "C"} {
		p, err := s.Insert(ctx, models.Property{Title: title})
		if err != nil {
			t.Fatalf("Insert(%s) error = %v", title, err)
		}
		if p.ID == "" || p.Version != 1 || p.CreatedAt.IsZero() {
			t.Errorf("Insert(%s) = %+v, want id, version 1 and timestamps", title, p)
		}
	}
	rows, err := s.Select(ctx)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 3 || rows[0].Title != "A" || rows[2].Title != "C" {
		t.Errorf("Select() order = %v", rows)
	}
}

func TestStore_UpdateVersion(t *testing.T) {
	ctx := context.Background()
	s := New(models.Property{ID: "p1", Title: "Casa"})

	yes := true
	p, err := s.Update(ctx, "p1", catalog.Patch{Featured: &yes}, 1)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !p.Featured || p.Version != 2 {
		t.Errorf("Update() = featured %v version %d, want true 2", p.Featured, p.Version)
	}

	_, err = s.Update(ctx, "p1", catalog.Patch{Featured: &yes}, 1)
	if !errors.Is(err, catalog.ErrConflict) {
		t.Errorf("stale Update() error = %v, want ErrConflict", err)
	}

	if _, err := s.Update(ctx, "p1", catalog.Patch{Featured: &yes}, 0); err != nil {
		t.Errorf("unguarded Update() error = %v", err)
	}

	if _, err := s.Update(ctx, "missing", catalog.Patch{}, 0); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := New(models.Property{ID: "p1"})
	if err := s.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "p1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Failures(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")
	s.FailNext("insert", boom)
	if _, err := s.Insert(ctx, models.Property{}); !errors.Is(err, boom) {
		t.Errorf("Insert() error = %v, want boom", err)
	}
	if _, err := s.Insert(ctx, models.Property{}); err != nil {
		t.Errorf("FailNext should only fail once, got %v", err)
	}

	s.SetDown(true)
	if err := s.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Ping() error = %v, want ErrUnavailable", err)
	}
	s.SetDown(false)
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
