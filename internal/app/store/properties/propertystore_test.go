package propertystore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	propertystore "github.com/dalemusser/vitrine/internal/app/store/properties"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/vitrine/internal/testutil"
)

func TestStore_InsertAndSelect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Insert(ctx, testutil.Property("Apartamento em Pinheiros"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if first.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if first.Version != 1 {
		t.Errorf("Version: got %d, want 1", first.Version)
	}
	if first.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	second, err := store.Insert(ctx, testutil.Property("Casa no Butantã"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	all, err := store.Select(ctx)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Select: got %d properties, want 2", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Errorf("Select order: got %s,%s want %s,%s", all[0].ID, all[1].ID, first.ID, second.ID)
	}
}

func TestStore_SelectEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	all, err := store.Select(ctx)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("Select on empty collection: got %v, want empty slice", all)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Insert(ctx, testutil.Property("Studio Vila Madalena"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	featured := true
	got, err := store.Update(ctx, p.ID, catalog.Patch{Featured: &featured}, p.Version)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !got.Featured {
		t.Error("expected Featured to be true")
	}
	if got.Version != p.Version+1 {
		t.Errorf("Version: got %d, want %d", got.Version, p.Version+1)
	}
	if got.Title != p.Title {
		t.Errorf("flag patch changed Title to %q", got.Title)
	}

	d := models.DraftOf(got)
	d.Title = "Studio reformado"
	got, err = store.Update(ctx, p.ID, catalog.Patch{Draft: &d}, 0)
	if err != nil {
		t.Fatalf("Update with draft failed: %v", err)
	}
	if got.Title != "Studio reformado" {
		t.Errorf("Title: got %q", got.Title)
	}
	if got.Version != 3 {
		t.Errorf("Version: got %d, want 3", got.Version)
	}
}

func TestStore_UpdateConflictAndNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Insert(ctx, testutil.Property("Cobertura"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	hidden := false
	_, err = store.Update(ctx, p.ID, catalog.Patch{IsPublic: &hidden}, p.Version+5)
	if !errors.Is(err, catalog.ErrConflict) {
		t.Errorf("stale version: got %v, want ErrConflict", err)
	}

	_, err = store.Update(ctx, "missing", catalog.Patch{IsPublic: &hidden}, 0)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Insert(ctx, testutil.Property("Terreno"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, p.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second Delete: got %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("GetByID after delete: got %v, want ErrNotFound", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count: got %d, want 0", n)
	}
}

func TestStore_Ping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
