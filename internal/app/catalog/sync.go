package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/vitrine/internal/app/system/htmlsanitize"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/timeouts"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"go.uber.org/zap"
)

// Synchronizer applies property writes to the store and merges the
// confirmed results into the catalog.
//
// Create, Update and Delete are confirm-then-apply. The flag writes
// (ToggleVisibility, ToggleFeatured, ChangeStatus) are optimistic: the new
// value is applied locally first and rolled back if the store rejects it.
// Every operation reports its outcome to the notification sink.
type Synchronizer struct {
	store Store
	cat   *Catalog
	sink  notify.Sink
	log   *zap.Logger
}

// NewSynchronizer wires a store to a catalog. A nil sink discards
// notifications; a nil logger is replaced by a no-op logger.
func NewSynchronizer(store Store, cat *Catalog, sink notify.Sink, log *zap.Logger) *Synchronizer {
	if cat == nil {
		cat = New()
	}
	if sink == nil {
		sink = notify.Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{store: store, cat: cat, sink: sink, log: log}
}

// Catalog returns the catalog kept in sync by s.
func (s *Synchronizer) Catalog() *Catalog { return s.cat }

// Store returns the backing store.
func (s *Synchronizer) Store() Store { return s.store }

// notify delivers to the synchronizer's sink and to any request-scoped
// sink carried by ctx.
func (s *Synchronizer) notify(ctx context.Context, kind notify.Kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.sink.Notify(ctx, kind, msg)
	if rs := notify.FromContext(ctx); rs != nil {
		rs.Notify(ctx, kind, msg)
	}
}

// prepare normalizes, sanitizes and validates a draft.
func prepare(d models.Draft) (models.Draft, error) {
	d = models.Normalize(d)
	d.Description = htmlsanitize.Sanitize(d.Description)
	if err := validationError(models.Validate(d)); err != nil {
		return d, err
	}
	return d, nil
}

// Create validates d, inserts it and appends the stored record.
func (s *Synchronizer) Create(ctx context.Context, d models.Draft) (models.Property, error) {
	d, err := prepare(d)
	if err != nil {
		s.notify(ctx, notify.Error, "Não foi possível cadastrar o imóvel: %v", err)
		return models.Property{}, err
	}

	var p models.Property
	p.Apply(d)

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "catalog create")
	defer cancel()

	saved, err := s.store.Insert(ctx, p)
	if err != nil {
		s.log.Error("create property failed", zap.String("op", "create"), zap.Error(err))
		s.notify(ctx, notify.Error, "Erro ao cadastrar o imóvel %q.", d.Title)
		return models.Property{}, &RemoteError{Op: "create", Err: err}
	}

	s.cat.put(saved)
	s.log.Info("property created", zap.String("property_id", saved.ID))
	s.notify(ctx, notify.Success, "Imóvel %q cadastrado com sucesso.", saved.Title)
	return saved, nil
}

// Update replaces every mutable field of id with d.
func (s *Synchronizer) Update(ctx context.Context, id string, d models.Draft) (models.Property, error) {
	return s.UpdateIfVersion(ctx, id, d, 0)
}

// UpdateIfVersion is Update guarded by the version the caller last saw.
// A zero version skips the check.
func (s *Synchronizer) UpdateIfVersion(ctx context.Context, id string, d models.Draft, version int64) (models.Property, error) {
	if _, ok := s.cat.Get(id); !ok {
		s.notify(ctx, notify.Error, "Imóvel não encontrado.")
		return models.Property{}, ErrNotFound
	}
	d, err := prepare(d)
	if err != nil {
		s.notify(ctx, notify.Error, "Não foi possível atualizar o imóvel: %v", err)
		return models.Property{}, err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "catalog update")
	defer cancel()

	saved, err := s.store.Update(ctx, id, Patch{Draft: &d}, version)
	if err != nil {
		s.log.Error("update property failed", zap.String("op", "update"), zap.String("property_id", id), zap.Error(err))
		s.notify(ctx, notify.Error, "Erro ao atualizar o imóvel %q.", d.Title)
		return models.Property{}, &RemoteError{Op: "update", ID: id, Err: err}
	}

	s.cat.put(saved)
	s.notify(ctx, notify.Success, "Imóvel %q atualizado com sucesso.", saved.Title)
	return saved, nil
}

// Delete removes id from the store and then from the catalog.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	p, ok := s.cat.Get(id)
	if !ok {
		s.notify(ctx, notify.Error, "Imóvel não encontrado.")
		return ErrNotFound
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "catalog delete")
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.Error("delete property failed", zap.String("op", "delete"), zap.String("property_id", id), zap.Error(err))
		s.notify(ctx, notify.Error, "Erro ao excluir o imóvel %q.", p.Title)
		return &RemoteError{Op: "delete", ID: id, Err: err}
	}

	s.cat.remove(id)
	s.notify(ctx, notify.Success, "Imóvel %q excluído.", p.Title)
	return nil
}

// ToggleVisibility flips IsPublic.
func (s *Synchronizer) ToggleVisibility(ctx context.Context, id string) (models.Property, error) {
	return s.mutate(ctx, "toggle_visibility", id, func(p *models.Property) (Patch, string) {
		v := !p.IsPublic
		p.IsPublic = v
		if v {
			return Patch{IsPublic: &v}, "Imóvel %q agora está visível ao público."
		}
		return Patch{IsPublic: &v}, "Imóvel %q ocultado do público."
	})
}

// ToggleFeatured flips Featured.
func (s *Synchronizer) ToggleFeatured(ctx context.Context, id string) (models.Property, error) {
	return s.mutate(ctx, "toggle_featured", id, func(p *models.Property) (Patch, string) {
		v := !p.Featured
		p.Featured = v
		if v {
			return Patch{Featured: &v}, "Imóvel %q marcado como destaque."
		}
		return Patch{Featured: &v}, "Imóvel %q removido dos destaques."
	})
}

// ChangeStatus sets the lifecycle status.
func (s *Synchronizer) ChangeStatus(ctx context.Context, id string, status models.Status) (models.Property, error) {
	if !status.Valid() {
		err := &ValidationError{Fields: []models.FieldError{{Field: "status", Reason: "must be 'active', 'pending' or 'archived'"}}}
		s.notify(ctx, notify.Error, "Status inválido: %q.", string(status))
		return models.Property{}, err
	}
	return s.mutate(ctx, "change_status", id, func(p *models.Property) (Patch, string) {
		p.Status = status
		return Patch{Status: &status}, "Status do imóvel %q alterado para " + StatusLabel(status) + "."
	})
}

// mutate runs an optimistic single-flag write. change edits the local
// copy and returns the matching patch and the success message format.
//
// The optimistic value is installed only if nobody changed the record since
// it was read, and rolled back only while it is still in place, so a
// concurrent Reload or write is never clobbered.
func (s *Synchronizer) mutate(ctx context.Context, op, id string, change func(*models.Property) (Patch, string)) (models.Property, error) {
	prev, ok := s.cat.Get(id)
	if !ok {
		s.notify(ctx, notify.Error, "Imóvel não encontrado.")
		return models.Property{}, ErrNotFound
	}

	next := prev.Clone()
	patch, okMsg := change(&next)
	next.Version = prev.Version + 1

	if !s.cat.swap(prev.Version, next) {
		s.notify(ctx, notify.Error, "O imóvel %q foi alterado por outra operação. Tente novamente.", prev.Title)
		return prev, &RemoteError{Op: op, ID: id, Err: ErrConflict}
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "catalog "+op)
	defer cancel()

	saved, err := s.store.Update(ctx, id, patch, prev.Version)
	if err != nil {
		rolledBack := s.cat.swap(next.Version, prev)
		s.log.Warn("property write failed",
			zap.String("op", op),
			zap.String("property_id", id),
			zap.Bool("rolled_back", rolledBack),
			zap.Error(err))
		if errors.Is(err, ErrConflict) {
			s.notify(ctx, notify.Error, "O imóvel %q foi alterado em outra sessão. Recarregue e tente novamente.", prev.Title)
		} else {
			s.notify(ctx, notify.Error, "Erro ao atualizar o imóvel %q.", prev.Title)
		}
		return prev, &RemoteError{Op: op, ID: id, Err: err}
	}

	s.cat.swap(next.Version, saved)
	s.notify(ctx, notify.Success, okMsg, saved.Title)
	return saved, nil
}

// Reload replaces the catalog with the store's rows.
func (s *Synchronizer) Reload(ctx context.Context) (int, error) {
	n, err := s.reload(ctx)
	if err != nil {
		s.notify(ctx, notify.Error, "Erro ao carregar o catálogo.")
		return 0, err
	}
	s.notify(ctx, notify.Success, "Catálogo atualizado: %d imóveis.", n)
	return n, nil
}

func (s *Synchronizer) reload(ctx context.Context) (int, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "catalog reload")
	defer cancel()

	rows, err := s.store.Select(ctx)
	if err != nil {
		s.log.Error("reload catalog failed", zap.String("op", "reload"), zap.Error(err))
		return 0, &RemoteError{Op: "reload", Err: err}
	}
	s.cat.Replace(rows)
	s.log.Info("catalog reloaded", zap.Int("count", len(rows)))
	return len(rows), nil
}
