package relationships

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Snapgram/internal/metrics"
)

// Toggler flips one relationship row and moves its counters with it.
// The steps run one after another against the store: find, then create or
// delete, then each counter in order. Nothing spans the existence check and
// the write, so two concurrent toggles for the same pair can both observe the
// same state.
type Toggler struct {
	repo     Repository
	counters CounterStore
	logger   *slog.Logger
}

// NewToggler creates a toggler over the given relationship and counter stores
func NewToggler(repo Repository, counters CounterStore, logger *slog.Logger) *Toggler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggler{
		repo:     repo,
		counters: counters,
		logger:   logger,
	}
}

// Toggle flips the (ownerID, actorID) relationship of the given kind.
// counters lists every cell that mirrors the relationship's existence; all of
// them are decremented on removal and incremented on creation.
func (t *Toggler) Toggle(ctx context.Context, kind Kind, ownerID, actorID string, counters []Counter) (*ToggleResult, error) {
	existing, err := t.repo.Find(ctx, kind, ownerID, actorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.ToggleFailures.WithLabelValues(string(kind), "find").Inc()
		return nil, fmt.Errorf("failed to check existing %s: %w", kind, err)
	}

	if existing != nil {
		return t.remove(ctx, existing, counters)
	}
	return t.create(ctx, kind, ownerID, actorID, counters)
}

func (t *Toggler) remove(ctx context.Context, existing *Relationship, counters []Counter) (*ToggleResult, error) {
	kind := existing.Kind

	if err := t.repo.Delete(ctx, kind, existing.ID); err != nil {
		metrics.ToggleFailures.WithLabelValues(string(kind), "delete").Inc()
		return nil, fmt.Errorf("failed to delete %s %s: %w", kind, existing.ID, err)
	}

	for _, c := range counters {
		if err := t.counters.Decrement(ctx, c, 1); err != nil {
			// The row is already gone; the counter now disagrees with it until reconciled.
			metrics.ToggleFailures.WithLabelValues(string(kind), "decrement").Inc()
			t.logger.Error("counter decrement failed after relationship delete",
				"error", err,
				"kind", kind,
				"relationship", existing.ID,
				"table", c.Table,
				"column", c.Column,
				"row", c.RowID)
			return nil, fmt.Errorf("failed to decrement %s.%s: %w", c.Table, c.Column, err)
		}
	}

	metrics.Toggles.WithLabelValues(string(kind), string(OutcomeRemoved)).Inc()
	t.logger.Info("relationship removed",
		"kind", kind,
		"owner", existing.OwnerID,
		"actor", existing.ActorID)

	return &ToggleResult{Outcome: OutcomeRemoved}, nil
}

func (t *Toggler) create(ctx context.Context, kind Kind, ownerID, actorID string, counters []Counter) (*ToggleResult, error) {
	created, err := t.repo.Create(ctx, kind, ownerID, actorID)
	if err != nil {
		metrics.ToggleFailures.WithLabelValues(string(kind), "create").Inc()
		if errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrSubjectNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	if created == nil || created.ID == "" {
		metrics.ToggleFailures.WithLabelValues(string(kind), "create").Inc()
		return nil, ErrCreationFailed
	}
	created.Kind = kind

	for _, c := range counters {
		if err := t.counters.Increment(ctx, c, 1); err != nil {
			metrics.ToggleFailures.WithLabelValues(string(kind), "increment").Inc()
			t.logger.Error("counter increment failed after relationship create",
				"error", err,
				"kind", kind,
				"relationship", created.ID,
				"table", c.Table,
				"column", c.Column,
				"row", c.RowID)
			return nil, fmt.Errorf("failed to increment %s.%s: %w", c.Table, c.Column, err)
		}
	}

	metrics.Toggles.WithLabelValues(string(kind), string(OutcomeCreated)).Inc()
	t.logger.Info("relationship created",
		"kind", kind,
		"id", created.ID,
		"owner", ownerID,
		"actor", actorID)

	return &ToggleResult{
		Relationship: created,
		Outcome:      OutcomeCreated,
	}, nil
}
