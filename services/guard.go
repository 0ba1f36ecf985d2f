package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/camden-git/librarycatalog/repository"
)

// DeleteOutcome is the terminal state of a guarded delete.
type DeleteOutcome int

const (
	// AlreadyGone means the record did not exist. Deleting it again is a success.
	AlreadyGone DeleteOutcome = iota
	// Blocked means other records still reference it; nothing was removed.
	Blocked
	// Deleted means the record was removed.
	Deleted
)

func (o DeleteOutcome) String() string {
	switch o {
	case AlreadyGone:
		return "already_gone"
	case Blocked:
		return "blocked"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DeleteResult carries the record and its dependents when a delete is blocked.
type DeleteResult[E, D any] struct {
	Outcome    DeleteOutcome
	Entity     *E
	Dependents []D
}

// deleteGuard removes a record only when nothing references it.
type deleteGuard[E, D any] struct {
	// lock is held exclusively for the whole check-then-remove sequence.
	// Writers that create references to this kind hold it shared.
	lock       *sync.RWMutex
	find       func(ctx context.Context, id uuid.UUID) (*E, error)
	dependents func(ctx context.Context, id uuid.UUID) ([]D, error)
	remove     func(ctx context.Context, id uuid.UUID) error
}

// run fetches the record and its dependents concurrently, then decides.
// Calling it again once dependents are gone needs no extra step.
func (g deleteGuard[E, D]) run(ctx context.Context, id uuid.UUID) (DeleteResult[E, D], error) {
	if g.lock != nil {
		g.lock.Lock()
		defer g.lock.Unlock()
	}

	var (
		entity *E
		deps   []D
		absent bool
	)
	fetches := []fetchFunc{
		func(ctx context.Context) error {
			e, err := g.find(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				absent = true
				return nil
			}
			entity = e
			return err
		},
	}
	if g.dependents != nil {
		fetches = append(fetches, into(&deps, func(ctx context.Context) ([]D, error) {
			return g.dependents(ctx, id)
		}))
	}
	if err := fetchAll(ctx, fetches...); err != nil {
		return DeleteResult[E, D]{}, err
	}

	if absent {
		return DeleteResult[E, D]{Outcome: AlreadyGone}, nil
	}
	if len(deps) > 0 {
		return DeleteResult[E, D]{Outcome: Blocked, Entity: entity, Dependents: deps}, nil
	}

	if err := g.remove(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DeleteResult[E, D]{Outcome: AlreadyGone}, nil
		}
		return DeleteResult[E, D]{}, err
	}
	return DeleteResult[E, D]{Outcome: Deleted, Entity: entity}, nil
}

// refLocks serializes deletes of a kind against writes that reference it.
type refLocks struct {
	authors sync.RWMutex
	genres  sync.RWMutex
	books   sync.RWMutex
}
