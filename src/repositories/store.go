package repositories

import (
	"context"

	"analytics-sync/src/database"
	"analytics-sync/src/models"
)

// Store bundles the watermark and loader repositories over one scope's
// destination pool. The orchestrator opens one per scope and closes it when
// the scope's run finishes.
type Store interface {
	SyncLogRepository
	LoaderRepository
	Close()
}

// StoreOpener opens a Store from a resolved connection descriptor.
type StoreOpener interface {
	Open(ctx context.Context, desc models.ConnectionDescriptor) (Store, error)
}

type store struct {
	SyncLogRepository
	LoaderRepository
	close func()
}

func (s *store) Close() {
	s.close()
}

type storeOpener struct{}

func NewStoreOpener() StoreOpener {
	return &storeOpener{}
}

func (storeOpener) Open(_ context.Context, desc models.ConnectionDescriptor) (Store, error) {
	pool, err := database.SetupScopeDB(desc)
	if err != nil {
		return nil, err
	}
	return &store{
		SyncLogRepository: NewSyncLogRepository(pool),
		LoaderRepository:  NewLoaderRepository(pool),
		close:             pool.Close,
	}, nil
}
