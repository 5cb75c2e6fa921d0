package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/adapters/repository/sqlite"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(id string, at time.Time) model.Record {
	return model.Record{
		ID:                   id,
		FirstName:            "Grace",
		Surname:              "Hopper",
		Email:                "grace@example.com",
		Mobile:               "+27 82 000 0000",
		BrandAdvocate:        4.4,
		Investigator:         3.8,
		TeamPlayer:           4,
		LeadershipEthics:     2.67,
		BusinessAcumen:       3.6,
		ProductsServices:     5,
		SalesPlanningSelling: 4.2,
		ExperienceRating:     5,
		Responses: []scoring.Response{
			{QuestionID: "BA1", Rating: 4},
			{QuestionID: "LE3", Rating: 2},
		},
		CreatedAt: at,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	at := time.Date(2025, 5, 4, 10, 30, 0, 123, time.UTC)

	require.NoError(t, store.Insert(ctx, record("s1", at)))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, record("s1", at), got)
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Insert(ctx, record("dup", time.Now())))

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"duplicate id", func() error { return store.Insert(ctx, record("dup", time.Now())) }, repository.ErrDuplicate},
		{"empty id", func() error { return store.Insert(ctx, record("", time.Now())) }, repository.ErrInvalidID},
		{"missing row", func() error { _, err := store.Get(ctx, "ghost"); return err }, repository.ErrNotFound},
		{"zero limit", func() error { _, err := store.List(ctx, 0, 0); return err }, repository.ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestStoreListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// inserted out of order
	for _, i := range []int{3, 0, 2, 1} {
		require.NoError(t, store.Insert(ctx, record(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	page, err := store.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "r1", page[0].ID)
	assert.Equal(t, "r2", page[1].ID)

	empty, err := store.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreDefaultsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	rec := record("now", time.Time{})

	require.NoError(t, store.Insert(ctx, rec))
	got, err := store.Get(ctx, "now")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestStorePersistsToFile(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "checkin.db")

	first, err := sqlite.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, first.Insert(ctx, record("keep", time.Now())))
	require.NoError(t, first.Close())

	second, err := sqlite.Open(ctx, dsn)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", got.Email)
}
