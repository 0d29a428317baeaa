package conditions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pielsanaia/pielsana/internal/cache"
	"github.com/pielsanaia/pielsana/internal/skinapi"
	skinmock "github.com/pielsanaia/pielsana/internal/skinapi/mock"
	"github.com/pielsanaia/pielsana/internal/store"
	"github.com/pielsanaia/pielsana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeReader struct {
	records map[string]*models.ConditionInfo
	err     error
}

func (f *fakeReader) GetCondition(_ context.Context, slug string) (*models.ConditionInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if info, ok := f.records[slug]; ok {
		return info, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeReader) ListConditions(context.Context) ([]*models.ConditionInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.ConditionInfo
	for _, info := range f.records {
		out = append(out, info)
	}
	return out, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Delete(context.Context, string) error { return nil }
func (c *memCache) Ping(context.Context) error           { return nil }
func (c *memCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 0, cache.ErrCacheDisabled
}

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

// --- Lookup ---

func TestLookup_CatalogByAlias(t *testing.T) {
	svc := NewService(nil, newCatalog(t), nil, nil, time.Hour)

	info, err := svc.Lookup(context.Background(), "Rosácea")
	require.NoError(t, err)
	assert.Equal(t, "rosacea", info.Slug)
	assert.Equal(t, models.ConditionSourceStatic, info.Source)
}

func TestLookup_UnknownWithoutRemote(t *testing.T) {
	svc := NewService(nil, newCatalog(t), nil, nil, time.Hour)

	_, err := svc.Lookup(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_EmptySlug(t *testing.T) {
	remote := &skinmock.MockClient{}
	svc := NewService(nil, newCatalog(t), remote, nil, time.Hour)

	_, err := svc.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, remote.Calls())
}

func TestLookup_StoreTakesPrecedence(t *testing.T) {
	st := &fakeReader{records: map[string]*models.ConditionInfo{
		"acne": {Slug: "acne", Title: "Acné (curado)", Source: models.ConditionSourceStore},
	}}
	svc := NewService(st, newCatalog(t), nil, nil, time.Hour)

	info, err := svc.Lookup(context.Background(), "acné")
	require.NoError(t, err)
	assert.Equal(t, "Acné (curado)", info.Title)
	assert.Equal(t, models.ConditionSourceStore, info.Source)
}

func TestLookup_StoreErrorFallsBackToCatalog(t *testing.T) {
	st := &fakeReader{err: errors.New("connection refused")}
	svc := NewService(st, newCatalog(t), nil, nil, time.Hour)

	info, err := svc.Lookup(context.Background(), "acne")
	require.NoError(t, err)
	assert.Equal(t, models.ConditionSourceStatic, info.Source)
}

func TestLookup_RemoteUsesBackendSlugAndCaches(t *testing.T) {
	remote := &skinmock.MockClient{
		GetConditionFunc: func(_ context.Context, slug string) (*models.ConditionInfo, error) {
			return &models.ConditionInfo{Slug: slug, Title: "Dermatitis", Source: models.ConditionSourceRemote}, nil
		},
	}
	ca := &memCache{data: make(map[string][]byte)}
	svc := NewService(nil, newCatalog(t), remote, ca, time.Hour)

	info, err := svc.Lookup(context.Background(), "Dermatitis")
	require.NoError(t, err)
	assert.Equal(t, "dermatitis", info.Slug)
	assert.Equal(t, models.ConditionSourceRemote, info.Source)

	_, err = svc.Lookup(context.Background(), "dermatitis")
	require.NoError(t, err)

	calls := remote.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "dermatitis", calls[0].Arg)
	assert.Contains(t, ca.data, cache.ConditionKey("dermatitis"))
}

func TestLookup_RemoteFailureIsNotFound(t *testing.T) {
	remote := skinmock.NewFailingClient(skinapi.ErrBackendUnreachable)
	svc := NewService(nil, newCatalog(t), remote, nil, time.Hour)

	_, err := svc.Lookup(context.Background(), "eczema")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookup_CatalogHitSkipsRemote(t *testing.T) {
	remote := &skinmock.MockClient{}
	svc := NewService(nil, newCatalog(t), remote, nil, time.Hour)

	_, err := svc.Lookup(context.Background(), "lunares")
	require.NoError(t, err)
	assert.Empty(t, remote.Calls())
}

// --- List ---

func TestList_CatalogOnly(t *testing.T) {
	svc := NewService(nil, newCatalog(t), nil, nil, time.Hour)

	list := svc.List(context.Background())
	assert.Len(t, list, 6)
}

func TestList_MergesCurated(t *testing.T) {
	st := &fakeReader{records: map[string]*models.ConditionInfo{
		"acne":       {Slug: "acne", Title: "Acné (curado)"},
		"vitiligo":   {Slug: "vitiligo", Title: "Vitíligo"},
		"dermatitis": {Slug: "dermatitis", Title: "Dermatitis"},
	}}
	svc := NewService(st, newCatalog(t), nil, nil, time.Hour)

	list := svc.List(context.Background())
	require.Len(t, list, 8)
	assert.Equal(t, "Acné (curado)", list[0].Title)
	assert.Equal(t, "dermatitis", list[6].Slug)
	assert.Equal(t, "vitiligo", list[7].Slug)
}

func TestList_StoreErrorKeepsCatalog(t *testing.T) {
	st := &fakeReader{err: errors.New("down")}
	svc := NewService(st, newCatalog(t), nil, nil, time.Hour)

	assert.Len(t, svc.List(context.Background()), 6)
}
