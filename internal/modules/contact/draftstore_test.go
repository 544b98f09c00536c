package contact

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/georgemunganga/exhibition-crm/internal/modules/photo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft(t *testing.T) Draft {
	t.Helper()
	d := SetFields(NewDraft("u1"), Fields{Name: "Alex", BusinessType: BusinessCafeRestaurant, Priority: 7})
	d = AddContactPhoto(d, []byte{0xff, 0xd8, 0xff}, photo.TagBusinessCard)
	d = SetForm(d, ProductForm{Kind: KindOther, Custom: "Bar stool", Name: "Tall"})
	d, err := AddProduct(d)
	require.NoError(t, err)
	return d
}

func TestRedisDraftStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisDraftStore(client, time.Hour)
	ctx := context.Background()
	d := sampleDraft(t)

	require.NoError(t, store.Save(ctx, d))
	assert.Equal(t, time.Hour, mr.TTL("draft:"+d.ID))

	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Name, got.Name)
	assert.Equal(t, d.NextProductID, got.NextProductID)
	require.Len(t, got.Pending, 1)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got.Pending[0].Data)
	assert.Equal(t, "Bar stool", got.Products[0].Type.Resolve())

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	require.NoError(t, store.Save(ctx, d))
	require.NoError(t, store.Delete(ctx, d.ID))
	_, err = store.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMemoryDraftStore(t *testing.T) {
	store := NewMemoryDraftStore(time.Hour).(*memoryDraftStore)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	d := sampleDraft(t)

	require.NoError(t, store.Save(ctx, d))
	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Name, got.Name)

	// returned drafts are copies
	got.Products[0].Name = "changed"
	again, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tall", again.Products[0].Name)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
