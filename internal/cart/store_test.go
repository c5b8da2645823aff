package cart

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddSameLineTwiceIncrements(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t, storage.NewMemory(), nil)

	require.NoError(t, s.AddItem(ctx, product("a", 100), "", ""))
	assert.True(t, decimal.NewFromInt(100).Equal(s.TotalPrice()))

	require.NoError(t, s.AddItem(ctx, product("a", 100), "", ""))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(200).Equal(s.TotalPrice()))
	assert.Equal(t, 2, s.TotalCount())
}

func TestStore_DifferentSizeIsDifferentLine(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t, storage.NewMemory(), nil)

	require.NoError(t, s.AddItem(ctx, product("a", 100), "M", ""))
	require.NoError(t, s.AddItem(ctx, product("a", 100), "L", ""))
	require.NoError(t, s.AddItem(ctx, product("a", 100), "L", "blue"))

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "M", items[0].Size)
	assert.Equal(t, "L", items[1].Size)
	assert.Equal(t, "blue", items[2].Color)
	assert.Equal(t, 3, s.TotalCount())
}

func TestStore_AddItemRejectsProductWithoutID(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), nil)

	err := s.AddItem(context.Background(), domain.Product{Name: "ghost"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidProduct)
	assert.Empty(t, s.Items())
}

func TestStore_SetQuantity(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t, storage.NewMemory(), nil)
	require.NoError(t, s.AddItem(ctx, product("a", 50), "", ""))
	require.NoError(t, s.AddItem(ctx, product("b", 20), "", ""))

	s.SetQuantity(ctx, "a", 4, "", "")
	assert.Equal(t, 5, s.TotalCount())
	assert.True(t, decimal.NewFromInt(220).Equal(s.TotalPrice()))

	s.SetQuantity(ctx, "a", 0, "", "")
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ProductID)

	s.SetQuantity(ctx, "b", -3, "", "")
	assert.Empty(t, s.Items())

	// absent line
	s.SetQuantity(ctx, "zzz", 7, "", "")
	assert.Empty(t, s.Items())
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	bus := events.NewLocal()
	var published []events.Event
	bus.Subscribe(func(_ context.Context, e events.Event) { published = append(published, e) })
	s := setupStore(t, mem, bus)
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	before := s.Items()
	published = nil

	s.RemoveItem(ctx, "missing", "", "")

	assert.Equal(t, before, s.Items())
	assert.Empty(t, published)
}

func TestStore_ClearDeletesPersistedCopy(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := setupStore(t, mem, nil)
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	_, err := mem.Get(ctx, domain.GuestCartKey)
	require.NoError(t, err)

	s.Clear(ctx)

	assert.Empty(t, s.Items())
	_, err = mem.Get(ctx, domain.GuestCartKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_RemoveOrderedKeepsLaterLines(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := setupStore(t, mem, nil)
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	key, ordered := s.Active()

	// added while the order was in flight
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	require.NoError(t, s.AddItem(ctx, product("b", 5), "", ""))

	s.RemoveOrdered(ctx, key, ordered)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "b", items[1].ProductID)

	stored := NewPersistence(mem, logger.Discard()).Load(ctx, domain.GuestCartKey)
	require.Len(t, stored, 2)
	assert.Equal(t, 1, stored[0].Quantity)
	assert.Equal(t, "b", stored[1].ProductID)
}

func TestStore_RemoveOrderedEmptiesCart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := setupStore(t, mem, nil)
	require.NoError(t, s.AddItem(ctx, product("a", 10), "M", "red"))
	key, ordered := s.Active()

	s.RemoveOrdered(ctx, key, ordered)

	assert.Empty(t, s.Items())
	_, err := mem.Get(ctx, domain.GuestCartKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_RemoveOrderedAfterIdentitySwitch(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := setupStore(t, mem, nil)

	s.SwitchIdentity(ctx, alice())
	require.NoError(t, s.AddItem(ctx, product("x", 7), "", ""))

	s.SwitchIdentity(ctx, bob())
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	require.NoError(t, s.AddItem(ctx, product("b", 5), "", ""))
	key, ordered := s.Active()
	s.SetQuantity(ctx, "b", 3, "", "")

	s.SwitchIdentity(ctx, alice())
	s.RemoveOrdered(ctx, key, ordered)

	// alice's cart is untouched
	assert.Equal(t, alice().CartKey(), s.Namespace())
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "x", s.Items()[0].ProductID)

	// bob keeps only what was added after the order was taken
	stored := NewPersistence(mem, logger.Discard()).Load(ctx, bob().CartKey())
	require.Len(t, stored, 1)
	assert.Equal(t, "b", stored[0].ProductID)
	assert.Equal(t, 2, stored[0].Quantity)
}

func TestStore_WritesThroughToNamespace(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := setupStore(t, mem, nil)
	s.SwitchIdentity(ctx, bob())
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))

	reloaded := NewPersistence(mem, logger.Discard()).Load(ctx, "cart_bob@example.com")
	require.Len(t, reloaded, 1)
	assert.Equal(t, "a", reloaded[0].ProductID)
	assert.Equal(t, "cart_bob@example.com", s.Namespace())
}

func TestStore_LoginShowsOnlyOwnCart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := setupStore(t, mem, nil)

	// guest adds A twice
	require.NoError(t, s.AddItem(ctx, product("a", 100), "", ""))
	require.NoError(t, s.AddItem(ctx, product("a", 100), "", ""))
	assert.True(t, decimal.NewFromInt(200).Equal(s.TotalPrice()))

	s.SwitchIdentity(ctx, bob())
	assert.Empty(t, s.Items())
	assert.Equal(t, "cart_bob@example.com", s.Namespace())

	require.NoError(t, s.AddItem(ctx, product("b", 5), "", ""))

	s.SwitchIdentity(ctx, alice())
	assert.Empty(t, s.Items())

	s.SwitchIdentity(ctx, bob())
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ProductID)

	// guest cart survives untouched
	s.SwitchIdentity(ctx, domain.Guest)
	items = s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStore_CorruptNamespaceLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, "cart_bob@example.com", "not json"))
	s := setupStore(t, mem, nil)

	s.SwitchIdentity(ctx, bob())

	assert.Empty(t, s.Items())
	assert.Zero(t, s.TotalCount())
}

func TestStore_PersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	mem := &failingStore{Memory: storage.NewMemory(), failWrites: true}
	s := setupStore(t, mem, nil)

	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	assert.Equal(t, 1, s.TotalCount())

	s.Clear(ctx)
	assert.Zero(t, s.TotalCount())
}

func TestStore_NoticeClearsItself(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, NewPersistence(storage.NewMemory(), logger.Discard()), nil, Options{NoticeTTL: 20 * time.Millisecond}, logger.Discard())
	defer s.Close()

	assert.Nil(t, s.Notice())
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))
	require.NoError(t, s.AddItem(ctx, product("a", 10), "", ""))

	n := s.Notice()
	require.NotNil(t, n)
	assert.Equal(t, NoticeMessage, n.Message)
	assert.Equal(t, "a", n.ProductID)
	assert.Equal(t, 2, n.Count)

	assert.Eventually(t, func() bool { return s.Notice() == nil }, time.Second, 5*time.Millisecond)
}

func TestStore_ReloadsOnRemoteCartEvent(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	bus := events.NewLocal()
	tabA := NewStore(ctx, NewPersistence(mem, logger.Discard()), bus, Options{Origin: "tab-a", NoticeTTL: time.Hour}, logger.Discard())
	defer tabA.Close()
	tabB := NewStore(ctx, NewPersistence(mem, logger.Discard()), bus, Options{Origin: "tab-b", NoticeTTL: time.Hour}, logger.Discard())
	defer tabB.Close()

	require.NoError(t, tabA.AddItem(ctx, product("a", 10), "", ""))
	assert.Equal(t, 1, tabB.TotalCount())

	tabB.SetQuantity(ctx, "a", 5, "", "")
	assert.Equal(t, 5, tabA.TotalCount())

	// other namespaces are ignored
	tabB.SwitchIdentity(ctx, bob())
	require.NoError(t, tabB.AddItem(ctx, product("z", 1), "", ""))
	assert.Equal(t, 5, tabA.TotalCount())
}
