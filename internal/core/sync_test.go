package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/listingdesk/internal/storage"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

func newTestSyncer(remote *fakeRemote, store storage.SnapshotStore) (*Syncer, *State, *DetailCache) {
	state := NewState("cod-acces")
	cache := NewDetailCache()
	return NewSyncer(remote, state, cache, store, "session-1"), state, cache
}

func TestNormalizeOrders_DerivesFound(t *testing.T) {
	orders := NormalizeOrders(sampleOrders())
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "1001", o.ID)
	assert.Equal(t, "Comanda Iunie", o.Name)
	require.Len(t, o.Products, 3)

	p := o.Products[0]
	assert.Equal(t, 4, p.Found)
	assert.Equal(t, "SKU-1|PAL-A", p.UniqueID)
	assert.Equal(t, "SKU-1", p.ID)
	assert.True(t, p.ListingReady)
	assert.Nil(t, p.VerificationReady)

	q := o.Products[1]
	assert.Equal(t, 2, q.Expected)
	assert.Equal(t, 2, q.Found)
	assert.False(t, q.ListingReady)
}

func TestNormalizeOrders_SortsNumericIDs(t *testing.T) {
	orders := NormalizeOrders(map[string][]webhook.ProductRecord{
		"10": nil, "9": nil, "abc": nil, "100": nil,
	})
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"9", "10", "100", "abc"}, ids)
}

func TestSyncOrders_ReplacesAndPersists(t *testing.T) {
	remote := &fakeRemote{orders: sampleOrders()}
	store := storage.NewMemoryStore(storage.Options{})
	s, state, _ := newTestSyncer(remote, store)

	orders, ok := s.SyncOrders(context.Background(), "cod-acces")
	require.True(t, ok)
	require.Len(t, orders, 1)
	assert.Len(t, state.Orders(), 1)

	payload, err := store.Load(context.Background(), "session-1", storage.KindOrders)
	require.NoError(t, err)
	var restored []Order
	require.NoError(t, json.Unmarshal([]byte(payload), &restored))
	assert.Equal(t, 4, restored[0].Products[0].Found)
}

func TestSyncOrders_Failures(t *testing.T) {
	t.Run("empty code", func(t *testing.T) {
		remote := &fakeRemote{orders: sampleOrders()}
		s, _, _ := newTestSyncer(remote, nil)
		_, ok := s.SyncOrders(context.Background(), "  ")
		assert.False(t, ok)
		assert.Zero(t, remote.syncCalls)
	})

	t.Run("remote error keeps previous orders", func(t *testing.T) {
		remote := &fakeRemote{orders: sampleOrders()}
		s, state, _ := newTestSyncer(remote, nil)
		_, ok := s.SyncOrders(context.Background(), "cod")
		require.True(t, ok)

		remote.ordersErr = errors.New("webhook sync: 502 Bad Gateway")
		_, ok = s.SyncOrders(context.Background(), "cod")
		assert.False(t, ok)
		assert.Len(t, state.Orders(), 1)
	})
}

func TestState_ApplyOrdersLastStartedWins(t *testing.T) {
	state := NewState("")
	first := state.nextOrdersSeq()
	second := state.nextOrdersSeq()

	require.True(t, state.applyOrders(second, []Order{{ID: "new"}}))
	assert.False(t, state.applyOrders(first, []Order{{ID: "old"}}))
	assert.Equal(t, "new", state.Orders()[0].ID)
}

func TestFetchDetails_OneCallForUncached(t *testing.T) {
	remote := &fakeRemote{details: map[string]webhook.DetailRecord{
		"A3": goodDetails("Produs trei"),
	}}
	s, _, cache := newTestSyncer(remote, nil)
	cache.Put("A1", ProductDetails{Title: "Produs unu"})
	cache.Put("A2", ProductDetails{Title: "Produs doi"})

	got := s.FetchDetails(context.Background(), []string{"A1", "A2", "A3", "A1"})

	require.Len(t, got, 3)
	require.Len(t, remote.detailCalls, 1)
	assert.Equal(t, []string{"A3"}, remote.detailCalls[0])
	assert.Equal(t, "Produs trei", got["A3"].Title)
	assert.Equal(t, "Produs unu", got["A1"].Title)
	assert.Equal(t, 3, cache.Len())
}

func TestFetchDetails_PlaceholdersAreNotCached(t *testing.T) {
	remote := &fakeRemote{details: map[string]webhook.DetailRecord{}}
	s, _, cache := newTestSyncer(remote, nil)

	got := s.FetchDetails(context.Background(), []string{"MISSING"})
	require.Contains(t, got, "MISSING")
	assert.Equal(t, PlaceholderTitle, got["MISSING"].Title)
	assert.True(t, got["MISSING"].Placeholder)
	assert.Empty(t, got["MISSING"].Images)
	assert.Zero(t, cache.Len())

	remote.detailsErr = errors.New("connection refused")
	got = s.FetchDetails(context.Background(), []string{"X", "Y"})
	assert.Len(t, got, 2)
	assert.True(t, got["X"].Placeholder)
	assert.True(t, got["Y"].Placeholder)
}

func TestFetchDetails_ReturnsCopies(t *testing.T) {
	remote := &fakeRemote{details: map[string]webhook.DetailRecord{"A": goodDetails("Titlu lung ok")}}
	s, _, cache := newTestSyncer(remote, nil)

	got := s.FetchDetails(context.Background(), []string{"A"})
	d := got["A"]
	d.Images[0] = "changed"
	v := d.OtherVersions["ro"]
	v.Title = "changed"
	d.OtherVersions["ro"] = v

	cached, ok := cache.Get("A")
	require.True(t, ok)
	assert.Equal(t, "https://img.example/1.jpg", cached.Images[0])
	assert.NotEqual(t, "changed", cached.OtherVersions["ro"].Title)
}

func TestSaveDetails_StripsQuotesAndCachesOnSuccess(t *testing.T) {
	remote := &fakeRemote{}
	s, _, cache := newTestSyncer(remote, nil)

	d := ProductDetails{
		Title:       `Lampa "Nova" 'LED'`,
		Description: `Descriere "lunga"`,
		OtherVersions: map[string]Version{
			"ro": {Title: `Lampă 'Nova'`, Description: `Text "ro"`},
		},
	}
	require.True(t, s.SaveDetails(context.Background(), "A", d))

	sent := remote.saved["A"]
	assert.Equal(t, "Lampa Nova LED", sent.Title)
	assert.Equal(t, "Descriere lunga", sent.Description)
	assert.Equal(t, "Lampă Nova", sent.OtherVersions["ro"].Title)
	assert.Equal(t, "Text ro", sent.OtherVersions["ro"].Description)

	cached, ok := cache.Get("A")
	require.True(t, ok)
	assert.Equal(t, "Lampa Nova LED", cached.Title)
	assert.Equal(t, `Lampa "Nova" 'LED'`, d.Title, "input must not be modified")
}

func TestSaveDetails_FailureLeavesCache(t *testing.T) {
	remote := &fakeRemote{saveErr: &webhook.APIError{Endpoint: "save", StatusCode: 500, Status: "500"}}
	s, _, cache := newTestSyncer(remote, nil)
	cache.Put("A", ProductDetails{Title: "original"})

	assert.False(t, s.SaveDetails(context.Background(), "A", ProductDetails{Title: "nou"}))
	cached, _ := cache.Get("A")
	assert.Equal(t, "original", cached.Title)
}

func TestNormalizeFinancial(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{"object becomes one record", `{"luna":"iunie","total":10}`, 1, false},
		{"array kept", `[{"a":1},{"a":2}]`, 2, false},
		{"empty array", `[]`, 0, false},
		{"array of scalars", `[1,2]`, 0, true},
		{"null entry", `[{"a":1},null]`, 0, true},
		{"string", `"x"`, 0, true},
		{"number", `12`, 0, true},
		{"empty", ``, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeFinancial([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestFetchFinancial_StoresRecords(t *testing.T) {
	remote := &fakeRemote{financial: json.RawMessage(`{"luna":"iunie"}`)}
	s, state, _ := newTestSyncer(remote, nil)

	records, ok := s.FetchFinancial(context.Background())
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "iunie", state.Financial()[0]["luna"])

	remote.financial = json.RawMessage(`"nope"`)
	_, ok = s.FetchFinancial(context.Background())
	assert.False(t, ok)
	assert.Len(t, state.Financial(), 1)
}
