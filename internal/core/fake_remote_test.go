package core

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// fakeRemote is an in-memory Remote. Unset funcs fall back to canned data.
type fakeRemote struct {
	mu sync.Mutex

	orders        map[string][]webhook.ProductRecord
	ordersErr     error
	details       map[string]webhook.DetailRecord
	detailsErr    error
	saveErr       error
	financial     json.RawMessage
	financialErr  error
	title         string
	automationErr error

	detailCalls [][]string
	saved       map[string]webhook.DetailRecord
	ready       []webhook.ReadyRequest
	asinUpdates []webhook.ASINUpdateRequest
	titleReqs   []webhook.TitleRequest
	translated  []string
	uploads     int
	syncCalls   int
}

var _ Remote = (*fakeRemote)(nil)

func (f *fakeRemote) FetchOrders(_ context.Context, _ string) (map[string][]webhook.ProductRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls++
	return f.orders, f.ordersErr
}

func (f *fakeRemote) FetchDetails(_ context.Context, asins []string) (map[string]webhook.DetailRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, append([]string(nil), asins...))
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	out := make(map[string]webhook.DetailRecord)
	for _, a := range asins {
		if d, ok := f.details[a]; ok {
			out[a] = d
		}
	}
	return out, nil
}

func (f *fakeRemote) SaveDetails(_ context.Context, asin string, d webhook.DetailRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.saved == nil {
		f.saved = make(map[string]webhook.DetailRecord)
	}
	f.saved[asin] = d
	return nil
}

func (f *fakeRemote) SetReady(_ context.Context, req webhook.ReadyRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = append(f.ready, req)
	return f.automationErr
}

func (f *fakeRemote) UpdateASIN(_ context.Context, req webhook.ASINUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asinUpdates = append(f.asinUpdates, req)
	return f.automationErr
}

func (f *fakeRemote) GenerateTitle(_ context.Context, req webhook.TitleRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titleReqs = append(f.titleReqs, req)
	return f.title, f.automationErr
}

func (f *fakeRemote) Translate(_ context.Context, asin, language string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translated = append(f.translated, asin+":"+language)
	return f.automationErr
}

func (f *fakeRemote) Competition(_ context.Context, asin string) (map[string]any, error) {
	if f.automationErr != nil {
		return nil, f.automationErr
	}
	return map[string]any{"asin": asin, "offers": float64(3)}, nil
}

func (f *fakeRemote) FetchFinancial(context.Context) (json.RawMessage, error) {
	return f.financial, f.financialErr
}

func (f *fakeRemote) Upload(_ context.Context, zip, pdf webhook.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = io.Copy(io.Discard, zip.Reader)
	_, _ = io.Copy(io.Discard, pdf.Reader)
	f.uploads++
	return f.automationErr
}

func (f *fakeRemote) detailCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.detailCalls)
}

// sampleOrders is one order with two pallets.
func sampleOrders() map[string][]webhook.ProductRecord {
	return map[string][]webhook.ProductRecord{
		"1001": {
			{
				"productsku": "SKU-1", "manifestsku": "PAL-A", "asin": "B000000001",
				"title": "Lampa de birou", "expected": float64(3),
				"bncondition": float64(2), "vgcondition": float64(1), "gcondition": float64(0), "broken": float64(1),
				"listingReady": true, "stockcode": "ABCDEFGHIJKL", "unitweight": "1.2",
				"ordername": "Comanda Iunie",
			},
			{
				"productsku": "SKU-2", "manifestsku": "PAL-A", "asin": "B000000002",
				"title": "Cana termica", "expected": "2", "bncondition": "2",
				"listingReady": "false",
			},
			{
				"productsku": "SKU-3", "manifestsku": "PAL-B", "asin": "B000000003",
				"title": "Rucsac", "expected": float64(1), "bncondition": float64(1),
				"listingReady": true,
			},
		},
	}
}

// goodDetails is a record that passes every export rule.
func goodDetails(title string) webhook.DetailRecord {
	return webhook.DetailRecord{
		Title:       title,
		Images:      []string{"https://img.example/1.jpg"},
		Description: "A durable desk lamp for the office",
		Brand:       "Lumina",
		Price:       webhook.NewFlexString("100"),
		Category:    "Casa",
		CategoryID:  webhook.NewFlexString("42"),
		OtherVersions: map[string]webhook.VersionRecord{
			"ro": {
				Title:       title + " pentru birou",
				Description: "Lampă rezistentă, potrivită pentru birou și acasă",
				Images:      []string{"https://img.example/ro.jpg"},
			},
		},
	}
}
