package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/storage"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// Syncer mediates every read and write against the automation backend for
// one session. None of its methods return errors: failures are logged and
// turned into false results or placeholder records.
type Syncer struct {
	remote    Remote
	state     *State
	cache     *DetailCache
	store     storage.SnapshotStore
	sessionID string
}

// NewSyncer wires a syncer. store may be nil to disable snapshots.
func NewSyncer(remote Remote, state *State, cache *DetailCache, store storage.SnapshotStore, sessionID string) *Syncer {
	return &Syncer{remote: remote, state: state, cache: cache, store: store, sessionID: sessionID}
}

// SyncOrders fetches every order for code, normalizes the records and
// replaces the stored order list wholesale. When several syncs overlap the
// one started last wins.
func (s *Syncer) SyncOrders(ctx context.Context, code string) ([]Order, bool) {
	logger := logging.FromContext(ctx)
	if strings.TrimSpace(code) == "" {
		logger.Warn("order sync skipped", "error", ErrNoAccessCode)
		return nil, false
	}

	seq := s.state.nextOrdersSeq()
	raw, err := s.remote.FetchOrders(ctx, code)
	if err != nil {
		logger.Error("order sync failed", "error", err)
		return nil, false
	}

	orders := NormalizeOrders(raw)
	if !s.state.applyOrders(seq, orders) {
		logger.Debug("order sync superseded by a newer one", "seq", seq)
		return s.state.Orders(), true
	}
	s.persist(ctx, storage.KindOrders, s.state.Orders())

	logger.Debug("orders synced", "orders", len(orders))
	return s.state.Orders(), true
}

// NormalizeOrders converts raw sync records into orders sorted by id.
func NormalizeOrders(raw map[string][]webhook.ProductRecord) []Order {
	orders := make([]Order, 0, len(raw))
	for id, records := range raw {
		o := Order{ID: id, Name: id, Products: make([]Product, 0, len(records))}
		for _, rec := range records {
			if name := fieldString(rec, "ordername", "orderName", "order_name", "numecomanda"); name != "" && o.Name == id {
				o.Name = name
			}
			o.Products = append(o.Products, normalizeProduct(rec))
		}
		orders = append(orders, o)
	}
	slices.SortFunc(orders, func(a, b Order) int { return compareIDs(a.ID, b.ID) })
	return orders
}

// compareIDs orders numeric ids numerically and everything else lexically.
func compareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func normalizeProduct(rec webhook.ProductRecord) Product {
	sku := fieldString(rec, "productsku", "productSku", "sku")
	manifest := fieldString(rec, "manifestsku", "manifestSku")
	ready, _ := field(rec, "listingReady", "listingready", "listing_ready")

	p := Product{
		ID:                        fieldString(rec, "id"),
		UniqueID:                  UniqueKey(sku, manifest),
		ASIN:                      fieldString(rec, "asin"),
		ProductSKU:                sku,
		Title:                     fieldString(rec, "title", "name", "productname"),
		Expected:                  fieldInt(rec, "expected", "expectedquantity"),
		ManifestSKU:               manifest,
		ListingReady:              asBool(ready),
		BNCondition:               fieldInt(rec, "bncondition"),
		VGCondition:               fieldInt(rec, "vgcondition"),
		GCondition:                fieldInt(rec, "gcondition"),
		Broken:                    fieldInt(rec, "broken"),
		StockCode:                 fieldString(rec, "stockcode", "stockCode"),
		UnitWeight:                fieldString(rec, "unitweight", "unitWeight"),
		EstimatedSaleValueWithVAT: fieldString(rec, "estimatedsalevaluewithvat"),
		VerificationReady:         optionalBool(rec, "verificationready", "verificationReady"),
	}
	if p.ID == "" {
		p.ID = sku
	}
	p.Found = p.BNCondition + p.VGCondition + p.GCondition + p.Broken
	return p
}

// FetchDetails resolves details for asins. Cached entries are returned
// directly; the rest are requested in one batched call. ASINs the backend
// does not return, or all of them when the call fails, get a placeholder
// record titled "Eroare" that is not cached.
func (s *Syncer) FetchDetails(ctx context.Context, asins []string) map[string]ProductDetails {
	logger := logging.FromContext(ctx)
	result := make(map[string]ProductDetails, len(asins))

	var missing []string
	for _, asin := range asins {
		if asin == "" {
			continue
		}
		if _, done := result[asin]; done || slices.Contains(missing, asin) {
			continue
		}
		if d, ok := s.cache.Get(asin); ok {
			result[asin] = d
			continue
		}
		missing = append(missing, asin)
	}
	if len(missing) == 0 {
		return result
	}

	records, err := s.remote.FetchDetails(ctx, missing)
	if err != nil {
		logger.Error("bulk detail fetch failed", "asins", len(missing), "error", err)
		records = nil
	}

	for _, asin := range missing {
		rec, ok := records[asin]
		if !ok {
			if err == nil {
				logger.Warn("detail missing from bulk response", "asin", asin)
			}
			result[asin] = placeholderDetails()
			continue
		}
		d := detailsFromRecord(rec)
		s.cache.Put(asin, d)
		result[asin] = d
	}

	logger.Debug("details fetched", "cached", len(result)-len(missing), "requested", len(missing))
	return result
}

// SaveDetails strips quote characters from every title and description,
// writes the record and updates the cache once the write is confirmed.
func (s *Syncer) SaveDetails(ctx context.Context, asin string, details ProductDetails) bool {
	clean := StripQuotes(details)
	if err := s.remote.SaveDetails(ctx, asin, recordFromDetails(clean)); err != nil {
		logging.FromContext(ctx).Error("product save failed", "asin", asin, "error", err)
		return false
	}
	s.cache.Put(asin, clean)
	return true
}

// StripQuotes returns a copy of d with ' and " removed from the top-level
// and per-version titles and descriptions.
func StripQuotes(d ProductDetails) ProductDetails {
	out := d.Clone()
	strip := strings.NewReplacer("'", "", `"`, "")
	out.Title = strip.Replace(out.Title)
	out.Description = strip.Replace(out.Description)
	for k, v := range out.OtherVersions {
		v.Title = strip.Replace(v.Title)
		v.Description = strip.Replace(v.Description)
		out.OtherVersions[k] = v
	}
	return out
}

// FetchFinancial loads the financial report. A single object becomes a
// one-element list; any shape other than an object or an array of objects
// is rejected.
func (s *Syncer) FetchFinancial(ctx context.Context) ([]FinancialRecord, bool) {
	logger := logging.FromContext(ctx)

	raw, err := s.remote.FetchFinancial(ctx)
	if err != nil {
		logger.Error("financial fetch failed", "error", err)
		return nil, false
	}
	records, err := NormalizeFinancial(raw)
	if err != nil {
		logger.Warn("financial payload rejected", "error", err)
		return nil, false
	}

	s.state.SetFinancial(records)
	s.persist(ctx, storage.KindFinancial, records)
	return records, true
}

// NormalizeFinancial accepts an object or an array of objects.
func NormalizeFinancial(raw []byte) ([]FinancialRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty financial payload", ErrInvalidPayload)
	}

	switch raw[0] {
	case '{':
		var obj FinancialRecord
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return []FinancialRecord{obj}, nil
	case '[':
		var list []FinancialRecord
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: financial array must hold objects: %v", ErrInvalidPayload, err)
		}
		for i, rec := range list {
			if rec == nil {
				return nil, fmt.Errorf("%w: financial entry %d is null", ErrInvalidPayload, i)
			}
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: financial payload must be an object or array", ErrInvalidPayload)
	}
}

// persist mirrors a collection to the snapshot store.
func (s *Syncer) persist(ctx context.Context, kind storage.Kind, v any) {
	if s.store == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("snapshot encode failed", "kind", kind, "error", err)
		return
	}
	if err := s.store.Save(ctx, s.sessionID, kind, string(payload)); err != nil {
		logging.FromContext(ctx).Warn("snapshot save failed", "kind", kind, "error", err)
	}
}

func detailsFromRecord(rec webhook.DetailRecord) ProductDetails {
	d := ProductDetails{
		Title:         rec.Title,
		Images:        cloneStrings(rec.Images),
		Description:   rec.Description,
		Features:      rec.Features,
		Brand:         rec.Brand,
		Category:      rec.Category,
		CategoryID:    rec.CategoryID.Value,
		OtherVersions: make(map[string]Version, len(rec.OtherVersions)),
	}
	if d.Images == nil {
		d.Images = []string{}
	}
	if d.Features == nil {
		d.Features = map[string]any{}
	}
	if rec.Price.Valid {
		p := rec.Price.Value
		d.Price = &p
	}
	for k, v := range rec.OtherVersions {
		d.OtherVersions[k] = Version{Title: v.Title, Description: v.Description, Images: cloneStrings(v.Images)}
	}
	return d.Clone()
}

func recordFromDetails(d ProductDetails) webhook.DetailRecord {
	rec := webhook.DetailRecord{
		Title:         d.Title,
		Images:        d.Images,
		Description:   d.Description,
		Features:      d.Features,
		Brand:         d.Brand,
		Category:      d.Category,
		CategoryID:    webhook.NewFlexString(d.CategoryID),
		OtherVersions: make(map[string]webhook.VersionRecord, len(d.OtherVersions)),
	}
	if d.Price != nil {
		rec.Price = webhook.NewFlexString(*d.Price)
	}
	for k, v := range d.OtherVersions {
		rec.OtherVersions[k] = webhook.VersionRecord{Title: v.Title, Description: v.Description, Images: v.Images}
	}
	return rec
}
