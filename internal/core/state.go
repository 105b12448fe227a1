package core

import (
	"strings"
	"sync"
	"time"
)

// EditBuffer is the working copy of the product open in the detail view.
// It never aliases a cache entry: details are cloned in and cloned out.
type EditBuffer struct {
	UniqueID string
	ASIN     string
	Details  ProductDetails
}

func (b EditBuffer) clone() EditBuffer {
	b.Details = b.Details.Clone()
	return b
}

// ExportData is the last export that passed validation, ready for download.
type ExportData struct {
	OrderID   string
	Mode      ExportMode
	Records   []Record
	CreatedAt time.Time
}

// Navigation is a read-only copy of the navigation fields.
type Navigation struct {
	CurrentView   ViewID
	PreviousView  ViewID
	CommandID     string
	ManifestSKU   string
	ProductID     string
	SearchQuery   string
	ActiveVersion string
	ExportMode    ExportMode
	HasExport     bool
}

// State is the per-session application state. All access goes through
// methods; the mutex makes it safe for concurrent requests of one session.
type State struct {
	mu sync.Mutex

	currentView   ViewID
	previousView  ViewID
	commandID     string
	manifestSKU   string
	productID     string
	searchQuery   string
	activeVersion string
	exportMode    ExportMode
	lastExport    *ExportData
	accessCode    string

	orders    []Order
	financial []FinancialRecord
	edit      *EditBuffer

	// generation identifies the newest navigation.
	generation uint64

	// ordersSeq numbers order fetches; ordersApplied is the newest one stored.
	ordersSeq     uint64
	ordersApplied uint64
}

// NewState returns an empty state with the given access code.
func NewState(accessCode string) *State {
	return &State{accessCode: strings.TrimSpace(accessCode)}
}

// Navigation returns a copy of the navigation fields.
func (s *State) Navigation() Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Navigation{
		CurrentView:   s.currentView,
		PreviousView:  s.previousView,
		CommandID:     s.commandID,
		ManifestSKU:   s.manifestSKU,
		ProductID:     s.productID,
		SearchQuery:   s.searchQuery,
		ActiveVersion: s.activeVersion,
		ExportMode:    s.exportMode,
		HasExport:     s.lastExport != nil,
	}
}

// BeginNavigation starts a transition to target and returns its token.
// PreviousView changes only when target differs from the current view;
// leaving the view also clears the search query. Leaving the product detail
// view discards the edit buffer.
func (s *State) BeginNavigation(target ViewID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target != s.currentView {
		s.previousView = s.currentView
		s.searchQuery = ""
	}
	if target != ViewProductDetail {
		s.edit = nil
		s.activeVersion = OriginVersion
	}
	s.currentView = target
	s.generation++
	return s.generation
}

// IsCurrent reports whether token belongs to the newest navigation.
func (s *State) IsCurrent(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.generation
}

// commit runs fn under the lock when token is still current.
func (s *State) commit(token uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.generation {
		return ErrStaleNavigation
	}
	fn()
	return nil
}

// AccessCode returns the code used for order sync.
func (s *State) AccessCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessCode
}

// SetAccessCode replaces the access code.
func (s *State) SetAccessCode(code string) {
	s.mu.Lock()
	s.accessCode = strings.TrimSpace(code)
	s.mu.Unlock()
}

// SearchQuery returns the active, trimmed search query.
func (s *State) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

// SetSearchQuery stores q trimmed.
func (s *State) SetSearchQuery(q string) {
	s.mu.Lock()
	s.searchQuery = strings.TrimSpace(q)
	s.mu.Unlock()
}

// Orders returns the synced orders. Orders are replaced wholesale and never
// mutated in place, so callers may read the returned values freely.
func (s *State) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// FindOrder returns the synced order with id.
func (s *State) FindOrder(id string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// SetOrders replaces the order list, re-deriving Found for every product.
func (s *State) SetOrders(orders []Order) {
	s.mu.Lock()
	s.orders = withDerivedFound(orders)
	s.mu.Unlock()
}

// nextOrdersSeq reserves a sequence number for an order fetch.
func (s *State) nextOrdersSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ordersSeq++
	return s.ordersSeq
}

// applyOrders stores orders fetched under seq unless a later fetch already
// landed.
func (s *State) applyOrders(seq uint64, orders []Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.ordersApplied {
		return false
	}
	s.ordersApplied = seq
	s.orders = withDerivedFound(orders)
	return true
}

func withDerivedFound(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		products := make([]Product, len(o.Products))
		for j, p := range o.Products {
			p.Found = p.BNCondition + p.VGCondition + p.GCondition + p.Broken
			products[j] = p
		}
		o.Products = products
		out[i] = o
	}
	return out
}

// Financial returns the financial records.
func (s *State) Financial() []FinancialRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FinancialRecord, len(s.financial))
	copy(out, s.financial)
	return out
}

// SetFinancial replaces the financial records.
func (s *State) SetFinancial(records []FinancialRecord) {
	s.mu.Lock()
	s.financial = records
	s.mu.Unlock()
}

// EditBuffer returns a copy of the edit buffer.
func (s *State) EditBuffer() (EditBuffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return EditBuffer{}, false
	}
	return s.edit.clone(), true
}

// updateEdit applies fn to the live edit buffer.
func (s *State) updateEdit(fn func(b *EditBuffer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return ErrNoEditBuffer
	}
	return fn(s.edit)
}

// ActiveVersion returns the selected language variant key.
func (s *State) ActiveVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeVersion
}

// LastExport returns the downloadable export, if any.
func (s *State) LastExport() (ExportData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastExport == nil {
		return ExportData{}, false
	}
	return *s.lastExport, true
}

// ClearLastExport drops the downloadable export.
func (s *State) ClearLastExport() {
	s.mu.Lock()
	s.lastExport = nil
	s.mu.Unlock()
}

// Restore loads persisted collections into a fresh state.
func (s *State) Restore(orders []Order, financial []FinancialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if orders != nil {
		s.orders = withDerivedFound(orders)
	}
	if financial != nil {
		s.financial = financial
	}
}
