package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// ReadyToggle flips the ready-to-list flag of one product, one pallet or a
// whole order. Empty Pallet and ASIN address the whole order.
type ReadyToggle struct {
	OrderID string
	Pallet  string
	ASIN    string
	Ready   bool
}

// ASINChange re-attaches a received product to another ASIN.
type ASINChange struct {
	OrderID     string
	ManifestSKU string
	ProductSKU  string
	OldASIN     string
	NewASIN     string
}

// EditForm is the submitted content of the product editor for one version.
// Brand, Category, CategoryID and Price belong to the origin record and are
// ignored for other versions. A nil Price leaves the price unchanged.
type EditForm struct {
	Version     string
	Title       string
	Description string
	Brand       string
	Category    string
	CategoryID  string
	Price       *string
}

// Actions are the explicit user operations of a session. Automation calls
// share one AutomationLimiter across sessions.
type Actions struct {
	state   *State
	syncer  *Syncer
	limiter *AutomationLimiter
}

// NewActions wires actions over a session's state and syncer.
func NewActions(state *State, syncer *Syncer, limiter *AutomationLimiter) *Actions {
	if limiter == nil {
		limiter = NewAutomationLimiter(0, 0)
	}
	return &Actions{state: state, syncer: syncer, limiter: limiter}
}

// SetAccessCode replaces the code used for order sync.
func (a *Actions) SetAccessCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrNoAccessCode
	}
	a.state.SetAccessCode(code)
	return nil
}

// ToggleReady sends the flag change and resyncs orders so the new flag is
// visible. A failed resync after a successful toggle is only logged.
func (a *Actions) ToggleReady(ctx context.Context, t ReadyToggle) error {
	if t.OrderID == "" {
		return fmt.Errorf("%w: ready toggle needs an order id", ErrInvalidPayload)
	}
	err := a.syncer.remote.SetReady(ctx, webhook.ReadyRequest{
		OrderID:        t.OrderID,
		Pallet:         t.Pallet,
		ASIN:           t.ASIN,
		SetReadyStatus: t.Ready,
	})
	if err != nil {
		return fmt.Errorf("toggle ready: %w", err)
	}
	a.resync(ctx)
	return nil
}

// UpdateASIN replaces a product's ASIN and resyncs orders.
func (a *Actions) UpdateASIN(ctx context.Context, c ASINChange) error {
	c.NewASIN = strings.TrimSpace(c.NewASIN)
	switch {
	case c.OrderID == "" || c.ProductSKU == "":
		return fmt.Errorf("%w: asin update needs an order id and a product sku", ErrInvalidPayload)
	case c.NewASIN == "":
		return fmt.Errorf("%w: new asin is empty", ErrInvalidPayload)
	case c.NewASIN == c.OldASIN:
		return fmt.Errorf("%w: new asin equals the old one", ErrInvalidPayload)
	}

	err := a.syncer.remote.UpdateASIN(ctx, webhook.ASINUpdateRequest{
		ProductSKU:  c.ProductSKU,
		OldASIN:     c.OldASIN,
		NewASIN:     c.NewASIN,
		OrderID:     c.OrderID,
		ManifestSKU: c.ManifestSKU,
	})
	if err != nil {
		return fmt.Errorf("update asin: %w", err)
	}
	a.resync(ctx)
	return nil
}

func (a *Actions) resync(ctx context.Context) {
	if _, ok := a.syncer.SyncOrders(ctx, a.state.AccessCode()); !ok {
		logging.FromContext(ctx).Warn("order resync after action failed")
	}
}

// SetActiveVersion selects the language variant shown in the editor.
func (a *Actions) SetActiveVersion(key string) error {
	return a.state.updateEdit(func(b *EditBuffer) error {
		if _, ok := b.Details.Version(key); !ok {
			return fmt.Errorf("%w: version %q", ErrNotFound, key)
		}
		a.state.activeVersion = key
		return nil
	})
}

// ApplyEdit copies a submitted form into the edit buffer. Nothing is sent
// to the backend until SaveEdits.
func (a *Actions) ApplyEdit(f EditForm) error {
	return a.state.updateEdit(func(b *EditBuffer) error {
		v, ok := b.Details.Version(f.Version)
		if !ok {
			return fmt.Errorf("%w: version %q", ErrNotFound, f.Version)
		}
		v.Title = strings.TrimSpace(f.Title)
		v.Description = strings.TrimSpace(f.Description)
		b.Details.setVersion(f.Version, v)

		if f.Version == OriginVersion {
			b.Details.Brand = strings.TrimSpace(f.Brand)
			b.Details.Category = strings.TrimSpace(f.Category)
			b.Details.CategoryID = strings.TrimSpace(f.CategoryID)
			if f.Price != nil {
				p := strings.TrimSpace(*f.Price)
				b.Details.Price = &p
			}
		}
		return nil
	})
}

// AddImage appends url to a version's images. The cap of MaxImages is
// enforced here only; records loaded with more images are left alone.
func (a *Actions) AddImage(version, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("%w: empty image url", ErrInvalidPayload)
	}
	return a.state.updateEdit(func(b *EditBuffer) error {
		v, ok := b.Details.Version(version)
		if !ok {
			return fmt.Errorf("%w: version %q", ErrNotFound, version)
		}
		if len(v.Images) >= MaxImages {
			return fmt.Errorf("%w: at most %d per version", ErrTooManyImages, MaxImages)
		}
		v.Images = append(cloneStrings(v.Images), url)
		b.Details.setVersion(version, v)
		return nil
	})
}

// RemoveImage drops the image at index from a version.
func (a *Actions) RemoveImage(version string, index int) error {
	return a.state.updateEdit(func(b *EditBuffer) error {
		v, ok := b.Details.Version(version)
		if !ok {
			return fmt.Errorf("%w: version %q", ErrNotFound, version)
		}
		if index < 0 || index >= len(v.Images) {
			return fmt.Errorf("%w: image index %d out of range", ErrInvalidPayload, index)
		}
		images := make([]string, 0, len(v.Images)-1)
		images = append(images, v.Images[:index]...)
		v.Images = append(images, v.Images[index+1:]...)
		b.Details.setVersion(version, v)
		return nil
	})
}

// SaveEdits writes the edit buffer to the backend. On success the buffer
// takes the quote-stripped form that was stored.
func (a *Actions) SaveEdits(ctx context.Context) error {
	buf, ok := a.state.EditBuffer()
	if !ok {
		return ErrNoEditBuffer
	}
	if buf.Details.Placeholder {
		return fmt.Errorf("%w: details for %s never loaded", ErrSaveFailed, buf.ASIN)
	}
	if !a.syncer.SaveDetails(ctx, buf.ASIN, buf.Details) {
		return ErrSaveFailed
	}

	saved := StripQuotes(buf.Details)
	return a.state.updateEdit(func(b *EditBuffer) error {
		if b.UniqueID == buf.UniqueID {
			b.Details = saved
		}
		return nil
	})
}

// GenerateTitle asks the title automation for a new title based on the
// active version and up to five competitor titles, and writes it into the
// active version of the edit buffer.
func (a *Actions) GenerateTitle(ctx context.Context, competitors []string) (string, error) {
	buf, ok := a.state.EditBuffer()
	if !ok {
		return "", ErrNoEditBuffer
	}
	active := a.state.ActiveVersion()
	v, ok := buf.Details.Version(active)
	if !ok {
		active = OriginVersion
		v, _ = buf.Details.Version(active)
	}

	req := webhook.TitleRequest{
		ASIN:        buf.ASIN,
		Title:       v.Title,
		Description: v.Description,
		Competitors: nonEmpty(competitors),
	}
	if len(req.Competitors) > webhook.MaxCompetitors {
		req.Competitors = req.Competitors[:webhook.MaxCompetitors]
	}

	var title string
	err := a.limiter.Do(ctx, "title", func(ctx context.Context) error {
		var err error
		title, err = a.syncer.remote.GenerateTitle(ctx, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}

	err = a.state.updateEdit(func(b *EditBuffer) error {
		if b.UniqueID != buf.UniqueID {
			return ErrStaleNavigation
		}
		cur, _ := b.Details.Version(active)
		cur.Title = title
		b.Details.setVersion(active, cur)
		return nil
	})
	return title, err
}

// Translate triggers the translation automation for the open product. The
// cached details are dropped so the next visit picks up the new variant.
func (a *Actions) Translate(ctx context.Context, language string) error {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return fmt.Errorf("%w: language is empty", ErrInvalidPayload)
	}
	buf, ok := a.state.EditBuffer()
	if !ok {
		return ErrNoEditBuffer
	}

	err := a.limiter.Do(ctx, "translate", func(ctx context.Context) error {
		return a.syncer.remote.Translate(ctx, buf.ASIN, language)
	})
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	a.syncer.cache.Delete(buf.ASIN)
	return nil
}

// Competition looks up competing listings for the open product.
func (a *Actions) Competition(ctx context.Context) (map[string]any, error) {
	buf, ok := a.state.EditBuffer()
	if !ok {
		return nil, ErrNoEditBuffer
	}

	var out map[string]any
	err := a.limiter.Do(ctx, "competition", func(ctx context.Context) error {
		var err error
		out, err = a.syncer.remote.Competition(ctx, buf.ASIN)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("competition: %w", err)
	}
	return out, nil
}

// Import uploads a bulk import pair. Both files are required and must be
// non-empty.
func (a *Actions) Import(ctx context.Context, zip, pdf webhook.File) error {
	if zip.Reader == nil || zip.Size <= 0 || pdf.Reader == nil || pdf.Size <= 0 {
		return ErrMissingFiles
	}
	err := a.limiter.Do(ctx, "import", func(ctx context.Context) error {
		return a.syncer.remote.Upload(ctx, zip, pdf)
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}
