package core

// validation.go holds the per-product gate of the preliminary export.
//
// Every rule runs; a product collects all of its failures so the review
// table can show them at once. Any failure anywhere blocks the download of
// the whole export.

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/listingdesk/internal/codes"
)

// ValidationError is one failed rule for one field.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validation messages, shown verbatim in the export review table.
const (
	MsgPriceNotPositive   = "Prețul trebuie să fie mai mare decât 0"
	MsgNoImages           = "Produsul nu are nicio imagine"
	MsgStockCodeLength    = "Codul de stoc trebuie să aibă exact 12 caractere"
	MsgTitleMissing       = "Titlul lipsește"
	MsgTitleTooShort      = "Titlul are mai puțin de 10 caractere"
	MsgTitlePlaceholder   = "Titlul conține cuvântul „titlu”"
	MsgTitleRejected      = "Titlul este „nu!”"
	MsgTitleQuotes        = "Titlul conține ghilimele, apostrof sau backtick"
	MsgDescriptionMissing = "Descrierea lipsește"
	MsgDescriptionShort   = "Descrierea are mai puțin de 10 caractere"
	MsgDescriptionEnglish = "Descrierea pare să fie în engleză"
)

const minTextLength = 10

// ExportCandidate is the data the gate looks at for one product.
type ExportCandidate struct {
	Price       *string
	Images      []string
	StockCode   string
	Title       string
	Description string
}

// ValidateCandidate runs every rule and returns the failures in rule order.
func ValidateCandidate(c ExportCandidate) []ValidationError {
	var errs []ValidationError
	add := func(field, value, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if !ParsePrice(c.Price).IsPositive() {
		v := ""
		if c.Price != nil {
			v = *c.Price
		}
		add("price", v, MsgPriceNotPositive)
	}

	if !hasImage(c.Images) {
		add("images", "", MsgNoImages)
	}

	if utf8.RuneCountInString(c.StockCode) != codes.DefaultStockCodeLength {
		add("stockcode", c.StockCode, MsgStockCodeLength)
	}

	for _, e := range validateTitle(c.Title) {
		add("title", c.Title, e)
	}
	for _, e := range validateDescription(c.Description) {
		add("description", c.Description, e)
	}

	return errs
}

func hasImage(images []string) bool {
	for _, img := range images {
		if strings.TrimSpace(img) != "" {
			return true
		}
	}
	return false
}

func validateTitle(title string) []string {
	if strings.TrimSpace(title) == "" {
		return []string{MsgTitleMissing}
	}
	var msgs []string
	lower := strings.ToLower(title)
	if utf8.RuneCountInString(title) < minTextLength {
		msgs = append(msgs, MsgTitleTooShort)
	}
	if strings.Contains(lower, "titlu") {
		msgs = append(msgs, MsgTitlePlaceholder)
	}
	if lower == "nu!" {
		msgs = append(msgs, MsgTitleRejected)
	}
	if strings.ContainsAny(title, "`\"'") {
		msgs = append(msgs, MsgTitleQuotes)
	}
	return msgs
}

func validateDescription(desc string) []string {
	if strings.TrimSpace(desc) == "" {
		return []string{MsgDescriptionMissing}
	}
	var msgs []string
	if utf8.RuneCountInString(desc) < minTextLength {
		msgs = append(msgs, MsgDescriptionShort)
	}
	if LooksEnglish(desc) {
		msgs = append(msgs, MsgDescriptionEnglish)
	}
	return msgs
}

// Messages flattens validation errors into their messages.
func Messages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}
