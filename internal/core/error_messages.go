package core

// # Error Codes Reference
//
// MapError turns technical errors into Romanian messages with a code that
// users can quote to support. Codes by family:
//
//	NET001 - backend unreachable          "connection refused", "no such host"
//	NET002 - backend timed out            "deadline exceeded", "timeout"
//	NET003 - automation reported failure  "webhook status not success"
//	NET004 - unreadable response          "webhook response malformed"
//	NET005 - endpoint not configured      "webhook endpoint not configured"
//	NET006 - other backend error          "webhook "
//
//	VAL001 - export blocked               "export blocked"
//	VAL002 - image cap reached            "too many images"
//	VAL003 - import files missing         "missing import files", "upload file missing"
//	VAL004 - invalid input                "invalid payload"
//	VAL005 - nothing to export            "export has no rows"
//	VAL006 - access code missing          "access code not set"
//
//	NAV001 - incomplete data              "incomplete data"
//	NAV002 - record not found             "record not found"
//	NAV003 - no product open              "no product open"
//	NAV004 - unknown view                 "unknown view"
//	NAV005 - navigation superseded        "stale navigation"
//
//	SYS001 - internal error               "internal error"
//	SYS002 - request cancelled            "context canceled"
//	SYS003 - save or sync failed          "product save failed", "order sync failed"
//
//	RATE001 - throttled                   "rate limit", "too many concurrent automations"
//
//	ERR000 - fallback
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones. For
// ERR000 check the logs for the technical error.

import (
	"fmt"
	"strings"
)

// UserMessage is what the UI shows for an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgUnreachable = UserMessage{
		Message: "Serviciul de automatizare nu poate fi contactat",
		Action:  "Încercați din nou în câteva momente",
		Code:    "NET001",
	}
	msgTimeout = UserMessage{
		Message: "Serviciul de automatizare nu a răspuns la timp",
		Action:  "Încercați din nou",
		Code:    "NET002",
	}
	msgMissingFiles = UserMessage{
		Message: "Fișierele pentru import lipsesc",
		Action:  "Selectați atât arhiva ZIP cât și fișierul PDF",
		Code:    "VAL003",
	}
	msgSaveFailed = UserMessage{
		Message: "Modificările nu au putut fi salvate",
		Action:  "Conținutul a rămas neschimbat; încercați din nou",
		Code:    "SYS003",
	}
	msgRateLimited = UserMessage{
		Message: "Prea multe cereri în desfășurare",
		Action:  "Așteptați puțin și încercați din nou",
		Code:    "RATE001",
	}
)

var errorPatterns = []errorPattern{
	// Navigation and state.
	{"stale navigation", UserMessage{
		Message: "Navigarea a fost înlocuită de una mai nouă",
		Action:  "Nu este necesară nicio acțiune",
		Code:    "NAV005",
	}},
	{"incomplete data", UserMessage{
		Message: "Date incomplete pentru această pagină",
		Action:  "Reveniți la lista de comenzi și selectați din nou",
		Code:    "NAV001",
	}},
	{"record not found", UserMessage{
		Message: "Înregistrarea nu a fost găsită",
		Action:  "Sincronizați comenzile și încercați din nou",
		Code:    "NAV002",
	}},
	{"no product open", UserMessage{
		Message: "Niciun produs nu este deschis pentru editare",
		Action:  "Deschideți un produs din lista paletului",
		Code:    "NAV003",
	}},
	{"unknown view", UserMessage{
		Message: "Pagină necunoscută",
		Action:  "Folosiți meniul pentru navigare",
		Code:    "NAV004",
	}},

	// Validation and input.
	{"export blocked", UserMessage{
		Message: "Exportul este blocat de erori de validare",
		Action:  "Corectați produsele marcate și generați din nou exportul",
		Code:    "VAL001",
	}},
	{"too many images", UserMessage{
		Message: "Produsul are deja numărul maxim de imagini",
		Action:  "Ștergeți o imagine înainte de a adăuga alta",
		Code:    "VAL002",
	}},
	{"missing import files", msgMissingFiles},
	{"upload file missing", msgMissingFiles},
	{"invalid payload", UserMessage{
		Message: "Datele trimise nu sunt valide",
		Action:  "Verificați câmpurile și încercați din nou",
		Code:    "VAL004",
	}},
	{"export has no rows", UserMessage{
		Message: "Nu există produse de exportat",
		Action:  "Marcați produsele ca gata de listare și generați din nou exportul",
		Code:    "VAL005",
	}},
	{"access code not set", UserMessage{
		Message: "Codul de acces nu este setat",
		Action:  "Introduceți codul de acces",
		Code:    "VAL006",
	}},

	// Throttling.
	{"rate limit", msgRateLimited},
	{"too many concurrent automations", msgRateLimited},

	// System.
	{"internal error", UserMessage{
		Message: "A apărut o eroare internă la afișarea paginii",
		Action:  "Navigați în altă parte și reveniți",
		Code:    "SYS001",
	}},
	{"context canceled", UserMessage{
		Message: "Cererea a fost anulată",
		Action:  "Încercați din nou",
		Code:    "SYS002",
	}},
	{"product save failed", msgSaveFailed},
	{"order sync failed", UserMessage{
		Message: "Comenzile nu au putut fi sincronizate",
		Action:  "Verificați codul de acces și încercați din nou",
		Code:    "SYS003",
	}},

	// Transport.
	{"connection refused", msgUnreachable},
	{"no such host", msgUnreachable},
	{"deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"webhook status not success", UserMessage{
		Message: "Automatizarea a raportat o eroare",
		Action:  "Verificați datele și încercați din nou",
		Code:    "NET003",
	}},
	{"webhook response malformed", UserMessage{
		Message: "Răspunsul automatizării nu poate fi citit",
		Action:  "Încercați din nou sau contactați suportul",
		Code:    "NET004",
	}},
	{"webhook endpoint not configured", UserMessage{
		Message: "Această acțiune nu este configurată",
		Action:  "Contactați administratorul",
		Code:    "NET005",
	}},
	{"webhook ", UserMessage{
		Message: "Serviciul de automatizare a returnat o eroare",
		Action:  "Încercați din nou",
		Code:    "NET006",
	}},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "A apărut o eroare neașteptată",
	Action:  "Încercați din nou sau contactați suportul",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. nil maps to
// the zero UserMessage.
//
//	msg := MapError(fmt.Errorf("save: %w", ErrSaveFailed))
//	// msg.Code == "SYS003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Cod: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Cod: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a specific pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }

// NewUserError maps err. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
