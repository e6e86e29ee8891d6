package app

import (
	"strings"
	"unicode"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

const (
	promoKeyword   = "promo"
	promoDigit     = "1"
	advisorKeyword = "asesor"
	advisorDigit   = "2"
)

// Classifier maps free text to an Intent. Rules are checked in order and the
// first match wins: promo, then advisor, else unknown.
//
// By default the menu digits match anywhere in the text, so "llamame a las 10"
// is a promo request. With strictDigits they must stand alone as a word.
type Classifier struct {
	strictDigits bool
}

func NewClassifier(strictDigits bool) Classifier {
	return Classifier{strictDigits: strictDigits}
}

func (c Classifier) Classify(text string) domain.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return domain.IntentUnknown
	}

	var tokens map[string]bool
	if c.strictDigits {
		tokens = make(map[string]bool)
		for _, tok := range strings.FieldsFunc(normalized, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			tokens[tok] = true
		}
	}
	hasDigit := func(d string) bool {
		if c.strictDigits {
			return tokens[d]
		}
		return strings.Contains(normalized, d)
	}

	switch {
	case strings.Contains(normalized, promoKeyword) || hasDigit(promoDigit):
		return domain.IntentPromo
	case strings.Contains(normalized, advisorKeyword) || hasDigit(advisorDigit):
		return domain.IntentAdvisor
	default:
		return domain.IntentUnknown
	}
}
