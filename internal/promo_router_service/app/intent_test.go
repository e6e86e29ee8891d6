package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promobot/golang_services/internal/promo_router_service/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(false)

	cases := []struct {
		text string
		want domain.Intent
	}{
		{"promo", domain.IntentPromo},
		{"  PROMO  ", domain.IntentPromo},
		{"quiero la promo 1", domain.IntentPromo},
		{"1", domain.IntentPromo},
		{"call me at 10pm", domain.IntentPromo}, // digit matches anywhere
		{"promociones?", domain.IntentPromo},
		{"promo o asesor", domain.IntentPromo}, // promo is checked first
		{"12", domain.IntentPromo},
		{"asesor", domain.IntentAdvisor},
		{"Quiero un ASESOR", domain.IntentAdvisor},
		{"2", domain.IntentAdvisor},
		{"tengo 2 dudas", domain.IntentAdvisor},
		{"hola", domain.IntentUnknown},
		{"", domain.IntentUnknown},
		{"   ", domain.IntentUnknown},
		{"gracias!", domain.IntentUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.text), "text %q", tc.text)
	}
}

func TestClassifier_StrictDigits(t *testing.T) {
	c := NewClassifier(true)

	assert.Equal(t, domain.IntentPromo, c.Classify("1"))
	assert.Equal(t, domain.IntentPromo, c.Classify("opción 1, por favor"))
	assert.Equal(t, domain.IntentPromo, c.Classify("mi promo"))
	assert.Equal(t, domain.IntentUnknown, c.Classify("call me at 10pm"))
	assert.Equal(t, domain.IntentAdvisor, c.Classify("2"))
	assert.Equal(t, domain.IntentAdvisor, c.Classify("asesor"))
	assert.Equal(t, domain.IntentUnknown, c.Classify("tengo 22 años"))
}
