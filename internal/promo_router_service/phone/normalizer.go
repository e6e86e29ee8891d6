// Package phone rewrites recipient identifiers into the form the channel
// send API accepts.
package phone

import (
	"io"
	"log/slog"
	"strings"
)

// PrefixRule rewrites a known-misreported leading digit sequence.
type PrefixRule struct {
	From string
	To   string
}

// DefaultRules covers Argentine mobiles: inbound webhooks report them as
// 549+area+number while the send API expects 54+area+15+number. Only the
// Buenos Aires area code (11) is rewritten.
var DefaultRules = []PrefixRule{
	{From: "54911", To: "541115"},
}

// Normalizer applies the first matching PrefixRule. It never fails: on any
// internal fault it returns the input unchanged.
type Normalizer struct {
	rules  []PrefixRule
	logger *slog.Logger
}

func NewNormalizer(rules []PrefixRule, logger *slog.Logger) *Normalizer {
	if rules == nil {
		rules = DefaultRules
	}
	return &Normalizer{rules: rules, logger: logger.With("component", "phone_normalizer")}
}

func (n *Normalizer) Normalize(raw string) (normalized string) {
	normalized = raw
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Phone normalization panicked, using raw identifier", "raw", raw, "panic", r)
			normalized = raw
		}
	}()

	for _, rule := range n.rules {
		if rule.From == "" {
			continue
		}
		if strings.HasPrefix(raw, rule.From) {
			normalized = rule.To + raw[len(rule.From):]
			n.logger.Debug("Phone prefix rewritten", "raw", raw, "normalized", normalized)
			return normalized
		}
	}
	return raw
}

// Normalize applies DefaultRules without logging.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

var defaultNormalizer = NewNormalizer(DefaultRules, slog.New(slog.NewTextHandler(io.Discard, nil)))
