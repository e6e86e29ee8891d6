package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnvelopeKind tags which of the known webhook body layouts was received.
type EnvelopeKind int

const (
	EnvelopeUnknown EnvelopeKind = iota
	// EnvelopeNested is the Cloud API layout: entry[].changes[].value.messages[].
	EnvelopeNested
	// EnvelopeFlat is the legacy layout with messages[] at the top level.
	EnvelopeFlat
)

func (k EnvelopeKind) String() string {
	switch k {
	case EnvelopeNested:
		return "nested"
	case EnvelopeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// WebhookEnvelope is a tagged union over the two webhook layouts. Exactly one
// of Nested or Flat is set, according to Kind.
type WebhookEnvelope struct {
	Kind   EnvelopeKind
	Nested *NestedEnvelope
	Flat   *FlatEnvelope
	raw    json.RawMessage
}

type NestedEnvelope struct {
	Object string        `json:"object"`
	Entry  []NestedEntry `json:"entry"`
}

type NestedEntry struct {
	ID      string         `json:"id"`
	Changes []NestedChange `json:"changes"`
}

type NestedChange struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Contacts         []Contact         `json:"contacts,omitempty"`
	Messages         []PlatformMessage `json:"messages,omitempty"`
	Statuses         []json.RawMessage `json:"statuses,omitempty"`
}

type FlatEnvelope struct {
	Contacts []Contact         `json:"contacts,omitempty"`
	Messages []PlatformMessage `json:"messages"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// PlatformMessage is a single message object as delivered by the platform.
type PlatformMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextPayload        `json:"text,omitempty"`
	Image       *MediaPayload       `json:"image,omitempty"`
	Video       *MediaPayload       `json:"video,omitempty"`
	Document    *MediaPayload       `json:"document,omitempty"`
	Button      *ButtonPayload      `json:"button,omitempty"`
	Interactive *InteractivePayload `json:"interactive,omitempty"`
}

type TextPayload struct {
	Body string `json:"body"`
}

type MediaPayload struct {
	ID      string `json:"id,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type ButtonPayload struct {
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
}

type InteractivePayload struct {
	Type        string `json:"type"`
	ButtonReply *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"button_reply,omitempty"`
	ListReply *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"list_reply,omitempty"`
}

// TextBody returns the customer-visible text of the message. Plain text wins,
// then media captions, then button or list reply titles.
func (m PlatformMessage) TextBody() string {
	if m.Text != nil && strings.TrimSpace(m.Text.Body) != "" {
		return m.Text.Body
	}
	for _, media := range []*MediaPayload{m.Image, m.Video, m.Document} {
		if media != nil && strings.TrimSpace(media.Caption) != "" {
			return media.Caption
		}
	}
	if m.Button != nil && m.Button.Text != "" {
		return m.Button.Text
	}
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil {
			return m.Interactive.ButtonReply.Title
		}
		if m.Interactive.ListReply != nil {
			return m.Interactive.ListReply.Title
		}
	}
	return ""
}

// ParseEnvelope decodes a webhook body into one of the known layouts.
// Bodies that are not JSON objects, or that carry neither "entry" nor
// "messages", yield ErrPayloadShapeMismatch.
func ParseEnvelope(raw []byte) (WebhookEnvelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return WebhookEnvelope{}, fmt.Errorf("%w: invalid JSON: %v", ErrPayloadShapeMismatch, err)
	}

	if _, ok := probe["entry"]; ok {
		var nested NestedEnvelope
		if err := json.Unmarshal(raw, &nested); err != nil {
			return WebhookEnvelope{}, fmt.Errorf("%w: nested layout: %v", ErrPayloadShapeMismatch, err)
		}
		return WebhookEnvelope{Kind: EnvelopeNested, Nested: &nested, raw: raw}, nil
	}
	if _, ok := probe["messages"]; ok {
		var flat FlatEnvelope
		if err := json.Unmarshal(raw, &flat); err != nil {
			return WebhookEnvelope{}, fmt.Errorf("%w: flat layout: %v", ErrPayloadShapeMismatch, err)
		}
		return WebhookEnvelope{Kind: EnvelopeFlat, Flat: &flat, raw: raw}, nil
	}
	return WebhookEnvelope{}, fmt.Errorf("%w: neither entry nor messages present", ErrPayloadShapeMismatch)
}

// FirstMessage returns the first message of the envelope, if any. Only the
// first entry and change of a nested envelope are considered.
func (e WebhookEnvelope) FirstMessage() (PlatformMessage, bool) {
	switch e.Kind {
	case EnvelopeNested:
		if e.Nested == nil || len(e.Nested.Entry) == 0 || len(e.Nested.Entry[0].Changes) == 0 {
			return PlatformMessage{}, false
		}
		msgs := e.Nested.Entry[0].Changes[0].Value.Messages
		if len(msgs) == 0 {
			return PlatformMessage{}, false
		}
		return msgs[0], true
	case EnvelopeFlat:
		if e.Flat == nil || len(e.Flat.Messages) == 0 {
			return PlatformMessage{}, false
		}
		return e.Flat.Messages[0], true
	default:
		return PlatformMessage{}, false
	}
}

// ExtractInboundMessage turns a webhook body into an InboundMessage. Any
// missing piece (layout, message, sender, text) is reported as
// ErrPayloadShapeMismatch so the caller can acknowledge without acting.
func ExtractInboundMessage(raw []byte, now time.Time) (InboundMessage, error) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		return InboundMessage{}, err
	}
	msg, ok := env.FirstMessage()
	if !ok {
		return InboundMessage{}, fmt.Errorf("%w: %s envelope has no messages", ErrPayloadShapeMismatch, env.Kind)
	}

	sender := strings.TrimSpace(msg.From)
	if sender == "" {
		return InboundMessage{}, fmt.Errorf("%w: message has no sender", ErrPayloadShapeMismatch)
	}
	text := msg.TextBody()
	if strings.TrimSpace(text) == "" {
		return InboundMessage{}, fmt.Errorf("%w: message of type %q has no text", ErrPayloadShapeMismatch, msg.Type)
	}

	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	return InboundMessage{
		ID:         id,
		SenderID:   sender,
		BodyText:   text,
		ReceivedAt: now,
		RawPayload: env.raw,
	}, nil
}
