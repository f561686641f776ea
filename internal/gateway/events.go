package gateway

import (
	"encoding/json"
	"errors"

	"github.com/femtoworks/femto-gateway/internal/domain"
)

// InboundEvent is one webhook delivery.  A single delivery may carry
// entries for multiple tenants, each of which is authorized and routed
// independently.
type InboundEvent struct {
	Object  string
	Entries []EventEntry
}

// EventEntry is one per-tenant slice of a delivery.  Raw holds the entry
// document exactly as it arrived - the published message wraps it without
// transformation.
type EventEntry struct {
	TenantID domain.TenantID
	Events   []EntryEvent
	Raw      json.RawMessage
}

// EntryEvent is one decoded event fragment from a webhook entry.  Exactly
// one concrete type is produced per fragment by the discriminated decode
// step.
type EntryEvent interface {
	EventType() string
}

type MessageEvent struct {
	SenderID          string
	Timestamp         int64
	Text              string
	QuickReplyPayload string
}

func (MessageEvent) EventType() string { return "message" }

type PostbackEvent struct {
	SenderID  string
	Timestamp int64
	Payload   string
}

func (PostbackEvent) EventType() string { return "postback" }

type DeliveryReceiptEvent struct {
	SenderID   string
	MessageIDs []string
	Watermark  int64
}

func (DeliveryReceiptEvent) EventType() string { return "delivery_receipt" }

type ReadReceiptEvent struct {
	SenderID  string
	Watermark int64
}

func (ReadReceiptEvent) EventType() string { return "read_receipt" }

type AccountLinkingEvent struct {
	SenderID          string
	Status            string
	AuthorizationCode string
}

func (AccountLinkingEvent) EventType() string { return "account_linking" }

type ChangeEvent struct {
	Field string
	Value json.RawMessage
}

func (ChangeEvent) EventType() string { return "change" }

var errAmbiguousEventFragment = errors.New("event fragment does not contain exactly one event kind")

type rawParty struct {
	ID string `json:"id"`
}

type rawQuickReply struct {
	Payload string `json:"payload"`
}

type rawMessage struct {
	Text       string         `json:"text"`
	QuickReply *rawQuickReply `json:"quick_reply"`
}

type rawPostback struct {
	Payload string `json:"payload"`
}

type rawDelivery struct {
	Mids      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
}

type rawRead struct {
	Watermark int64 `json:"watermark"`
}

type rawAccountLinking struct {
	Status            string `json:"status"`
	AuthorizationCode string `json:"authorization_code"`
}

type rawMessagingEvent struct {
	Sender         rawParty           `json:"sender"`
	Timestamp      int64              `json:"timestamp"`
	Message        *rawMessage        `json:"message"`
	Postback       *rawPostback       `json:"postback"`
	Delivery       *rawDelivery       `json:"delivery"`
	Read           *rawRead           `json:"read"`
	AccountLinking *rawAccountLinking `json:"account_linking"`
}

type rawChange struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type rawEntry struct {
	ID        string              `json:"id"`
	Time      int64               `json:"time"`
	Messaging []rawMessagingEvent `json:"messaging"`
	Changes   []rawChange         `json:"changes"`
}

// ParseInboundEvent deserializes a webhook body.  An error covers only the
// top level document - unknown event fragments inside an entry are dropped
// by decodeEntry rather than failing the delivery.
func ParseInboundEvent(data []byte) (InboundEvent, error) {
	var envelope struct {
		Object string            `json:"object"`
		Entry  []json.RawMessage `json:"entry"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return InboundEvent{}, err
	}

	event := InboundEvent{Object: envelope.Object}

	for _, raw := range envelope.Entry {
		entry, err := decodeEntry(raw)
		if err != nil {
			return InboundEvent{}, err
		}
		event.Entries = append(event.Entries, entry)
	}

	return event, nil
}

func decodeEntry(raw json.RawMessage) (EventEntry, error) {
	var decoded rawEntry

	if err := json.Unmarshal(raw, &decoded); err != nil {
		return EventEntry{}, err
	}

	entry := EventEntry{
		TenantID: domain.TenantID(decoded.ID),
		Raw:      raw,
	}

	for _, m := range decoded.Messaging {
		event, err := decodeMessagingEvent(m)
		if err != nil {
			// Tolerated: an unrecognized fragment must not sink the
			// recognizable ones in the same entry.
			continue
		}
		entry.Events = append(entry.Events, event)
	}

	for _, c := range decoded.Changes {
		entry.Events = append(entry.Events, ChangeEvent{Field: c.Field, Value: c.Value})
	}

	return entry, nil
}

// decodeMessagingEvent is the discriminated parse step: a fragment must
// carry exactly one of the known event kinds.
func decodeMessagingEvent(m rawMessagingEvent) (EntryEvent, error) {

	kinds := 0
	for _, present := range []bool{m.Message != nil, m.Postback != nil, m.Delivery != nil, m.Read != nil, m.AccountLinking != nil} {
		if present {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errAmbiguousEventFragment
	}

	switch {
	case m.Message != nil:
		event := MessageEvent{
			SenderID:  m.Sender.ID,
			Timestamp: m.Timestamp,
			Text:      m.Message.Text,
		}
		if m.Message.QuickReply != nil {
			event.QuickReplyPayload = m.Message.QuickReply.Payload
		}
		return event, nil
	case m.Postback != nil:
		return PostbackEvent{
			SenderID:  m.Sender.ID,
			Timestamp: m.Timestamp,
			Payload:   m.Postback.Payload,
		}, nil
	case m.Delivery != nil:
		return DeliveryReceiptEvent{
			SenderID:   m.Sender.ID,
			MessageIDs: m.Delivery.Mids,
			Watermark:  m.Delivery.Watermark,
		}, nil
	case m.Read != nil:
		return ReadReceiptEvent{
			SenderID:  m.Sender.ID,
			Watermark: m.Read.Watermark,
		}, nil
	default:
		return AccountLinkingEvent{
			SenderID:          m.Sender.ID,
			Status:            m.AccountLinking.Status,
			AuthorizationCode: m.AccountLinking.AuthorizationCode,
		}, nil
	}
}
