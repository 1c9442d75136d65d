package amqp

import (
	"testing"
	"time"
)

func TestPostPublishedMessageRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	msg := NewPostPublishedMessage(7, "hdfc-millennia", "twitter", at)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := PostPublishedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.PostID != 7 || got.CardSlug != "hdfc-millennia" || !got.PublishedAt.Equal(at) {
		t.Errorf("round trip mangled message: %+v", got)
	}
}

func TestPostPublishedMessageFromBadJSON(t *testing.T) {
	if _, err := PostPublishedMessageFromJSON([]byte(`{`)); err == nil {
		t.Error("expected error on truncated JSON")
	}
}
