package amqp

import (
	"encoding/json"
	"time"
)

// PostPublishedMessage announces that a scheduled post went out. It
// carries only identifiers; consumers fetch the full post from the
// database when they need more.
type PostPublishedMessage struct {
	PostID      int64     `json:"post_id"`
	CardSlug    string    `json:"card_slug"`
	Platform    string    `json:"platform"`
	PublishedAt time.Time `json:"published_at"`
}

func NewPostPublishedMessage(postID int64, cardSlug, platform string, publishedAt time.Time) *PostPublishedMessage {
	return &PostPublishedMessage{
		PostID:      postID,
		CardSlug:    cardSlug,
		Platform:    platform,
		PublishedAt: publishedAt,
	}
}

func (m *PostPublishedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PostPublishedMessageFromJSON(data []byte) (*PostPublishedMessage, error) {
	var msg PostPublishedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
