package model

import (
	"time"
	"unicode/utf8"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxContentLength = 5000
	PreviewLength    = 100
	MaxNameLength    = 100
)

// Message is either direct (Recipient set) or part of a group
// Conversation.
type Message struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Workspace    primitive.ObjectID   `json:"workspace" bson:"workspace"`
	Sender       primitive.ObjectID   `json:"sender" bson:"sender"`
	Recipient    *primitive.ObjectID  `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Conversation *primitive.ObjectID  `json:"conversation,omitempty" bson:"conversation,omitempty"`
	Content      string               `json:"content" bson:"content"`
	ReadBy       []primitive.ObjectID `json:"readBy" bson:"readBy"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
}

// IsDirect reports whether m is a one-to-one message.
func (m *Message) IsDirect() bool {
	return m.Recipient != nil
}

// Conversation is a named group thread inside a workspace.
type Conversation struct {
	ID                 primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Workspace          primitive.ObjectID   `json:"workspace" bson:"workspace"`
	Name               string               `json:"name" bson:"name"`
	Participants       []primitive.ObjectID `json:"participants" bson:"participants"`
	CreatedBy          primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
	LastMessageAt      *time.Time           `json:"lastMessageAt,omitempty" bson:"lastMessageAt,omitempty"`
	LastMessagePreview string               `json:"lastMessagePreview,omitempty" bson:"lastMessagePreview,omitempty"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Preview cuts content to its first PreviewLength runes.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= PreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:PreviewLength])
}

// MessageEvent is published as message.created and fanned out to every
// open socket of each recipient.
type MessageEvent struct {
	Message    *Message             `json:"message"`
	Recipients []primitive.ObjectID `json:"recipients"`
}

var (
	ErrMessageNotFound      = apperrors.NewNotFoundError("message")
	ErrConversationNotFound = apperrors.NewNotFoundError("conversation")
	ErrNotParticipant       = apperrors.NewAuthorizationError("not a participant of this conversation")
	ErrNotRecipient         = apperrors.NewAuthorizationError("only the recipient can mark this message as read")
	ErrRecipientNotMember   = apperrors.NewValidationError("recipient is not a member of this workspace").WithDetail("field", "recipientId")
	ErrSelfMessage          = apperrors.NewValidationError("cannot send a direct message to yourself").WithDetail("field", "recipientId")
	ErrParticipantNotMember = apperrors.NewValidationError("every participant must be a member of this workspace").WithDetail("field", "participantIds")
	ErrTooFewParticipants   = apperrors.NewValidationError("a conversation needs at least 2 participants").WithDetail("field", "participantIds")
)
