package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/knowx/knowx-back/internal/database"
	"github.com/knowx/knowx-back/internal/models"
)

// Gate validates and persists outbound messages
type Gate struct {
	store database.MessageStore
}

func NewGate(store database.MessageStore) *Gate {
	return &Gate{store: store}
}

// fkFields maps store columns to the request field a client sent
var fkFields = map[string]string{
	"offer_id":    "request_ref",
	"receiver_id": "receiver_id",
	"sender_id":   "sender_id",
}

// Send appends a message from sender. A positive receiver id and non-blank
// content are required; messaging oneself is allowed.
func (g *Gate) Send(ctx context.Context, sender int64, req models.MessageRequest) (*models.Message, error) {
	if req.ReceiverID == nil || *req.ReceiverID <= 0 {
		return nil, &ValidationError{Field: "receiver_id", Reason: "is required"}
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "is required"}
	}

	msg, err := g.store.Append(ctx, models.NewMessage{
		SenderID:   sender,
		ReceiverID: *req.ReceiverID,
		RequestRef: req.Ref(),
		Content:    req.Content,
	})

	var fk *database.ForeignKeyError
	if errors.As(err, &fk) {
		field, ok := fkFields[fk.Column]
		if !ok {
			field = fk.Column
		}
		return nil, &ValidationError{Field: field, Reason: "does not exist"}
	}
	if err != nil {
		return nil, storeError("append message", err)
	}

	messagesSent.Inc()
	log.Debug("message %d sent from %d to %d", msg.ID, msg.SenderID, msg.ReceiverID)
	return msg, nil
}
