package conversation

import (
	"github.com/knowx/knowx-back/internal/database"
)

// Service bundles the aggregator, read-state engine and submission gate
// over a single store
type Service struct {
	*Aggregator
	*ReadState
	*Gate
}

func NewService(store database.MessageStore, labels Labeler) *Service {
	return &Service{
		Aggregator: NewAggregator(store, labels),
		ReadState:  NewReadState(store, labels),
		Gate:       NewGate(store),
	}
}
