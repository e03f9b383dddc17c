// Package push delivers notifications to devices through a push gateway.
package push

import "context"

//go:generate mockgen -source=push.go -destination=../mocks/push/mock_push.go -package=mock_push

// Message is a single notification addressed to one push token.
type Message struct {
	To         string            `json:"to"`
	Title      string            `json:"title,omitempty"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	Sound      string            `json:"sound,omitempty"`
	CategoryID string            `json:"categoryId,omitempty"`
}

// TicketStatus is the delivery result reported by the gateway.
type TicketStatus string

const (
	TicketStatusOK    TicketStatus = "ok"
	TicketStatusError TicketStatus = "error"
)

// Ticket is the gateway response for one message, in request order.
type Ticket struct {
	Status  TicketStatus      `json:"status"`
	ID      string            `json:"id,omitempty"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Gateway sends a batch of messages. Callers split larger sets with Chunk.
type Gateway interface {
	Send(ctx context.Context, messages []Message) ([]Ticket, error)
}

// Chunk splits messages into consecutive batches of at most size messages.
func Chunk(messages []Message, size int) [][]Message {
	if size <= 0 {
		size = len(messages)
	}
	var chunks [][]Message
	for start := 0; start < len(messages); start += size {
		end := min(start+size, len(messages))
		chunks = append(chunks, messages[start:end])
	}
	return chunks
}
