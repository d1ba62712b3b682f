package sms

import "context"

// Sender sends one text message to one phone number. Implementations
// must honor ctx cancellation and deadlines; the dispatch loop bounds
// every call with a timeout.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}
