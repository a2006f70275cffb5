// Package sms provides delivery of short text messages to phone numbers.
//
// Business code depends on the SMS interface; the concrete implementation
// talks to an HTTP gateway operated by the carrier aggregator.
package sms

import (
	"context"
	"io"
)

// Message represents a single outbound text message.
type Message struct {
	// To is the destination phone number.
	To string
	// Text is the message body.
	Text string
}

// SMS abstracts a text message provider.
type SMS interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}
