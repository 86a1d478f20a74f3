package notifier

import "context"

// Notifier delivers a short alert to wherever the user wants to read it.
type Notifier interface {
	SendNotification(ctx context.Context, subject, message string) error
}
