package ports

import (
	"context"

	"github.com/taskhub/task-service/internal/core/domain"
)

// Mailer delivers a single notification synchronously. Implementations talk
// to the external provider; the core never sees delivery errors.
type Mailer interface {
	Send(ctx context.Context, job domain.EmailJob) error
}

// EmailDispatcher queues a notification for asynchronous fire-and-forget
// delivery. Enqueue never blocks the request path beyond channel capacity
// and never reports delivery failures back.
type EmailDispatcher interface {
	Enqueue(job domain.EmailJob)
}
