package domain

// EmailKind selects the outbound message template.
type EmailKind string

const (
	EmailWelcome      EmailKind = "welcome"
	EmailCancellation EmailKind = "cancellation"
)

// EmailJob is a queued fire-and-forget notification. ID is a correlation
// id for logs; delivery failures are recorded but never retried.
type EmailJob struct {
	ID   string
	Kind EmailKind
	To   string
	Name string
}
