package interfaces

// Notifier delivers an event to all currently connected clients.
// Implementations must be safe for concurrent use from the reconciler
// goroutine and request-handling goroutines, and must never propagate
// transport failures to callers.
type Notifier interface {
	Broadcast(event string, payload interface{})
}
