package bus

// Bus decouples the core from any particular real-time transport.
// Publishing is best-effort: a failed broadcast never rolls back the state
// transition that produced it.
type Bus interface {
	Publish(event Event) error
}
