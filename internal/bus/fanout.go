package bus

import "github.com/charmbracelet/log"

type fanout struct {
	buses []Bus
}

// NewFanout publishes every event to each of the given buses. A failing
// transport is logged and does not stop the others.
func NewFanout(buses ...Bus) Bus {
	return &fanout{buses: buses}
}

func (f *fanout) Publish(event Event) error {
	var firstErr error
	for _, b := range f.buses {
		if err := b.Publish(event); err != nil {
			log.Error("Bus publish failed", "type", event.Type, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
