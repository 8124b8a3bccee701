// Package notifier delivers rendered alert text to external channels.
package notifier

import "errors"

// TextNotifier is intentionally small so components can depend on it
// without importing concrete channel implementations.
type TextNotifier interface {
	SendText(text string) error
}

// Multi fans a message out to several channels. Delivery counts as
// successful when at least one channel accepts it; an alert that reaches
// the operator anywhere beats one lost everywhere.
type Multi struct {
	Channels []TextNotifier
}

func NewMulti(channels ...TextNotifier) *Multi {
	return &Multi{Channels: channels}
}

func (m *Multi) SendText(text string) error {
	if len(m.Channels) == 0 {
		return errors.New("no notification channels configured")
	}
	var errs []error
	delivered := false
	for _, ch := range m.Channels {
		if err := ch.SendText(text); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	return errors.Join(errs...)
}
