package events

import (
	"context"
	"errors"
)

// multiPublisher fans one Publish out to several publishers.
type multiPublisher struct {
	pubs []Publisher
}

// Multi returns a Publisher that forwards every event to all the given
// publishers. Errors are joined; one failing sink does not stop the others.
func Multi(pubs ...Publisher) Publisher {
	return &multiPublisher{pubs: pubs}
}

func (m *multiPublisher) Publish(ctx context.Context, topic string, event any) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiPublisher) Close() error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
