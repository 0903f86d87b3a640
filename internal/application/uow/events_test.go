package uow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	published []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.published = append(p.published, events...)
	return nil
}

type stubAggregate struct {
	shared.BaseAggregateRoot
}

type stubEvent struct {
	shared.BaseDomainEvent
}

func TestEvents_CollectAndPublish(t *testing.T) {
	agg := &stubAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	agg.AddDomainEvent(&stubEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Stubbed", "Stub", uuid.New())})
	agg.AddDomainEvent(&stubEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Stubbed", "Stub", uuid.New())})

	var events Events
	events.Collect(agg, nil)

	assert.Equal(t, 2, events.Len())
	assert.Empty(t, agg.GetDomainEvents())

	pub := &recordingPublisher{}
	events.Publish(context.Background(), pub)
	assert.Len(t, pub.published, 2)
	assert.Equal(t, 0, events.Len())
}

func TestEvents_PublishWithoutPublisher(t *testing.T) {
	agg := &stubAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	agg.AddDomainEvent(&stubEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Stubbed", "Stub", uuid.New())})

	var events Events
	events.Collect(agg)

	assert.NotPanics(t, func() { events.Publish(context.Background(), nil) })
}
