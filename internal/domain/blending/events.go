package blending

import (
	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeBlend    = "Blend"
	EventTypeBlendCreated = "BlendCreated"
)

// BlendCreatedEvent is raised when a blend is recorded
type BlendCreatedEvent struct {
	shared.BaseDomainEvent
	BlendID         uuid.UUID       `json:"blend_id"`
	BlendCode       string          `json:"blend_code"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	WeightedAvgCost decimal.Decimal `json:"weighted_avg_cost"`
}

// NewBlendCreatedEvent creates a new BlendCreatedEvent
func NewBlendCreatedEvent(b *Blend) *BlendCreatedEvent {
	return &BlendCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBlendCreated, AggregateTypeBlend, b.ID),
		BlendID:         b.ID,
		BlendCode:       b.BlendCode,
		TotalQuantity:   b.TotalQuantity,
		WeightedAvgCost: b.WeightedAvgCost,
	}
}
