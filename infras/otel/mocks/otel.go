package mocks

import (
	"context"

	"profitly/infras/otel"
)

type otelImpl struct {
}

// NewScope implements otel.Otel.
func (o *otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

// NewOtel returns an otel.Otel that records nothing.
func NewOtel() otel.Otel {
	return &otelImpl{}
}
