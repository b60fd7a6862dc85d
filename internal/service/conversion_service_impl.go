package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/backend"
)

type conversionService struct {
	quotes   backend.Quotes
	observer UseCaseObserver
}

func NewConversionService(quotes backend.Quotes, observers ...UseCaseObserver) ConversionService {
	return &conversionService{quotes: quotes, observer: useCaseObserverOrNoop(observers)}
}

func (s *conversionService) Convert(ctx context.Context, quoteID string) (*app.ConvertResult, error) {
	return s.ConvertWithKey(ctx, quoteID, uuid.New().String())
}

// ConvertWithKey never retries on its own. On backend.ErrOutcomeUnknown the
// caller may repeat the call with the same key and get the original result.
func (s *conversionService) ConvertWithKey(ctx context.Context, quoteID, idempotencyKey string) (res *app.ConvertResult, err error) {
	fields := map[string]any{"quote_id": quoteID, "idempotency_key": idempotencyKey}
	defer observe(ctx, s.observer, "quote.convert", time.Now(), fields, &err)

	res, err = s.quotes.ConvertQuote(ctx, quoteID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	fields["project_number"] = res.ProjectNumber
	return res, nil
}
