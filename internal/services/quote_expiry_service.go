package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
)

// IQuoteExpiryService expires sent quotes past their validity date.
type IQuoteExpiryService interface {
	ExpireQuotes(ctx context.Context, now time.Time) (int, error)
}

type quoteExpiryService struct {
	quotes repository.IQuoteRepository
}

// NewQuoteExpiryService creates a new QuoteExpiryService.
func NewQuoteExpiryService(quotes repository.IQuoteRepository) IQuoteExpiryService {
	return &quoteExpiryService{quotes: quotes}
}

// ExpireQuotes returns the number of quotes moved to expired.
func (s *quoteExpiryService) ExpireQuotes(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.quotes.FindExpired(ctx, now.UTC().Format(dateLayout))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, q := range expired {
		if err := s.quotes.MarkExpired(ctx, q.ID); err != nil {
			// Already accepted or expired by a concurrent run.
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			log.Printf("Quotes: failed to expire quote %s: %v", q.ID, err)
			continue
		}
		count++
	}
	log.Printf("Quotes: %d of %d candidate quotes expired", count, len(expired))
	return count, nil
}
