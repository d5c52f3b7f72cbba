package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// verifiedDomainsTTL is how long a fetched verified-domain list is reused.
const verifiedDomainsTTL = 5 * time.Minute

// DomainService answers whether a sending domain is verified with the
// provider, memoizing the provider's domain list for a short window.
type DomainService struct {
	provider ProviderClient
	logger   *zap.Logger

	mu        sync.Mutex
	verified  []string
	fetchedAt time.Time
}

// NewDomainService creates a new domain verification service.
func NewDomainService(provider ProviderClient, logger *zap.Logger) *DomainService {
	return &DomainService{
		provider: provider,
		logger:   logger,
	}
}

// VerifiedDomains returns the names of domains the provider reports as
// verified. Results are cached for a few minutes; forceRefresh bypasses the
// cache. A provider failure yields an empty list, not an error, since the
// answer is advisory.
func (s *DomainService) VerifiedDomains(ctx context.Context, forceRefresh bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !forceRefresh && s.verified != nil && time.Since(s.fetchedAt) < verifiedDomainsTTL {
		return s.verified
	}

	if s.provider == nil {
		return nil
	}
	domains, err := s.provider.ListDomains(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch provider domains", zap.Error(err))
		return nil
	}

	verified := make([]string, 0, len(domains))
	for _, d := range domains {
		if d.Status == "verified" {
			verified = append(verified, strings.ToLower(d.Name))
		}
	}

	s.verified = verified
	s.fetchedAt = time.Now()
	return verified
}

// IsVerified reports whether the email's domain is verified with the
// provider.
func (s *DomainService) IsVerified(ctx context.Context, email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(parts[1]))

	for _, verified := range s.VerifiedDomains(ctx, false) {
		if verified == domain {
			return true
		}
	}
	return false
}

// TestKey validates the configured API key by listing domains. It returns
// the verified domain names on success.
func (s *DomainService) TestKey(ctx context.Context) ([]string, error) {
	if s.provider == nil {
		return nil, &ConfigError{Reason: "api key is not configured"}
	}
	domains, err := s.provider.ListDomains(ctx)
	if err != nil {
		return nil, &ProviderError{Op: "list domains", Message: err.Error(), Err: err}
	}

	verified := make([]string, 0, len(domains))
	for _, d := range domains {
		if d.Status == "verified" {
			verified = append(verified, strings.ToLower(d.Name))
		}
	}

	s.mu.Lock()
	s.verified = verified
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return verified, nil
}
