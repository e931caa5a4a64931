package premium

import (
	"context"
	"errors"
	"testing"

	"premiumflow/models"
)

type fakeFetcher struct {
	chain *models.OptionChain
	err   error
	calls int
}

func (f *fakeFetcher) FetchChain(ctx context.Context) (*models.OptionChain, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.chain, nil
}

func price(v float64) *float64 {
	return &v
}

func testChain() *models.OptionChain {
	return &models.OptionChain{
		Records: models.ChainRecords{
			ExpiryDates: []string{"27-Jun-2024", "25-Jul-2024"},
			Data: []models.ChainRow{
				{
					StrikePrice: 100,
					ExpiryDate:  "27-Jun-2024",
					CE:          &models.ChainSide{StrikePrice: 100, LastPrice: price(5.5)},
				},
				{
					StrikePrice: 200,
					ExpiryDate:  "27-Jun-2024",
					CE:          &models.ChainSide{StrikePrice: 200, LastPrice: nil},
				},
			},
		},
	}
}

func validRequest() models.PremiumRequest {
	return models.PremiumRequest{
		StrikePrice: 100,
		OptionType:  "ce",
		Side:        "BUY",
		ExpiryDate:  "2024-06-27",
	}
}

func TestValidateRequestNormalizesOptionType(t *testing.T) {
	q, err := ValidateRequest(validRequest())
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}
	if q.OptionType != "CE" {
		t.Errorf("expected canonical CE, got %q", q.OptionType)
	}
	if q.Side != "BUY" {
		t.Errorf("side must pass through, got %q", q.Side)
	}
	if q.RawExpiry != "2024-06-27" {
		t.Errorf("raw expiry not preserved: %q", q.RawExpiry)
	}
}

func TestValidateRequestRejectsOptionType(t *testing.T) {
	for _, optionType := range []string{"", "CALL", "put", "C", "cepe"} {
		req := validRequest()
		req.OptionType = optionType
		if _, err := ValidateRequest(req); !errors.Is(err, ErrInvalidOptionType) {
			t.Errorf("optionType %q: expected ErrInvalidOptionType, got %v", optionType, err)
		}
	}
}

func TestValidateRequestRejectsBadDate(t *testing.T) {
	for _, date := range []string{"", "27-06-2024", "2024/06/27", "27-Jun-2024", "tomorrow"} {
		req := validRequest()
		req.ExpiryDate = date
		if _, err := ValidateRequest(req); !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("expiryDate %q: expected ErrInvalidDateFormat, got %v", date, err)
		}
	}
}

func TestResolveExpiry(t *testing.T) {
	labels := []string{"27-Jun-2024", "25-Jul-2024"}

	label, ok := ResolveExpiry(labels, "Jun", "27")
	if !ok || label != "27-Jun-2024" {
		t.Fatalf("expected 27-Jun-2024, got %q (ok=%v)", label, ok)
	}

	label, ok = ResolveExpiry(labels, "Jul", "25")
	if !ok || label != "25-Jul-2024" {
		t.Fatalf("expected 25-Jul-2024, got %q (ok=%v)", label, ok)
	}

	if _, ok := ResolveExpiry(labels, "Aug", "01"); ok {
		t.Fatal("expected no match for August")
	}

	if _, ok := ResolveExpiry(nil, "Jun", "27"); ok {
		t.Fatal("expected no match on empty label list")
	}
}

func TestResolveExpiryFirstMatchWins(t *testing.T) {
	// Both labels contain "Jun" and "27"; the published order decides.
	labels := []string{"27-Jun-2024", "27-Jun-2025"}
	label, ok := ResolveExpiry(labels, "Jun", "27")
	if !ok || label != "27-Jun-2024" {
		t.Fatalf("expected first label to win, got %q", label)
	}
}

func TestResolvePremium(t *testing.T) {
	fetcher := &fakeFetcher{chain: testChain()}
	resolver := NewResolver(fetcher)

	q, err := ValidateRequest(validRequest())
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}

	result, err := resolver.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.LastPrice != 5.5 {
		t.Errorf("expected last price 5.5, got %v", result.LastPrice)
	}
	if result.ExpiryDate != "27-Jun-2024" {
		t.Errorf("expected resolved upstream label, got %q", result.ExpiryDate)
	}
	if result.Side != "BUY" {
		t.Errorf("side must pass through, got %q", result.Side)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected exactly one fetch, got %d", fetcher.calls)
	}
}

func TestResolveNullLastPriceIsMiss(t *testing.T) {
	resolver := NewResolver(&fakeFetcher{chain: testChain()})

	req := validRequest()
	req.StrikePrice = 200
	q, err := ValidateRequest(req)
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), q); !errors.Is(err, ErrNoMatchingStrike) {
		t.Fatalf("expected ErrNoMatchingStrike for null last price, got %v", err)
	}
}

func TestResolveStrikeIsExactMatch(t *testing.T) {
	resolver := NewResolver(&fakeFetcher{chain: testChain()})

	req := validRequest()
	req.StrikePrice = 100.5
	q, err := ValidateRequest(req)
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), q); !errors.Is(err, ErrNoMatchingStrike) {
		t.Fatalf("expected ErrNoMatchingStrike for 100.5 vs 100, got %v", err)
	}
}

func TestResolveExpiryNotFound(t *testing.T) {
	resolver := NewResolver(&fakeFetcher{chain: testChain()})

	req := validRequest()
	req.ExpiryDate = "2024-08-29"
	q, err := ValidateRequest(req)
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}

	_, err = resolver.Resolve(context.Background(), q)
	var notFound *ExpiryNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ExpiryNotFoundError, got %v", err)
	}
	if notFound.Requested != "2024-08-29" {
		t.Errorf("expected caller's ISO date in error, got %q", notFound.Requested)
	}
	if len(notFound.Available) != 2 {
		t.Errorf("expected full label list, got %v", notFound.Available)
	}
}

func TestResolveFetchFailure(t *testing.T) {
	fetchErr := errors.New("connection reset")
	resolver := NewResolver(&fakeFetcher{err: fetchErr})

	q, err := ValidateRequest(validRequest())
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), q); !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestResolvePutSideRequiresPEObject(t *testing.T) {
	resolver := NewResolver(&fakeFetcher{chain: testChain()})

	req := validRequest()
	req.OptionType = "PE"
	q, err := ValidateRequest(req)
	if err != nil {
		t.Fatalf("ValidateRequest failed: %v", err)
	}

	// Rows only carry CE sides, so a PE query has no match.
	if _, err := resolver.Resolve(context.Background(), q); !errors.Is(err, ErrNoMatchingStrike) {
		t.Fatalf("expected ErrNoMatchingStrike for missing PE side, got %v", err)
	}
}
