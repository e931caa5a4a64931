package premium

import (
	"context"
	"fmt"
	"strings"
	"time"

	"premiumflow/logger"
	"premiumflow/models"
)

// Query is a validated premium lookup. OptionType is canonical ("CE"/"PE"),
// RawExpiry keeps the caller's original ISO string for error reporting.
type Query struct {
	StrikePrice float64
	OptionType  string
	Side        string
	Expiry      time.Time
	RawExpiry   string
}

// ValidateRequest normalizes and checks caller input. It runs before any
// upstream I/O so invalid requests never cost a fetch.
func ValidateRequest(req models.PremiumRequest) (Query, error) {
	optionType := strings.ToUpper(req.OptionType)
	if optionType != models.OptionTypeCall && optionType != models.OptionTypePut {
		return Query{}, fmt.Errorf("%w: %q", ErrInvalidOptionType, req.OptionType)
	}

	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, req.ExpiryDate)
	}

	return Query{
		StrikePrice: req.StrikePrice,
		OptionType:  optionType,
		Side:        req.Side,
		Expiry:      expiry,
		RawExpiry:   req.ExpiryDate,
	}, nil
}

// ChainFetcher supplies option-chain snapshots.
type ChainFetcher interface {
	FetchChain(ctx context.Context) (*models.OptionChain, error)
}

// Resolver runs the fetch → resolve expiry → match row → extract price
// pipeline for one validated query. Each stage short-circuits on failure and
// nothing is retried.
type Resolver struct {
	fetcher ChainFetcher
	log     *logger.Log
}

func NewResolver(fetcher ChainFetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		log:     logger.GetLogger(),
	}
}

// Resolve fetches a snapshot and locates the premium for the query.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*models.ResolvedPremium, error) {
	log := r.log.WithComponent("resolver").WithFields(logger.Fields{
		"strike":      q.StrikePrice,
		"option_type": q.OptionType,
		"expiry":      q.RawExpiry,
	})

	chain, err := r.fetcher.FetchChain(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch: %w", err)
	}

	label, ok := ResolveExpiry(chain.Records.ExpiryDates, q.Expiry.Format("Jan"), q.Expiry.Format("02"))
	if !ok {
		logger.IncrementExpiryMiss()
		log.WithFields(logger.Fields{"available": len(chain.Records.ExpiryDates)}).Debug("no expiry label matched")
		return nil, &ExpiryNotFoundError{Requested: q.RawExpiry, Available: chain.Records.ExpiryDates}
	}

	side := matchRow(chain.Records.Data, label, q.OptionType, q.StrikePrice)
	if side == nil || side.LastPrice == nil {
		logger.IncrementStrikeMiss()
		return nil, ErrNoMatchingStrike
	}

	logger.IncrementPremiumHit()
	log.WithFields(logger.Fields{"resolved_expiry": label, "last_price": *side.LastPrice}).Debug("premium resolved")

	return &models.ResolvedPremium{
		StrikePrice: q.StrikePrice,
		OptionType:  q.OptionType,
		Side:        q.Side,
		ExpiryDate:  label,
		LastPrice:   *side.LastPrice,
	}, nil
}

// ResolveExpiry selects the first label containing both the three-letter
// month abbreviation and the two-digit day as substrings, in the labels'
// published order. Token order within the label is not enforced, which
// tolerates upstream formatting drift but can false-positive when the day
// token also appears inside an unrelated numeric fragment of a label.
func ResolveExpiry(labels []string, month, day string) (string, bool) {
	for _, label := range labels {
		if strings.Contains(label, month) && strings.Contains(label, day) {
			return label, true
		}
	}
	return "", false
}

// matchRow returns the requested side of the first row carrying the resolved
// label, the requested side object, and an exactly equal strike. Ties are not
// expected upstream; if present the first occurrence wins.
func matchRow(rows []models.ChainRow, label, optionType string, strike float64) *models.ChainSide {
	for i := range rows {
		row := &rows[i]
		if row.ExpiryDate != label {
			continue
		}
		side := row.Side(optionType)
		if side == nil {
			continue
		}
		if side.StrikePrice == strike {
			return side
		}
	}
	return nil
}
