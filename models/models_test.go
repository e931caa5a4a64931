package models

import (
	"encoding/json"
	"testing"
)

const chainJSON = `{
  "records": {
    "expiryDates": ["27-Jun-2024", "25-Jul-2024"],
    "data": [
      {
        "strikePrice": 23500,
        "expiryDate": "27-Jun-2024",
        "CE": {"strikePrice": 23500, "expiryDate": "27-Jun-2024", "lastPrice": 55.4},
        "PE": {"strikePrice": 23500, "expiryDate": "27-Jun-2024", "lastPrice": null}
      }
    ],
    "timestamp": "27-Jun-2024 15:30:00",
    "underlyingValue": 23516.0
  }
}`

func TestOptionChainDecode(t *testing.T) {
	var chain OptionChain
	if err := json.Unmarshal([]byte(chainJSON), &chain); err != nil {
		t.Fatalf("unmarshal chain: %v", err)
	}
	if len(chain.Records.ExpiryDates) != 2 {
		t.Fatalf("expected 2 expiry dates, got %d", len(chain.Records.ExpiryDates))
	}
	if len(chain.Records.Data) != 1 {
		t.Fatalf("expected 1 row, got %d", len(chain.Records.Data))
	}

	row := chain.Records.Data[0]
	ce := row.Side(OptionTypeCall)
	if ce == nil || ce.LastPrice == nil {
		t.Fatal("CE side or its last price missing")
	}
	if *ce.LastPrice != 55.4 {
		t.Errorf("unexpected CE last price: %v", *ce.LastPrice)
	}

	// null lastPrice must decode to a nil pointer, not zero
	pe := row.Side(OptionTypePut)
	if pe == nil {
		t.Fatal("PE side missing")
	}
	if pe.LastPrice != nil {
		t.Errorf("expected nil last price for untraded PE, got %v", *pe.LastPrice)
	}
}

func TestChainRowSideUnknownCode(t *testing.T) {
	row := ChainRow{CE: &ChainSide{}, PE: &ChainSide{}}
	if row.Side("XX") != nil {
		t.Fatal("unknown side code must return nil")
	}
}

func TestOptionChainEmpty(t *testing.T) {
	var chain OptionChain
	if !chain.Empty() {
		t.Fatal("zero-value chain should be empty")
	}
	chain.Records.ExpiryDates = []string{"27-Jun-2024"}
	if chain.Empty() {
		t.Fatal("chain with expiry dates should not be empty")
	}
}
