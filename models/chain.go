package models

// Canonical option type codes as published in the upstream chain.
const (
	OptionTypeCall = "CE"
	OptionTypePut  = "PE"
)

// OptionChain mirrors the upstream option-chain JSON document.
type OptionChain struct {
	Records ChainRecords `json:"records"`
}

// ChainRecords holds the expiry labels and rows in their published order.
type ChainRecords struct {
	ExpiryDates     []string   `json:"expiryDates"`
	Data            []ChainRow `json:"data"`
	Timestamp       string     `json:"timestamp"`
	UnderlyingValue float64    `json:"underlyingValue"`
}

// ChainRow is one strike/expiry row carrying up to two side contracts.
type ChainRow struct {
	StrikePrice float64    `json:"strikePrice"`
	ExpiryDate  string     `json:"expiryDate"`
	CE          *ChainSide `json:"CE,omitempty"`
	PE          *ChainSide `json:"PE,omitempty"`
}

// ChainSide is one contract side of a row. LastPrice is a pointer because the
// upstream publishes null for contracts that have not traded.
type ChainSide struct {
	StrikePrice       float64  `json:"strikePrice"`
	ExpiryDate        string   `json:"expiryDate"`
	Underlying        string   `json:"underlying"`
	Identifier        string   `json:"identifier"`
	OpenInterest      float64  `json:"openInterest"`
	ChangeInOI        float64  `json:"changeinOpenInterest"`
	TotalTradedVolume int64    `json:"totalTradedVolume"`
	ImpliedVolatility float64  `json:"impliedVolatility"`
	LastPrice         *float64 `json:"lastPrice"`
	Change            float64  `json:"change"`
	TotalBuyQuantity  int64    `json:"totalBuyQuantity"`
	TotalSellQuantity int64    `json:"totalSellQuantity"`
	BidQty            int64    `json:"bidQty"`
	BidPrice          float64  `json:"bidprice"`
	AskQty            int64    `json:"askQty"`
	AskPrice          float64  `json:"askPrice"`
}

// Side returns the contract for the given canonical code, or nil when the row
// does not carry that side.
func (r *ChainRow) Side(code string) *ChainSide {
	switch code {
	case OptionTypeCall:
		return r.CE
	case OptionTypePut:
		return r.PE
	}
	return nil
}

// Empty reports whether the snapshot is missing the expected top-level fields.
func (c *OptionChain) Empty() bool {
	return len(c.Records.ExpiryDates) == 0 && len(c.Records.Data) == 0
}
