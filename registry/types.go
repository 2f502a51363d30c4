package registry

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openclaw/erc8004-go/networks"
)

// DefaultFeedbackDecimals is applied when a feedback submission does not
// specify a decimal scale.
const DefaultFeedbackDecimals uint8 = 2

// Agent is an identity registry record. Metadata and TokenURI are
// best-effort: either may be absent when the on-chain pointer is unset or
// the document behind it cannot be retrieved.
type Agent struct {
	AgentID     *big.Int       `json:"agent_id"`
	TokenURI    string         `json:"token_uri,omitempty"`
	Owner       common.Address `json:"owner"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ExplorerURL string         `json:"explorer_url"`
}

// Score is a fixed-point decimal: an integer mantissa with an explicit
// number of decimal places. Reputation values stay in integer math end to
// end; floating point only appears at presentation boundaries.
type Score struct {
	Raw      *big.Int
	Decimals uint8
}

// String renders the score as a decimal number with trailing zeros
// trimmed, e.g. {450, 2} -> "4.5".
func (s Score) String() string {
	if s.Raw == nil {
		return "0"
	}
	if s.Decimals == 0 {
		return s.Raw.String()
	}

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.Decimals)), nil)
	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(s.Raw), pow, new(big.Int))

	frac := rem.String()
	for len(frac) < int(s.Decimals) {
		frac = "0" + frac
	}
	frac = strings.TrimRight(frac, "0")

	sign := ""
	if s.Raw.Sign() < 0 {
		sign = "-"
	}
	if frac == "" {
		return sign + quo.String()
	}
	return sign + quo.String() + "." + frac
}

// Float64 returns the score as a float, for display only.
func (s Score) Float64() float64 {
	if s.Raw == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(s.Raw),
		big.NewFloat(math.Pow10(int(s.Decimals))),
	).Float64()
	return f
}

// MarshalJSON renders the score as a JSON number in decimal form, so
// consumers never see the scaled mantissa by accident.
func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

// ScaleScore converts a display value to its scaled integer mantissa:
// round(value * 10^decimals). The rounding is float-based like the
// reference implementation; callers needing exact decimal semantics
// should pre-scale and pass decimals=0.
func ScaleScore(value float64, decimals uint8) *big.Int {
	return big.NewInt(int64(math.Round(value * math.Pow10(int(decimals)))))
}

// ReputationFilters narrow a reputation query. The registry's summary
// call requires an explicit, non-empty reviewer set; tags are optional.
type ReputationFilters struct {
	ClientAddresses []common.Address `json:"client_addresses"`
	Tag1            string           `json:"tag1"`
	Tag2            string           `json:"tag2"`
}

// ReputationSummary is the derived, never-persisted result of a
// reputation query. AverageScore is nil when there is no feedback or no
// reviewer set was supplied; Note and Error explain degraded results.
type ReputationSummary struct {
	AgentID       *big.Int          `json:"agent_id"`
	FeedbackCount uint64            `json:"feedback_count"`
	AverageScore  *Score            `json:"average_score"`
	Decimals      uint8             `json:"decimals"`
	RawValue      *big.Int          `json:"raw_value"`
	Note          string            `json:"note,omitempty"`
	Error         string            `json:"error,omitempty"`
	Filters       ReputationFilters `json:"filters"`
}

// RegistrationResult reports a register transaction. AgentID is nil when
// the transaction succeeded but no mint-transfer log could be found in
// the receipt (non-standard deployments).
type RegistrationResult struct {
	AgentID     *big.Int       `json:"agent_id"`
	TxHash      string         `json:"tx_hash"`
	Owner       common.Address `json:"owner"`
	ExplorerURL string         `json:"explorer_url"`
}

// UpdateResult reports a pointer update.
type UpdateResult struct {
	AgentID     *big.Int `json:"agent_id"`
	NewURI      string   `json:"new_uri"`
	TxHash      string   `json:"tx_hash"`
	ExplorerURL string   `json:"explorer_url"`
}

// Feedback is a feedback submission. A nil Decimals selects
// DefaultFeedbackDecimals; the zero FeedbackHash is submitted as-is.
type Feedback struct {
	Value        float64
	Decimals     *uint8
	Tag1         string
	Tag2         string
	Endpoint     string
	FeedbackURI  string
	FeedbackHash [32]byte
}

// FeedbackResult reports a feedback transaction. Value is the original,
// unscaled score for readability; RawValue is what went on chain.
type FeedbackResult struct {
	AgentID     *big.Int `json:"agent_id"`
	Value       float64  `json:"value"`
	Decimals    uint8    `json:"decimals"`
	RawValue    *big.Int `json:"raw_value"`
	Tag1        string   `json:"tag1"`
	Tag2        string   `json:"tag2"`
	TxHash      string   `json:"tx_hash"`
	ExplorerURL string   `json:"explorer_url"`
}

// FeedbackEntry is a single stored feedback record.
type FeedbackEntry struct {
	AgentID       *big.Int       `json:"agent_id"`
	ClientAddress common.Address `json:"client_address"`
	Index         uint64         `json:"index"`
	Score         Score          `json:"score"`
	Tag1          string         `json:"tag1"`
	Tag2          string         `json:"tag2"`
	Revoked       bool           `json:"revoked"`
}

// NetworkInfo describes the client's bound network for display.
type NetworkInfo struct {
	Network   string             `json:"network"`
	ChainID   int64              `json:"chain_id"`
	Contracts networks.Contracts `json:"contracts"`
	Explorer  string             `json:"explorer"`
}

// FormatAgentID renders an id for messages, tolerating nil.
func FormatAgentID(id *big.Int) string {
	if id == nil {
		return "(unknown)"
	}
	return fmt.Sprintf("%d", id)
}
