package domain

// RiskCategory groups signals that describe the same kind of risk. Each
// category has a fixed cap on how much it may contribute to the total score.
type RiskCategory string

const (
	CategoryPermissions  RiskCategory = "PERMISSIONS"
	CategoryDistribution RiskCategory = "DISTRIBUTION"
	CategoryLiquidity    RiskCategory = "LIQUIDITY"
	CategoryDevContract  RiskCategory = "DEV_CONTRACT"
	CategoryTxPatterns   RiskCategory = "TX_PATTERNS"
	CategoryContext      RiskCategory = "CONTEXT"
)

// RiskLevel is the discrete classification derived from the score.
type RiskLevel string

const (
	LevelLow    RiskLevel = "LOW"
	LevelMedium RiskLevel = "MEDIUM"
	LevelHigh   RiskLevel = "HIGH"
)

// Confidence rates how complete the underlying data was. It never
// influences the score.
type Confidence string

const (
	ConfidenceLow  Confidence = "LOW"
	ConfidenceMed  Confidence = "MED"
	ConfidenceHigh Confidence = "HIGH"
)

// ScorePoint is one point of a mint's score history, the compact form kept
// in the timeseries sink.
type ScorePoint struct {
	Mint        string
	Score       int
	Level       RiskLevel
	Confidence  Confidence
	Fallback    bool
	EvaluatedAt int64 // unix seconds
}

// RiskResult is the final verdict for one evaluation. Immutable after
// construction; not persisted by the engine itself.
type RiskResult struct {
	Mint        string     `json:"mint"`
	Score       int        `json:"score"` // 0-100
	Level       RiskLevel  `json:"level"`
	Confidence  Confidence `json:"confidence"`
	Signals     []Signal   `json:"signals"`
	Fallback    bool       `json:"fallback"`    // true when every live path failed
	EvaluatedAt int64      `json:"evaluatedAt"` // unix seconds
}
