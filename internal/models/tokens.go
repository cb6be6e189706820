package models

// TokenEstimate is a heuristic estimate of prompt token cost
type TokenEstimate struct {
	CharCount       int  `json:"char_count"`
	WordCount       int  `json:"word_count"`
	EstimatedTokens int  `json:"estimated_tokens"`
	HighUsage       bool `json:"high_usage"`
}
