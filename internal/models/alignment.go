package models

import (
	"time"
)

// AlignedToken is one position of a stored aligned row. Gaps carry no value,
// so a gap is never confused with a "-" token.
type AlignedToken struct {
	Value string `bson:"value,omitempty" json:"value,omitempty"`
	Gap   bool   `bson:"gap,omitempty" json:"gap,omitempty"`
}

// Alignment is one stored comparison of two uploaded files
type Alignment struct {
	ID            string         `bson:"_id" json:"alignmentId"`
	UserID        string         `bson:"userId" json:"userId"`
	File1Name     string         `bson:"file1Name" json:"file1Name"`
	File2Name     string         `bson:"file2Name" json:"file2Name"`
	File1Content  string         `bson:"file1Content,omitempty" json:"file1Content,omitempty"`
	File2Content  string         `bson:"file2Content,omitempty" json:"file2Content,omitempty"`
	AlignedFirst  []AlignedToken `bson:"alignedFirst,omitempty" json:"alignedFirst,omitempty"`
	AlignedSecond []AlignedToken `bson:"alignedSecond,omitempty" json:"alignedSecond,omitempty"`
	Operations    []string       `bson:"operations,omitempty" json:"operations,omitempty"`
	Similarity    float64        `bson:"similarity" json:"similarity"`
	Score         int64          `bson:"score" json:"score"`
	Matches       int            `bson:"matches" json:"matches"`
	Substitutions int            `bson:"substitutions" json:"substitutions"`
	GapsInFirst   int            `bson:"gapsInFirst" json:"gapsInFirst"`
	GapsInSecond  int            `bson:"gapsInSecond" json:"gapsInSecond"`
	FirstTokens   int            `bson:"firstTokens" json:"firstTokens"`
	SecondTokens  int            `bson:"secondTokens" json:"secondTokens"`
	TileCoverage  *float64       `bson:"tileCoverage,omitempty" json:"tileCoverage,omitempty"`
	Risk          string         `bson:"risk" json:"risk"` // clean, suspicious, highly_suspicious, near_copy
	Policy        string         `bson:"policy" json:"policy"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
}
