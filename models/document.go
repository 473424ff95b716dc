package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TokenID identifies a tokenized genomic region or a special token.
type TokenID = uint32

type TokenDocument struct {
	Accession string
	Path      string
	Tokens    []TokenID
}

// DocumentScores is the persisted form of one document's sparse TF-IDF vector.
// Tokens and Scores are index-aligned.
type DocumentScores struct {
	Accession string             `bson:"accession" json:"accession"`
	RunID     string             `bson:"run_id" json:"run_id"`
	Tokens    []int32            `bson:"tokens" json:"tokens"`
	Scores    []float64          `bson:"scores" json:"scores"`
	UpdatedAt primitive.DateTime `bson:"updated_at" json:"updated_at"`
}
