package tfidf

import (
	"math"

	"github.com/amankumarsingh77/region_tfidf/models"
)

type Policy int

const (
	// Smoothed is ln((N+1)/(DF+1)) + 1, always positive.
	Smoothed Policy = iota
	// Raw is ln(N/DF), zero for tokens present in every document.
	Raw
)

func PolicyFor(smoothing bool) Policy {
	if smoothing {
		return Smoothed
	}
	return Raw
}

func (p Policy) String() string {
	if p == Raw {
		return "raw"
	}
	return "smoothed"
}

// IDFTable is built once after the statistics pass and only read afterwards.
type IDFTable map[models.TokenID]float64

func ComputeIDF(stats *CorpusStats, policy Policy) IDFTable {
	idf := make(IDFTable, len(stats.DF))
	n := float64(stats.N)
	for id, df := range stats.DF {
		idf[id] = weight(n, float64(df), policy)
	}
	return idf
}

func weight(n, df float64, policy Policy) float64 {
	if policy == Raw {
		return math.Log(n / df)
	}
	return math.Log((n+1)/(df+1)) + 1
}
