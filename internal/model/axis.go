// Package model contains the core domain types shared across the pipeline.
package model

import (
	"fmt"
)

// Axis identifies one of the four independent classification axes. Each axis
// has its own label column, its own fitted model artifacts and its own
// prediction file; a failure on one axis never blocks the others.
type Axis string

// The four classification axes.
const (
	AxisTech    Axis = "tech"
	AxisDomain  Axis = "domain"
	AxisCountry Axis = "country"
	AxisResult  Axis = "result"
)

// CategoryUnknown is emitted when a classifier is not confident enough to
// commit to a real category.
const CategoryUnknown = "unknown"

// ConfidenceColumn is the shared confidence column name in prediction files.
const ConfidenceColumn = "confidence_score"

// DocColumn is the document id column shared by every delimited file.
const DocColumn = "doc"

// AllAxes returns every axis, in label-column order.
func AllAxes() []Axis {
	return []Axis{AxisTech, AxisDomain, AxisCountry, AxisResult}
}

// ParseAxis converts a user-supplied string into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisTech, AxisDomain, AxisCountry, AxisResult:
		return Axis(s), nil
	default:
		return "", fmt.Errorf("unknown classification axis %q (want tech, domain, country or result)", s)
	}
}

// Categories returns the closed category set for the axis. The returned
// slice is a fresh copy; callers may reorder it.
func (a Axis) Categories() []string {
	switch a {
	case AxisTech:
		return []string{"soft", "hard", "both"}
	case AxisDomain:
		return []string{"energy transition", "industrie 4.0", "new materials", "others"}
	case AxisCountry:
		return []string{"benelux", "france", "germany", "autres"}
	case AxisResult:
		return []string{"Unfavorable", "Very Unfavorable", "Interessant", "Out"}
	default:
		return nil
	}
}

// ValidCategory reports whether value is a member of the axis's category set.
func (a Axis) ValidCategory(value string) bool {
	for _, c := range a.Categories() {
		if c == value {
			return true
		}
	}
	return false
}

// PredictionColumn is the per-axis predicted-category column name.
func (a Axis) PredictionColumn() string {
	return "predicted_" + string(a)
}

// ProbabilityColumn is the per-category probability column name used by axes
// that persist full probability rows.
func ProbabilityColumn(category string) string {
	return "proba_" + category
}

func (a Axis) String() string {
	return string(a)
}
