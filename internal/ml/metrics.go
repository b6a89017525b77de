package ml

import (
	"fmt"
	"strings"
)

// ClassMetrics holds precision, recall, F1 and support for one class.
type ClassMetrics struct {
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class quality summary with accuracy and macro/weighted
// averages, renderable as the familiar fixed-width table.
type Report struct {
	Classes     []ClassMetrics
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Accuracy    float64
	Support     int
}

// NewReport computes the report for integer-coded labels. classNames maps
// codes to display names and fixes the row order.
func NewReport(actual, predicted []int, classNames []string) *Report {
	k := len(classNames)
	tp := make([]int, k)
	fp := make([]int, k)
	fn := make([]int, k)
	support := make([]int, k)
	correct := 0

	for i := range actual {
		a, p := actual[i], predicted[i]
		if a >= 0 && a < k {
			support[a]++
		}
		if a == p {
			correct++
			if a >= 0 && a < k {
				tp[a]++
			}
			continue
		}
		if p >= 0 && p < k {
			fp[p]++
		}
		if a >= 0 && a < k {
			fn[a]++
		}
	}

	report := &Report{Support: len(actual)}
	if len(actual) > 0 {
		report.Accuracy = float64(correct) / float64(len(actual))
	}

	for c, name := range classNames {
		m := ClassMetrics{Name: name, Support: support[c]}
		if tp[c]+fp[c] > 0 {
			m.Precision = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			m.Recall = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes = append(report.Classes, m)
	}

	report.MacroAvg = ClassMetrics{Name: "macro avg"}
	report.WeightedAvg = ClassMetrics{Name: "weighted avg"}
	for _, m := range report.Classes {
		report.MacroAvg.Precision += m.Precision / float64(k)
		report.MacroAvg.Recall += m.Recall / float64(k)
		report.MacroAvg.F1 += m.F1 / float64(k)
		if report.Support > 0 {
			share := float64(m.Support) / float64(report.Support)
			report.WeightedAvg.Precision += m.Precision * share
			report.WeightedAvg.Recall += m.Recall * share
			report.WeightedAvg.F1 += m.F1 * share
		}
	}
	report.MacroAvg.Support = report.Support
	report.WeightedAvg.Support = report.Support

	return report
}

// String renders the report as a fixed-width table.
func (r *Report) String() string {
	width := len("weighted avg")
	for _, m := range r.Classes {
		if len(m.Name) > width {
			width = len(m.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n", width, "", "precision", "recall", "f1-score", "support")
	b.WriteString("\n")
	for _, m := range r.Classes {
		fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, m.Name, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Support)
	for _, m := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, m.Name, m.Precision, m.Recall, m.F1, m.Support)
	}
	return b.String()
}

// ConfusionMatrix counts actual-vs-predicted pairs over the given class
// order: rows are actual, columns are predicted. Pairs mentioning a label
// outside classes are skipped, so pass the union when nothing may drop.
func ConfusionMatrix(actual, predicted []string, classes []string) [][]int {
	index := make(map[string]int, len(classes))
	for i, class := range classes {
		index[class] = i
	}

	matrix := make([][]int, len(classes))
	for i := range matrix {
		matrix[i] = make([]int, len(classes))
	}
	for i := range actual {
		a, okA := index[actual[i]]
		p, okP := index[predicted[i]]
		if okA && okP {
			matrix[a][p]++
		}
	}
	return matrix
}
