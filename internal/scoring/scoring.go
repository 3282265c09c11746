// Package scoring ranks functions by how incomplete their type
// annotations are, weighted by how often resolved calls target them.
package scoring

import (
	"sort"

	"callsight/internal/parser"
	"callsight/internal/resolver"
)

type FunctionScore struct {
	QualifiedName   string
	File            string
	Line            int
	Params          int
	AnnotatedParams int
	ReturnAnnotated bool
	Completeness    float64
	CallCount       int
	Priority        float64
}

// Rank scores every collected function signature against the resolved
// call stream. Priority grows with missing annotations and with call
// traffic: a heavily-called unannotated function sorts first. Ordering
// is deterministic (priority descending, then qualified name).
func Rank(resolutions []*resolver.FileResolution) []FunctionScore {
	counts := make(map[string]int)
	for _, res := range resolutions {
		for _, call := range res.Calls {
			if call.Resolved() {
				counts[call.Target]++
			}
		}
	}

	var scores []FunctionScore
	for _, res := range resolutions {
		for _, sig := range res.File.Signatures {
			scores = append(scores, score(res.File.Path, sig, counts[sig.QualifiedName]))
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Priority != scores[j].Priority {
			return scores[i].Priority > scores[j].Priority
		}
		return scores[i].QualifiedName < scores[j].QualifiedName
	})
	return scores
}

func score(file string, sig parser.FunctionSignature, callCount int) FunctionScore {
	s := FunctionScore{
		QualifiedName:   sig.QualifiedName,
		File:            file,
		Line:            sig.Line,
		ReturnAnnotated: sig.ReturnAnnotated,
		CallCount:       callCount,
	}

	for i, p := range sig.Params {
		// self/cls receivers carry no annotations by convention.
		if i == 0 && sig.IsMethod && (p.Name == "self" || p.Name == "cls") {
			continue
		}
		s.Params++
		if p.Annotated {
			s.AnnotatedParams++
		}
	}

	// Completeness counts the return annotation as one more slot.
	slots := s.Params + 1
	filled := s.AnnotatedParams
	if s.ReturnAnnotated {
		filled++
	}
	s.Completeness = float64(filled) / float64(slots)

	s.Priority = (1 - s.Completeness) * float64(1+callCount)
	return s
}

// AverageCompleteness summarizes a run for history snapshots. Returns 1
// when there are no functions at all.
func AverageCompleteness(scores []FunctionScore) float64 {
	if len(scores) == 0 {
		return 1
	}
	total := 0.0
	for _, s := range scores {
		total += s.Completeness
	}
	return total / float64(len(scores))
}
