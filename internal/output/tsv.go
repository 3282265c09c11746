package output

import (
	"fmt"
	"strings"

	"callsight/internal/resolver"
	"callsight/internal/scoring"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

func (t *TSVGenerator) GenerateCalls(resolutions []*resolver.FileResolution) (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tLine\tCallee\tStatus\tTarget\tReason\n")
	for _, res := range resolutions {
		for _, call := range res.Calls {
			status := "resolved"
			if !call.Resolved() {
				status = "unresolved"
			}
			buf.WriteString(fmt.Sprintf("%s\t%d\t%s\t%s\t%s\t%s\n",
				res.File.Path,
				call.Call.Line,
				call.Call.Text,
				status,
				call.Target,
				call.Reason,
			))
		}
	}

	return buf.String(), nil
}

func (t *TSVGenerator) GeneratePriorities(scores []scoring.FunctionScore) (string, error) {
	var buf strings.Builder

	buf.WriteString("Function\tFile\tLine\tParams\tAnnotated\tReturn\tCompleteness\tCalls\tPriority\n")
	for _, s := range scores {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%d\t%v\t%.2f\t%d\t%.2f\n",
			s.QualifiedName,
			s.File,
			s.Line,
			s.Params,
			s.AnnotatedParams,
			s.ReturnAnnotated,
			s.Completeness,
			s.CallCount,
			s.Priority,
		))
	}

	return buf.String(), nil
}
