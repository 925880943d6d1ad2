package routing

import (
	"regexp"
	"strconv"
	"strings"
)

// ThresholdOp is the comparison operator parsed from a row-count phrase.
type ThresholdOp string

const (
	OpGT  ThresholdOp = "gt"
	OpGTE ThresholdOp = "gte"
	OpLT  ThresholdOp = "lt"
	OpLTE ThresholdOp = "lte"
)

// RowThreshold is a parsed row-count constraint.
type RowThreshold struct {
	Value int64
	Op    ThresholdOp
}

// thresholdPatterns are tried in order; each extracts a numeric value (with
// optional k suffix meaning thousands) and an operator.
var thresholdPatterns = []struct {
	re *regexp.Regexp
	op func(match []string) ThresholdOp
}{
	{
		re: regexp.MustCompile(`(>=?)\s*([\d,]+)(k?)\s*rows?`),
		op: func(m []string) ThresholdOp {
			if m[1] == ">=" {
				return OpGTE
			}
			return OpGT
		},
	},
	{
		re: regexp.MustCompile(`(<=?)\s*([\d,]+)(k?)\s*rows?`),
		op: func(m []string) ThresholdOp {
			if m[1] == "<=" {
				return OpLTE
			}
			return OpLT
		},
	},
	{
		re: regexp.MustCompile(`()([\d,]+)(k)\+\s*rows?`),
		op: func([]string) ThresholdOp { return OpGT },
	},
	{
		re: regexp.MustCompile(`(?:more than|greater than)\s+()([\d,]+)(k?)`),
		op: func([]string) ThresholdOp { return OpGT },
	},
	{
		re: regexp.MustCompile(`(?:less than|fewer than)\s+()([\d,]+)(k?)`),
		op: func([]string) ThresholdOp { return OpLT },
	},
}

// ParseRowThreshold extracts a row-count constraint from a question.
// "100k" parses as 100000; ok is false when no numeric phrase is present,
// so callers can tell "no threshold" apart from a threshold of zero.
// Invoke only after the question classified as metadata_filter.
func ParseRowThreshold(question string) (RowThreshold, bool) {
	q := strings.ToLower(question)
	for _, p := range thresholdPatterns {
		m := p.re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[2], ",", "")
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if m[3] == "k" {
			value *= 1000
		}
		return RowThreshold{Value: value, Op: p.op(m)}, true
	}
	return RowThreshold{}, false
}
