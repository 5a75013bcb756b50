package resultset

import (
	"fmt"
	"strings"

	"github.com/gomodule/redigo/redis"

	"github.com/orneryd/rgraph/pkg/convert"
)

// StatLabel identifies one query statistic.
type StatLabel int

const (
	LabelsAdded StatLabel = iota
	NodesCreated
	NodesDeleted
	RelationshipsCreated
	RelationshipsDeleted
	PropertiesSet
	IndicesAdded
	IndicesDeleted
	CachedExecution
	QueryInternalExecutionTime
)

var statLabelText = [...]string{
	LabelsAdded:                "Labels added",
	NodesCreated:               "Nodes created",
	NodesDeleted:               "Nodes deleted",
	RelationshipsCreated:       "Relationships created",
	RelationshipsDeleted:       "Relationships deleted",
	PropertiesSet:              "Properties set",
	IndicesAdded:               "Indices added",
	IndicesDeleted:             "Indices deleted",
	CachedExecution:            "Cached execution",
	QueryInternalExecutionTime: "Query internal execution time",
}

// statAliases maps every wire spelling to its label.
var statAliases = map[string]StatLabel{
	"Indices created": IndicesAdded,
}

func init() {
	for l, text := range statLabelText {
		statAliases[text] = StatLabel(l)
	}
}

// String returns the wire text of the label.
func (l StatLabel) String() string {
	if l >= 0 && int(l) < len(statLabelText) {
		return statLabelText[l]
	}
	return fmt.Sprintf("StatLabel(%d)", int(l))
}

// StatLabels returns every label in reporting order.
func StatLabels() []StatLabel {
	out := make([]StatLabel, len(statLabelText))
	for i := range out {
		out[i] = StatLabel(i)
	}
	return out
}

// ParseStatLabel maps a wire label to a StatLabel.
func ParseStatLabel(text string) (StatLabel, bool) {
	l, ok := statAliases[text]
	return l, ok
}

// Statistics holds the per-query counters reported by the server.
//
// Values are kept as the server sent them. A label the server did not report
// is absent, which Value distinguishes from zero.
type Statistics struct {
	values map[StatLabel]string
}

// parseStatistics reads lines of the form "Nodes created: 1". Lines with an
// unknown label are ignored.
func parseStatistics(v interface{}) (Statistics, error) {
	lines, err := redis.Strings(v, nil)
	if err != nil {
		return Statistics{}, fmt.Errorf("%w: statistics: %v", ErrProtocol, err)
	}
	stats := Statistics{values: make(map[StatLabel]string, len(lines))}
	for _, line := range lines {
		text, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label, ok := ParseStatLabel(strings.TrimSpace(text))
		if !ok {
			continue
		}
		stats.values[label] = strings.TrimSpace(value)
	}
	return stats, nil
}

// Value returns the raw value of label, e.g. "0.5 milliseconds".
func (s Statistics) Value(label StatLabel) (string, bool) {
	v, ok := s.values[label]
	return v, ok
}

// Len returns the number of reported statistics.
func (s Statistics) Len() int { return len(s.values) }

// Int returns label as an integer, or 0 when absent or unparsable.
func (s Statistics) Int(label StatLabel) int {
	v, ok := s.values[label]
	if !ok {
		return 0
	}
	n, _ := convert.ToInt64(firstField(v))
	return int(n)
}

func (s Statistics) LabelsAdded() int          { return s.Int(LabelsAdded) }
func (s Statistics) NodesCreated() int         { return s.Int(NodesCreated) }
func (s Statistics) NodesDeleted() int         { return s.Int(NodesDeleted) }
func (s Statistics) RelationshipsCreated() int { return s.Int(RelationshipsCreated) }
func (s Statistics) RelationshipsDeleted() int { return s.Int(RelationshipsDeleted) }
func (s Statistics) PropertiesSet() int        { return s.Int(PropertiesSet) }
func (s Statistics) IndicesAdded() int         { return s.Int(IndicesAdded) }
func (s Statistics) IndicesDeleted() int       { return s.Int(IndicesDeleted) }

// CachedExecution reports whether the server served the query from its plan
// cache.
func (s Statistics) CachedExecution() bool { return s.Int(CachedExecution) == 1 }

// QueryInternalExecutionTime returns the server-side execution time in
// milliseconds.
func (s Statistics) QueryInternalExecutionTime() float64 {
	v, ok := s.values[QueryInternalExecutionTime]
	if !ok {
		return 0
	}
	f, _ := convert.ToFloat64(firstField(v))
	return f
}

func (s Statistics) String() string {
	parts := make([]string, 0, len(s.values))
	for _, l := range StatLabels() {
		if v, ok := s.values[l]; ok {
			parts = append(parts, l.String()+": "+v)
		}
	}
	return "Statistics{" + strings.Join(parts, ", ") + "}"
}

func firstField(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
