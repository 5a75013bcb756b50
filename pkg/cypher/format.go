package cypher

import (
	"fmt"
	"strings"

	"github.com/orneryd/rgraph/pkg/pool"
)

// Format is fmt.Sprintf with every string argument quoted by QuoteString.
//
// It is meant for query templates such as
//
//	cypher.Format("MATCH (n) WHERE n.s1=%s RETURN n", `S"'`)
//	// MATCH (n) WHERE n.s1="S\"'" RETURN n
//
// Non-string arguments are formatted as fmt would format them.
func Format(format string, args ...interface{}) string {
	quoted := make([]interface{}, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			quoted[i] = QuoteString(s)
			continue
		}
		quoted[i] = a
	}
	return fmt.Sprintf(format, quoted...)
}

// Procedure builds a CALL statement.
//
// Arguments are rendered as literals. With yields the statement ends with a
// YIELD clause naming the requested outputs.
//
// # Example
//
//	cypher.Procedure("db.labels", nil, nil)                 // CALL db.labels()
//	cypher.Procedure("db.idx.fulltext.queryNodes",
//	    []interface{}{"person", "roi"}, []string{"node"})
//	// CALL db.idx.fulltext.queryNodes('person','roi') YIELD node
func Procedure(name string, args []interface{}, yields []string) (string, error) {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)

	sb.WriteString("CALL ")
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := writeLiteral(sb, a); err != nil {
			return "", fmt.Errorf("procedure %s argument %d: %w", name, i, err)
		}
	}
	sb.WriteByte(')')
	if len(yields) > 0 {
		sb.WriteString(" YIELD ")
		sb.WriteString(strings.Join(yields, ","))
	}
	return sb.String(), nil
}
