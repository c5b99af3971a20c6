package graph

import (
	"strings"
	"unicode"

	"github.com/go-faster/errors"
)

var ErrNotReadOnly = errors.New("only read-only Cypher is allowed")

var cypherWriteClauses = map[string]struct{}{
	"CREATE": {}, "MERGE": {}, "DELETE": {}, "DETACH": {}, "SET": {}, "REMOVE": {},
	"DROP": {}, "FOREACH": {}, "LOAD": {}, "GRANT": {}, "REVOKE": {}, "DENY": {},
	"ALTER": {}, "RENAME": {},
}

// Procedures that only read. Matched by lower-cased prefix.
var readProcedures = []string{
	"db.labels", "db.relationshiptypes", "db.propertykeys", "db.schema.",
	"apoc.meta.", "apoc.algo.", "apoc.path.",
}

// cypherTokens splits a query into words, keeping dotted names such as
// "apoc.meta.schema" or "n.set" together. Literals, backquoted names and
// comments are skipped.
func cypherTokens(query string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			flush()
			for i++; i < len(rs) && rs[i] != c; i++ {
				if rs[i] == '\\' && c != '`' {
					i++
				}
			}
		case c == '/' && i+1 < len(rs) && rs[i+1] == '/':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(rs) && rs[i+1] == '*':
			flush()
			for i += 2; i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/'); i++ {
			}
			i++
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || (c == '.' && cur.Len() > 0):
			cur.WriteRune(c)
		default:
			flush()
		}
	}
	flush()
	return out
}

// CheckReadOnly rejects Cypher containing write clauses or calls to
// procedures outside the read-only allow list.
func CheckReadOnly(cypher string) error {
	tokens := cypherTokens(cypher)
	if len(tokens) == 0 {
		return errors.New("empty query")
	}
	for i, tok := range tokens {
		upper := strings.ToUpper(tok)
		if _, ok := cypherWriteClauses[upper]; ok {
			return errors.Wrapf(ErrNotReadOnly, "clause %s", upper)
		}
		if upper != "CALL" || i+1 >= len(tokens) {
			continue
		}
		proc := strings.ToLower(tokens[i+1])
		if !strings.Contains(proc, ".") {
			// CALL { ... } subquery; its body is checked token by token.
			continue
		}
		allowed := false
		for _, p := range readProcedures {
			if strings.HasPrefix(proc, p) {
				allowed = true
				break
			}
		}
		if !allowed {
			return errors.Wrapf(ErrNotReadOnly, "procedure %s", tokens[i+1])
		}
	}
	return nil
}
