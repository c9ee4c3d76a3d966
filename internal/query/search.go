package query

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a search term into a case-folded substring pattern for
// a SQL LIKE with backslash as the escape character. Every wildcard in the
// term is neutralized, so the match is a literal substring match.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// CustomerSearch matches customers whose name contains Term, or whose
// designated last order is in LastOrderIDs. The id set is pre-resolved from
// orders whose delivery address contains Term (capped at MaxAddressMatches)
// so the primary query never needs a two-hop join.
type CustomerSearch struct {
	Term         string
	LastOrderIDs []string
}

// OrderSearch matches orders where a product title contains Term.
// OrderNumber is set when the term parses as a number; it is OR-combined as
// an exact match on the public order number.
type OrderSearch struct {
	Term        string
	OrderNumber *int64
}
