// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"fmt"
	"strings"
)

// BuildQuery assembles the search_query expression from the keyword list.
// Each keyword is matched as an exact phrase in both title and abstract, so
// hyphenated and multi-word terms are never tokenized apart ("few-shot"
// stays one phrase, never "few" OR "shot"); clauses combine with OR.
// Deterministic for identical input: caller order is preserved and no
// normalization happens beyond trimming. Blank keywords are dropped.
func BuildQuery(keywords []string) string {
	var clauses []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		// Embedded double quotes would unbalance the phrase.
		kw = strings.ReplaceAll(kw, `"`, "")
		clauses = append(clauses, fmt.Sprintf(`(ti:"%s" OR abs:"%s")`, kw, kw))
	}
	return strings.Join(clauses, " OR ")
}
