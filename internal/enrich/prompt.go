// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// analysisPromptTmpl is the prompt sent for each paper. It carries the
// abstract and the configured research-area description and constrains the
// verdict to exactly two labels.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are a research assistant triaging newly published papers for a researcher.

The researcher's area of interest:
{{.ResearchArea}}

Paper title: {{.Title}}

Abstract:
{{.Abstract}}

Decide whether this paper is related to the researcher's area of interest and produce a structured reading summary.

Respond with a single JSON object containing exactly these fields:
- "verdict": "Related" or "Unrelated" (no other value)
- "summary": two or three sentences summarizing the paper
- "motivation": the problem the paper addresses
- "differences_from_prior_work": how the approach departs from prior work
- "contributions_and_novelty": the main claimed contributions
- "proposed_method": the method or system proposed
- "results": the key experimental findings

Use an empty string for any field you cannot extract from the abstract. Do not include any text outside the JSON object.
`))

// strictPromptTmpl is the retry prompt used after a response failed to
// parse. Same request, harder constraints.
var strictPromptTmpl = template.Must(template.New("strict").Parse(`Return ONLY a raw JSON object. No prose, no Markdown, no code fences.

The object must have exactly these string fields: "verdict", "summary", "motivation", "differences_from_prior_work", "contributions_and_novelty", "proposed_method", "results".

The "verdict" field must be exactly "Related" or "Unrelated". Use "" for anything you cannot extract.

Classify this paper against the research area below and summarize it.

Research area:
{{.ResearchArea}}

Paper title: {{.Title}}

Abstract:
{{.Abstract}}
`))

// promptData feeds both templates.
type promptData struct {
	Title        string
	Abstract     string
	ResearchArea string
}

// renderPrompt executes the normal or strict template for one paper.
func renderPrompt(paper types.PaperRecord, researchArea string, strict bool) (string, error) {
	tmpl := analysisPromptTmpl
	if strict {
		tmpl = strictPromptTmpl
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		Title:        paper.Title,
		Abstract:     paper.Abstract,
		ResearchArea: researchArea,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
