package remediation

import (
	"strings"

	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/scans"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

// Extract reconstructs remediation context for an issue from the scan result
// that produced it. It never fails: when nothing matches it synthesizes a
// single offending element from the issue's own notes and description so the
// ticket is never empty of context.
//
// Matching order for web scans, first hit wins:
//  1. report entry rule name equals the issue's rule name or rule id
//  2. case-insensitive exact description match
//  3. fuzzy match: descriptions share any word longer than 3 characters
//  4. rule-id pattern table against report entry descriptions
//  5. raw results[].issues[].nodes[] scan with the same comparisons
//  6. notes/description fallback
//
// Document scans skip straight to a single notes-based element.
func Extract(issue *issues.Issue, res *scans.Result) tickets.Remediation {
	if res == nil {
		return fallback(issue)
	}
	if res.Type == scans.TypeDocument {
		return fromNotes(issue)
	}

	shots := pageScreenshots(res)

	if entry := matchReport(issue, res.RemediationReport); entry != nil {
		rem := fromReportEntry(entry)
		rem.Screenshots = shots
		return rem
	}
	if rem, ok := fromRawResults(issue, res.Results); ok {
		rem.Screenshots = shots
		return rem
	}

	rem := fallback(issue)
	rem.Screenshots = shots
	return rem
}

// matchReport applies heuristics 1-4 over the remediation report.
func matchReport(issue *issues.Issue, report []scans.ReportEntry) *scans.ReportEntry {
	// 1. exact rule name / rule id
	for i := range report {
		if report[i].RuleName == issue.RuleName || report[i].RuleName == issue.RuleID {
			return &report[i]
		}
	}
	// 2. case-insensitive exact description
	for i := range report {
		if report[i].Description != "" && strings.EqualFold(report[i].Description, issue.Description) {
			return &report[i]
		}
	}
	// 3. fuzzy: any shared word longer than 3 chars
	issueWords := significantWords(issue.Description)
	for i := range report {
		if sharesWord(issueWords, significantWords(report[i].Description)) {
			return &report[i]
		}
	}
	// 4. rule-id pattern table
	if pattern, ok := rulePatterns[issue.RuleID]; ok {
		for i := range report {
			if matchesPattern(report[i].Description, pattern) || matchesPattern(report[i].RuleName, pattern) {
				return &report[i]
			}
		}
	}
	return nil
}

func fromReportEntry(entry *scans.ReportEntry) tickets.Remediation {
	elements := make([]tickets.OffendingElement, 0, len(entry.OffendingElements))
	for _, html := range entry.OffendingElements {
		elements = append(elements, tickets.OffendingElement{HTML: html})
	}
	return tickets.Remediation{
		OffendingElements: elements,
		Suggestions:       entry.Suggestions,
	}
}

// fromRawResults is heuristic 5: scan the raw engine output directly.
func fromRawResults(issue *issues.Issue, pages []scans.PageResult) (tickets.Remediation, bool) {
	issueWords := significantWords(issue.Description)
	pattern := rulePatterns[issue.RuleID]

	for _, page := range pages {
		for _, raw := range page.Issues {
			if !rawMatches(issue, raw, issueWords, pattern) {
				continue
			}
			elements := make([]tickets.OffendingElement, 0, len(raw.Nodes))
			for _, n := range raw.Nodes {
				elements = append(elements, tickets.OffendingElement{
					Selector:       strings.Join(n.Target, " "),
					HTML:           n.HTML,
					FailureSummary: n.FailureSummary,
					Screenshot:     n.Screenshot,
				})
			}
			if len(elements) == 0 {
				continue
			}
			return tickets.Remediation{OffendingElements: elements}, true
		}
	}
	return tickets.Remediation{}, false
}

func rawMatches(issue *issues.Issue, raw scans.RawIssue, issueWords map[string]struct{}, pattern string) bool {
	if raw.RuleID != "" && (raw.RuleID == issue.RuleID || raw.RuleID == issue.RuleName) {
		return true
	}
	if raw.Description != "" && strings.EqualFold(raw.Description, issue.Description) {
		return true
	}
	if sharesWord(issueWords, significantWords(raw.Description)) {
		return true
	}
	return pattern != "" && matchesPattern(raw.Description, pattern)
}

// fallback synthesizes context from the issue record itself. Last resort for
// web scans, also used when no scan result is available at all.
func fallback(issue *issues.Issue) tickets.Remediation {
	el := tickets.OffendingElement{FailureSummary: issue.Description}
	var suggestions []string
	if issue.Notes != "" {
		suggestions = []string{issue.Notes}
	}
	return tickets.Remediation{
		OffendingElements: []tickets.OffendingElement{el},
		Suggestions:       suggestions,
	}
}

// fromNotes builds the document-scan remediation: the engine writes fix
// guidance straight into the issue's notes field.
func fromNotes(issue *issues.Issue) tickets.Remediation {
	summary := issue.Notes
	if summary == "" {
		summary = issue.Description
	}
	return tickets.Remediation{
		OffendingElements: []tickets.OffendingElement{{FailureSummary: summary}},
	}
}

// pageScreenshots returns results[0].screenshots verbatim when present.
func pageScreenshots(res *scans.Result) *scans.Screenshots {
	if len(res.Results) == 0 {
		return nil
	}
	return res.Results[0].Screenshots
}

func significantWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharesWord(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for w := range b {
		if _, ok := a[w]; ok {
			return true
		}
	}
	return false
}

// matchesPattern reports whether every word of the pattern occurs in the
// text, case-insensitively. Report entries phrase rules with filler between
// the characteristic words ("minimum contrast" must still hit "minimum color
// contrast ratio"), so a plain substring check is too strict.
func matchesPattern(text, pattern string) bool {
	if text == "" || pattern == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range strings.Fields(strings.ToLower(pattern)) {
		if !strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
