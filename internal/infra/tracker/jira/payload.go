package jira

import (
	"fmt"
	"strings"

	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

// BuildPayload maps an issue plus its remediation context onto a Jira
// issue-create field set. Pure; no I/O.
func (c *Client) BuildPayload(issue *issues.Issue, rem tickets.Remediation) tickets.Payload {
	return &CreatePayload{
		Fields: Fields{
			Project:     ProjectRef{Key: c.project},
			Summary:     summary(issue),
			Description: c.renderDescription(issue, rem),
			IssueType:   IssueTypeRef{Name: c.issueType},
			Labels:      []string{"accessibility", string(issue.Impact)},
			Priority:    priorityRef(issue),
		},
	}
}

func summary(issue *issues.Issue) string {
	name := issue.RuleName
	if name == "" {
		name = issue.RuleID
	}
	return fmt.Sprintf("[Accessibility] %s", name)
}

// priorityRef maps impact onto Jira's default priority scheme.
func priorityRef(issue *issues.Issue) *PriorityRef {
	switch issue.Impact {
	case issues.ImpactCritical:
		return &PriorityRef{Name: "Highest"}
	case issues.ImpactSerious:
		return &PriorityRef{Name: "High"}
	case issues.ImpactModerate:
		return &PriorityRef{Name: "Medium"}
	case issues.ImpactMinor:
		return &PriorityRef{Name: "Low"}
	}
	return nil
}

// renderDescription produces Jira wiki markup embedding the rule metadata,
// remediation details, and screenshot links.
func (c *Client) renderDescription(issue *issues.Issue, rem tickets.Remediation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", issue.Description)
	fmt.Fprintf(&b, "*Rule:* %s (%s)\n", issue.RuleName, issue.RuleID)
	fmt.Fprintf(&b, "*Impact:* %s\n", issue.Impact)
	if issue.WCAGLevel != "" {
		fmt.Fprintf(&b, "*WCAG level:* %s\n", issue.WCAGLevel)
	}
	fmt.Fprintf(&b, "*Occurrences:* %d\n", issue.Occurrences)

	if len(issue.Pages) > 0 {
		b.WriteString("\nh3. Affected pages\n")
		for _, page := range issue.Pages {
			fmt.Fprintf(&b, "* %s\n", page)
		}
	}

	if len(rem.OffendingElements) > 0 {
		b.WriteString("\nh3. Offending elements\n")
		for _, el := range rem.OffendingElements {
			if el.Selector != "" {
				fmt.Fprintf(&b, "* Selector: {{%s}}\n", el.Selector)
			}
			if el.HTML != "" {
				fmt.Fprintf(&b, "{code:html}%s{code}\n", el.HTML)
			}
			if el.FailureSummary != "" {
				fmt.Fprintf(&b, "%s\n", el.FailureSummary)
			}
			if el.Screenshot != "" {
				fmt.Fprintf(&b, "[Element screenshot|%s]\n", el.Screenshot)
			}
		}
	}

	if len(rem.Suggestions) > 0 {
		b.WriteString("\nh3. Suggested fixes\n")
		for _, s := range rem.Suggestions {
			fmt.Fprintf(&b, "* %s\n", s)
		}
	}

	if rem.Screenshots != nil {
		b.WriteString("\nh3. Screenshots\n")
		if rem.Screenshots.FullPage != "" {
			fmt.Fprintf(&b, "[Full page|%s]\n", rem.Screenshots.FullPage)
		}
		for i, el := range rem.Screenshots.Elements {
			fmt.Fprintf(&b, "[Element %d|%s]\n", i+1, el)
		}
	}

	if link := c.scanLink(issue); link != "" {
		fmt.Fprintf(&b, "\n[View scan|%s]\n", link)
	}
	return b.String()
}

// scanLink deep-links back to the originating scan, where available.
func (c *Client) scanLink(issue *issues.Issue) string {
	if c.dashboardURL == "" || issue.FirstSeenScanID == "" {
		return ""
	}
	return c.dashboardURL + "/scans/" + issue.FirstSeenScanID
}
