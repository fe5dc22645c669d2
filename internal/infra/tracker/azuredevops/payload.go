package azuredevops

import (
	"fmt"
	"html"
	"strings"

	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

// BuildPayload maps an issue plus its remediation context onto an ordered
// JSON-patch operation list. Pure; no I/O.
func (c *Client) BuildPayload(issue *issues.Issue, rem tickets.Remediation) tickets.Payload {
	ops := []PatchOp{
		{Op: "add", Path: "/fields/System.Title", Value: title(issue)},
		{Op: "add", Path: "/fields/System.Description", Value: c.renderDescription(issue, rem)},
		{Op: "add", Path: "/fields/System.Tags", Value: "accessibility; " + string(issue.Impact)},
		{Op: "add", Path: "/fields/Microsoft.VSTS.Common.Priority", Value: priority(issue)},
	}
	if c.areaPath != "" {
		ops = append(ops, PatchOp{Op: "add", Path: "/fields/System.AreaPath", Value: c.areaPath})
	}
	if c.iteration != "" {
		ops = append(ops, PatchOp{Op: "add", Path: "/fields/System.IterationPath", Value: c.iteration})
	}
	return ops
}

func title(issue *issues.Issue) string {
	name := issue.RuleName
	if name == "" {
		name = issue.RuleID
	}
	return fmt.Sprintf("[Accessibility] %s", name)
}

// priority maps impact onto the 1-4 priority field.
func priority(issue *issues.Issue) int {
	switch issue.Impact {
	case issues.ImpactCritical:
		return 1
	case issues.ImpactSerious:
		return 2
	case issues.ImpactModerate:
		return 3
	default:
		return 4
	}
}

// renderDescription produces the HTML body work items expect.
func (c *Client) renderDescription(issue *issues.Issue, rem tickets.Remediation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(issue.Description))
	fmt.Fprintf(&b, "<p><b>Rule:</b> %s (%s)<br/>", html.EscapeString(issue.RuleName), html.EscapeString(issue.RuleID))
	fmt.Fprintf(&b, "<b>Impact:</b> %s<br/>", issue.Impact)
	if issue.WCAGLevel != "" {
		fmt.Fprintf(&b, "<b>WCAG level:</b> %s<br/>", html.EscapeString(issue.WCAGLevel))
	}
	fmt.Fprintf(&b, "<b>Occurrences:</b> %d</p>", issue.Occurrences)

	if len(issue.Pages) > 0 {
		b.WriteString("<h3>Affected pages</h3><ul>")
		for _, page := range issue.Pages {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(page))
		}
		b.WriteString("</ul>")
	}

	if len(rem.OffendingElements) > 0 {
		b.WriteString("<h3>Offending elements</h3><ul>")
		for _, el := range rem.OffendingElements {
			b.WriteString("<li>")
			if el.Selector != "" {
				fmt.Fprintf(&b, "<code>%s</code><br/>", html.EscapeString(el.Selector))
			}
			if el.HTML != "" {
				fmt.Fprintf(&b, "<pre>%s</pre>", html.EscapeString(el.HTML))
			}
			if el.FailureSummary != "" {
				b.WriteString(html.EscapeString(el.FailureSummary))
			}
			if el.Screenshot != "" {
				fmt.Fprintf(&b, `<br/><a href="%s">Element screenshot</a>`, html.EscapeString(el.Screenshot))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	if len(rem.Suggestions) > 0 {
		b.WriteString("<h3>Suggested fixes</h3><ul>")
		for _, s := range rem.Suggestions {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(s))
		}
		b.WriteString("</ul>")
	}

	if rem.Screenshots != nil {
		b.WriteString("<h3>Screenshots</h3><ul>")
		if rem.Screenshots.FullPage != "" {
			fmt.Fprintf(&b, `<li><a href="%s">Full page</a></li>`, html.EscapeString(rem.Screenshots.FullPage))
		}
		for i, el := range rem.Screenshots.Elements {
			fmt.Fprintf(&b, `<li><a href="%s">Element %d</a></li>`, html.EscapeString(el), i+1)
		}
		b.WriteString("</ul>")
	}

	if c.dashboardURL != "" && issue.FirstSeenScanID != "" {
		fmt.Fprintf(&b, `<p><a href="%s/scans/%s">View scan</a></p>`, c.dashboardURL, issue.FirstSeenScanID)
	}
	return b.String()
}
