package azuredevops

import (
	"strings"
	"testing"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

func sampleIssue() *issues.Issue {
	return &issues.Issue{
		ID:          "i1",
		RuleID:      "image-alt",
		RuleName:    "Images must have alternate text",
		Description: "Images lack alt attributes & screen readers skip them",
		Impact:      issues.ImpactCritical,
		Occurrences: 2,
	}
}

func testClient(cfg *integrations.Config) *Client {
	if cfg == nil {
		cfg = &integrations.Config{
			BaseURL: "https://dev.azure.com/acme",
			Project: "Web",
		}
	}
	return New(cfg, "pat-token", "https://app.acme.test")
}

func TestBuildPayloadOps(t *testing.T) {
	t.Parallel()
	c := testClient(nil)

	ops, ok := c.BuildPayload(sampleIssue(), tickets.Remediation{
		OffendingElements: []tickets.OffendingElement{
			{HTML: `<img src="hero.png">`},
		},
		Suggestions: []string{"add alt text"},
	}).([]PatchOp)
	if !ok {
		t.Fatal("payload type")
	}

	wantPaths := []string{
		"/fields/System.Title",
		"/fields/System.Description",
		"/fields/System.Tags",
		"/fields/Microsoft.VSTS.Common.Priority",
	}
	if len(ops) != len(wantPaths) {
		t.Fatalf("ops: got %d, want %d", len(ops), len(wantPaths))
	}
	for i, want := range wantPaths {
		if ops[i].Op != "add" || ops[i].Path != want {
			t.Errorf("op %d: got %s %s, want add %s", i, ops[i].Op, ops[i].Path, want)
		}
	}

	if ops[0].Value != "[Accessibility] Images must have alternate text" {
		t.Errorf("title: got %v", ops[0].Value)
	}
	if ops[2].Value != "accessibility; critical" {
		t.Errorf("tags: got %v", ops[2].Value)
	}
	if ops[3].Value != 1 {
		t.Errorf("priority: got %v, want 1", ops[3].Value)
	}

	desc, _ := ops[1].Value.(string)
	if !strings.Contains(desc, "&lt;img src=&#34;hero.png&#34;&gt;") {
		t.Errorf("offending markup must be escaped:\n%s", desc)
	}
	if !strings.Contains(desc, "alt attributes &amp; screen readers") {
		t.Errorf("description must be escaped:\n%s", desc)
	}
	if !strings.Contains(desc, "<li>add alt text</li>") {
		t.Errorf("suggestions missing:\n%s", desc)
	}
}

func TestBuildPayloadAreaAndIteration(t *testing.T) {
	t.Parallel()
	c := testClient(&integrations.Config{
		BaseURL:       "https://dev.azure.com/acme",
		Project:       "Web",
		AreaPath:      `Web\Accessibility`,
		IterationPath: `Web\Sprint 12`,
	})

	ops := c.BuildPayload(sampleIssue(), tickets.Remediation{}).([]PatchOp)
	if len(ops) != 6 {
		t.Fatalf("ops: got %d, want 6", len(ops))
	}
	if ops[4].Path != "/fields/System.AreaPath" || ops[4].Value != `Web\Accessibility` {
		t.Errorf("area path op: %+v", ops[4])
	}
	if ops[5].Path != "/fields/System.IterationPath" || ops[5].Value != `Web\Sprint 12` {
		t.Errorf("iteration path op: %+v", ops[5])
	}
}

func TestPriorityMapping(t *testing.T) {
	t.Parallel()
	c := testClient(nil)

	for impact, want := range map[issues.Impact]int{
		issues.ImpactCritical: 1,
		issues.ImpactSerious:  2,
		issues.ImpactModerate: 3,
		issues.ImpactMinor:    4,
		issues.Impact(""):     4,
	} {
		issue := sampleIssue()
		issue.Impact = impact
		ops := c.BuildPayload(issue, tickets.Remediation{}).([]PatchOp)
		if ops[3].Value != want {
			t.Errorf("impact %q: got %v, want %d", impact, ops[3].Value, want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()
	c := testClient(nil)
	if got, want := c.BuildURL("107"), "https://dev.azure.com/acme/Web/_workitems/edit/107"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
