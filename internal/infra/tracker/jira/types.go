package jira

// CreatePayload is the POST /rest/api/2/issue body.
type CreatePayload struct {
	Fields Fields `json:"fields"`
}

// Fields is the standard issue-create field set.
type Fields struct {
	Project     ProjectRef   `json:"project"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	IssueType   IssueTypeRef `json:"issuetype"`
	Labels      []string     `json:"labels,omitempty"`
	Priority    *PriorityRef `json:"priority,omitempty"`
}

type ProjectRef struct {
	Key string `json:"key"`
}

type IssueTypeRef struct {
	Name string `json:"name"`
}

type PriorityRef struct {
	Name string `json:"name"`
}

// createResponse is the 201 body of an issue create.
type createResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// issueResponse is the subset of GET /rest/api/2/issue/{key} we care about.
type issueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// ErrorResponse is Jira's standard error envelope.
type ErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
