package azuredevops

// PatchOp is one JSON-patch operation; the work item API is patch-document
// based rather than object-based.
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// workItemResponse is the subset of a work item body we care about.
type workItemResponse struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields map[string]any `json:"fields"`
}

// errorResponse is the standard Azure DevOps error envelope.
type errorResponse struct {
	Message   string `json:"message"`
	TypeKey   string `json:"typeKey"`
	ErrorCode int    `json:"errorCode"`
}
