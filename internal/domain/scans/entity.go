package scans

import (
	"encoding/json"
	"time"
)

// ScanID tipe untuk Scan
type ScanID string

// ScanType enum
type ScanType string

const (
	TypeWeb      ScanType = "web"
	TypeDocument ScanType = "document"
)

// Scan is the persisted scan record. The result payload is stored inline for
// small scans and offloaded to object storage for large ones.
type Scan struct {
	ID          ScanID    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Type        ScanType  `json:"scan_type"`
	Target      string    `json:"target,omitempty"`
	ScannedAt   time.Time `json:"scanned_at"`
	PayloadJSON string    `json:"-"`
	ArtifactKey string    `json:"artifact_key,omitempty"`
}

// Result is the scan engine's loosely structured output. There is no
// canonical join key between an issue and its remediation fragment; the
// extractor's heuristics compensate for that.
type Result struct {
	Type              ScanType      `json:"scan_type,omitempty"`
	RemediationReport []ReportEntry `json:"remediationReport,omitempty"`
	Results           []PageResult  `json:"results,omitempty"`
}

// ReportEntry is one per-rule remediation report item, keyed loosely by rule
// name.
type ReportEntry struct {
	RuleName          string   `json:"ruleName"`
	Description       string   `json:"description,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
	OffendingElements []string `json:"offendingElements,omitempty"`
}

// PageResult holds the raw per-page engine output.
type PageResult struct {
	URL         string       `json:"url,omitempty"`
	Issues      []RawIssue   `json:"issues,omitempty"`
	Screenshots *Screenshots `json:"screenshots,omitempty"`
}

// RawIssue is keyed by rule id, unlike ReportEntry.
type RawIssue struct {
	RuleID      string `json:"id"`
	Description string `json:"description,omitempty"`
	Nodes       []Node `json:"nodes,omitempty"`
}

// Node is a single offending DOM node.
type Node struct {
	HTML           string   `json:"html,omitempty"`
	Target         []string `json:"target,omitempty"`
	FailureSummary string   `json:"failureSummary,omitempty"`
	Screenshot     string   `json:"screenshot,omitempty"`
	BoundingBox    *Box     `json:"boundingBox,omitempty"`
}

// Box is a screenshot bounding box in page pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Screenshots are pre-hosted image URLs produced by the scan engine. They are
// linked into tickets verbatim, never re-uploaded.
type Screenshots struct {
	FullPage string   `json:"fullPage,omitempty"`
	Elements []string `json:"elements,omitempty"`
}

// ParseResult decodes a raw scan payload.
func ParseResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
