package remediation

// rulePatterns maps known rule ids to characteristic words of the
// report-entry description the scan engine emits for them. Used as heuristic
// 4 when neither names nor descriptions line up.
var rulePatterns = map[string]string{
	"color-contrast":     "minimum contrast",
	"image-alt":          "alternate text",
	"link-name":          "discernible text",
	"button-name":        "discernible text",
	"label":              "form elements labels",
	"html-has-lang":      "lang attribute",
	"document-title":     "title element",
	"meta-viewport":      "zooming scaling",
	"heading-order":      "heading levels",
	"region":             "contained landmarks",
	"duplicate-id":       "id attribute value",
	"aria-required-attr": "required aria attributes",
}
