package middleware

import (
	"fmt"
	"regexp"
)

// Input validation and sanitization utilities

var (
	tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)
	issueIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,127}$`)
)

// ValidateTenantID checks the tenant path segment before it reaches SQL
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant cannot be empty")
	}
	if !tenantIDPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant id: %s", tenant)
	}
	return nil
}

// ValidateIssueID checks the issueId request parameter
func ValidateIssueID(id string) error {
	if id == "" {
		return fmt.Errorf("issueId is required")
	}
	if !issueIDPattern.MatchString(id) {
		return fmt.Errorf("invalid issue id: %s", id)
	}
	return nil
}
