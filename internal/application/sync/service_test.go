package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/scans"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeIssues struct {
	mu      sync.Mutex
	store   map[issues.IssueID]*issues.Issue
	syncRef map[issues.IssueID]string
	syncErr map[issues.IssueID]string
}

func newFakeIssues(list ...*issues.Issue) *fakeIssues {
	f := &fakeIssues{
		store:   make(map[issues.IssueID]*issues.Issue),
		syncRef: make(map[issues.IssueID]string),
		syncErr: make(map[issues.IssueID]string),
	}
	for _, is := range list {
		f.store[is.ID] = is
	}
	return f
}

func (f *fakeIssues) Get(_ context.Context, _ string, id issues.IssueID) (*issues.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.store[id]
	if !ok {
		return nil, issues.ErrNotFound
	}
	cp := *is
	return &cp, nil
}

func (f *fakeIssues) SetSyncSuccess(_ context.Context, _ string, id issues.IssueID, _ integrations.Provider, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncRef[id] = ref
	delete(f.syncErr, id)
	return nil
}

func (f *fakeIssues) SetSyncError(_ context.Context, _ string, id issues.IssueID, _ integrations.Provider, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncErr[id] = msg
	return nil
}

func (f *fakeIssues) ClearSync(_ context.Context, _ string, id issues.IssueID, _ integrations.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.syncRef, id)
	delete(f.syncErr, id)
	return nil
}

type fakeScans struct {
	scans map[scans.ScanID]*scans.Scan
}

func (f *fakeScans) Get(_ context.Context, _ string, id scans.ScanID) (*scans.Scan, error) {
	if s, ok := f.scans[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scan %s not found", id)
}

type fakeMappings struct {
	mu         sync.Mutex
	rows       map[string]*tickets.Mapping
	failInsert bool
}

func newFakeMappings() *fakeMappings {
	return &fakeMappings{rows: make(map[string]*tickets.Mapping)}
}

func mappingKey(tenant string, issueID issues.IssueID, provider integrations.Provider) string {
	return tenant + "|" + string(issueID) + "|" + string(provider)
}

func (f *fakeMappings) Get(_ context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) (*tickets.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[mappingKey(tenant, issueID, provider)]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMappings) Insert(_ context.Context, m *tickets.Mapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errors.New("insert failed")
	}
	cp := *m
	f.rows[mappingKey(m.TenantID, m.IssueID, m.Provider)] = &cp
	return nil
}

func (f *fakeMappings) Delete(_ context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, mappingKey(tenant, issueID, provider))
	return nil
}

func (f *fakeMappings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeResolver struct {
	cfg *integrations.Config
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, _ integrations.Provider) (*integrations.Config, error) {
	if f.cfg == nil {
		return nil, integrations.ErrNotConfigured
	}
	return f.cfg, nil
}

// fakeClient simulates a tracker: Create registers a live ref, Fetch answers
// from the live set.
type fakeClient struct {
	mu        sync.Mutex
	provider  integrations.Provider
	live      map[string]bool
	creates   int
	createErr error
	fetchErr  error
	lastRem   tickets.Remediation
}

func newFakeClient(provider integrations.Provider) *fakeClient {
	return &fakeClient{provider: provider, live: make(map[string]bool)}
}

func (c *fakeClient) Provider() integrations.Provider { return c.provider }

func (c *fakeClient) BuildPayload(issue *issues.Issue, rem tickets.Remediation) tickets.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRem = rem
	return map[string]string{"title": issue.RuleName}
}

func (c *fakeClient) Create(_ context.Context, _ tickets.Payload) (*tickets.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.creates++
	ref := "T-" + strconv.Itoa(c.creates)
	c.live[ref] = true
	return &tickets.Ticket{ID: ref, Ref: ref}, nil
}

func (c *fakeClient) Fetch(_ context.Context, ref string) (*tickets.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	if !c.live[ref] {
		return nil, tickets.ErrTicketNotFound
	}
	return &tickets.Ticket{ID: ref, Ref: ref}, nil
}

func (c *fakeClient) BuildURL(ref string) string {
	return "https://tracker.example/browse/" + ref
}

func (c *fakeClient) createCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates
}

type fakeFactory struct{ client tickets.TrackerClient }

func (f *fakeFactory) New(_ *integrations.Config) (tickets.TrackerClient, error) {
	return f.client, nil
}

func testIssue() *issues.Issue {
	return &issues.Issue{
		ID:          "i1",
		RuleID:      "color-contrast",
		RuleName:    "Color Contrast",
		Description: "Text elements do not have sufficient contrast",
		Impact:      issues.ImpactSerious,
	}
}

func testConfig() *integrations.Config {
	return &integrations.Config{
		ID:       "cfg1",
		Provider: integrations.ProviderJira,
		BaseURL:  "https://acme.atlassian.net",
		Project:  "ACC",
		Active:   true,
	}
}

func newTestService(client *fakeClient) (*Service, *fakeIssues, *fakeMappings) {
	issueRepo := newFakeIssues(testIssue())
	mappings := newFakeMappings()
	svc := &Service{
		Issues:       issueRepo,
		Scans:        &fakeScans{},
		Mappings:     mappings,
		Integrations: &fakeResolver{cfg: testConfig()},
		Trackers:     &fakeFactory{client: client},
		Clock:        fixedClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	}
	return svc, issueRepo, mappings
}

func TestSyncIssueCreatesThenReturnsExisting(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, issueRepo, mappings := newTestService(client)
	ctx := context.Background()

	first, err := svc.SyncIssue(ctx, "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Existing {
		t.Error("first sync should create, not report existing")
	}
	if first.URL != "https://tracker.example/browse/"+first.TicketRef {
		t.Errorf("URL: got %q", first.URL)
	}

	second, err := svc.SyncIssue(ctx, "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !second.Existing {
		t.Error("second sync should report existing")
	}
	if second.TicketRef != first.TicketRef {
		t.Errorf("refs diverged: %q vs %q", second.TicketRef, first.TicketRef)
	}
	if got := client.createCount(); got != 1 {
		t.Errorf("creates: got %d, want 1", got)
	}
	if got := mappings.count(); got != 1 {
		t.Errorf("mapping rows: got %d, want 1", got)
	}
	if got := issueRepo.syncRef["i1"]; got != first.TicketRef {
		t.Errorf("sync flags: got %q, want %q", got, first.TicketRef)
	}
}

func TestSyncIssueConcurrentCallsConverge(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, _, mappings := newTestService(client)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SyncIssue(ctx, "t1", "i1", integrations.ProviderJira)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if got := mappings.count(); got != 1 {
		t.Fatalf("mapping rows after race: got %d, want 1", got)
	}

	// Every later caller converges on the surviving mapping.
	m, err := svc.Lookup(ctx, "t1", "i1", integrations.ProviderJira)
	if err != nil || m == nil {
		t.Fatalf("lookup after race: m=%v err=%v", m, err)
	}
	res, err := svc.SyncIssue(ctx, "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("follow-up sync: %v", err)
	}
	if !res.Existing || res.TicketRef != m.TicketRef {
		t.Errorf("follow-up: got %+v, want existing %q", res, m.TicketRef)
	}
}

func TestSyncIssueHealsStaleMapping(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, issueRepo, mappings := newTestService(client)
	ctx := context.Background()

	// Mapping points at a ticket the tracker no longer knows.
	stale := &tickets.Mapping{
		ID:        "m-old",
		TenantID:  "t1",
		IssueID:   "i1",
		Provider:  integrations.ProviderJira,
		TicketID:  "T-GONE",
		TicketRef: "T-GONE",
	}
	if err := mappings.Insert(ctx, stale); err != nil {
		t.Fatal(err)
	}
	issueRepo.syncRef["i1"] = "T-GONE"

	res, err := svc.SyncIssue(ctx, "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Existing {
		t.Error("stale mapping should be healed by a fresh create")
	}
	if res.TicketRef == "T-GONE" {
		t.Error("stale ref survived")
	}
	m, _ := mappings.Get(ctx, "t1", "i1", integrations.ProviderJira)
	if m == nil || m.TicketRef != res.TicketRef {
		t.Errorf("mapping after heal: %+v", m)
	}
	if got := issueRepo.syncRef["i1"]; got != res.TicketRef {
		t.Errorf("sync flags after heal: got %q, want %q", got, res.TicketRef)
	}
}

func TestSyncIssueAmbiguousVerifyKeepsMapping(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	client.fetchErr = &tickets.TransportError{Provider: integrations.ProviderJira, Err: errors.New("upstream 503")}
	svc, _, mappings := newTestService(client)
	ctx := context.Background()

	existing := &tickets.Mapping{
		ID:        "m1",
		TenantID:  "t1",
		IssueID:   "i1",
		Provider:  integrations.ProviderJira,
		TicketID:  "T-1",
		TicketRef: "T-1",
		URL:       "https://tracker.example/browse/T-1",
	}
	if err := mappings.Insert(ctx, existing); err != nil {
		t.Fatal(err)
	}

	res, err := svc.SyncIssue(ctx, "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.Existing || res.TicketRef != "T-1" {
		t.Errorf("ambiguous verification must fall back to the mapping, got %+v", res)
	}
	if got := client.createCount(); got != 0 {
		t.Errorf("creates: got %d, want 0", got)
	}
	if got := mappings.count(); got != 1 {
		t.Errorf("mapping rows: got %d, want 1", got)
	}
}

func TestSyncIssueNotConfigured(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, _, _ := newTestService(client)
	svc.Integrations = &fakeResolver{}

	_, err := svc.SyncIssue(context.Background(), "t1", "i1", integrations.ProviderJira)
	if !errors.Is(err, integrations.ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
	if got := client.createCount(); got != 0 {
		t.Errorf("creates: got %d, want 0", got)
	}
}

func TestSyncIssueUnknownIssue(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, _, _ := newTestService(client)

	_, err := svc.SyncIssue(context.Background(), "t1", "nope", integrations.ProviderJira)
	if !errors.Is(err, issues.ErrNotFound) {
		t.Fatalf("got %v, want issues.ErrNotFound", err)
	}
}

func TestSyncIssueCreateFailureRecordsSyncError(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	client.createErr = &tickets.ValidationError{Provider: integrations.ProviderJira, Message: "project ACC does not exist"}
	svc, issueRepo, mappings := newTestService(client)

	_, err := svc.SyncIssue(context.Background(), "t1", "i1", integrations.ProviderJira)
	var valErr *tickets.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if got := issueRepo.syncErr["i1"]; got == "" {
		t.Error("create failure should be persisted on the issue")
	}
	if got := mappings.count(); got != 0 {
		t.Errorf("mapping rows: got %d, want 0", got)
	}
}

func TestSyncIssueMappingPersistFailureStillSucceeds(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, _, mappings := newTestService(client)
	mappings.failInsert = true

	res, err := svc.SyncIssue(context.Background(), "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("mapping persistence must never fail the request: %v", err)
	}
	if res.Existing || res.TicketRef == "" {
		t.Errorf("got %+v, want a fresh ticket", res)
	}
}

func TestSyncIssueUsesScanRemediation(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, issueRepo, _ := newTestService(client)

	issue := testIssue()
	issue.FirstSeenScanID = "s1"
	issueRepo.store["i1"] = issue
	svc.Scans = &fakeScans{scans: map[scans.ScanID]*scans.Scan{
		"s1": {
			ID:       "s1",
			TenantID: "t1",
			Type:     scans.TypeWeb,
			PayloadJSON: `{"remediationReport":[{"ruleName":"color-contrast",` +
				`"suggestions":["darken the text"],"offendingElements":["<p>x</p>"]}]}`,
		},
	}}

	if _, err := svc.SyncIssue(context.Background(), "t1", "i1", integrations.ProviderJira); err != nil {
		t.Fatalf("sync: %v", err)
	}
	client.mu.Lock()
	rem := client.lastRem
	client.mu.Unlock()
	if len(rem.Suggestions) != 1 || rem.Suggestions[0] != "darken the text" {
		t.Errorf("payload remediation: got %+v", rem)
	}
}

func TestLookupWithoutMapping(t *testing.T) {
	t.Parallel()
	client := newFakeClient(integrations.ProviderJira)
	svc, _, _ := newTestService(client)

	m, err := svc.Lookup(context.Background(), "t1", "i1", integrations.ProviderJira)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if m != nil {
		t.Errorf("got %+v, want nil mapping", m)
	}
}
