package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// useAPI points the package flags at a test server that answers every
// endpoint with body, and restores them afterwards.
func useAPI(t *testing.T, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("ODASH_API_URL", "")
	t.Setenv("ODASH_LOG_LEVEL", "")

	prevURL, prevNoCache, prevQuiet, prevJSON, prevOffline, prevWS :=
		flagAPIURL, flagNoCache, flagQuiet, flagJSON, flagOffline, flagWorkspace
	t.Cleanup(func() {
		flagAPIURL, flagNoCache, flagQuiet, flagJSON, flagOffline, flagWorkspace =
			prevURL, prevNoCache, prevQuiet, prevJSON, prevOffline, prevWS
	})
	flagAPIURL = srv.URL
	flagNoCache = true
	flagQuiet = true
	flagJSON = false
	flagOffline = false
	flagWorkspace = ""
}

func TestRunSummary_EmptyDataset(t *testing.T) {
	useAPI(t, `{"data":[]}`)
	if err := runSummary(nil, nil); err != nil {
		t.Fatalf("runSummary: %v", err)
	}
}

func TestRunSummary_FilterMatchesNothing(t *testing.T) {
	useAPI(t, `{"data":[{"workspaceName":"alpha","campaigns":[{"id":1,"name":"spring"}]}]}`)
	flagWorkspace = "zzz"
	if err := runSummary(nil, nil); err != nil {
		t.Fatalf("runSummary: %v", err)
	}
}

func TestRunSummary_WithData(t *testing.T) {
	useAPI(t, `{"data":[{"workspaceName":"alpha","campaigns":[{"id":1,"name":"spring"}]}]}`)
	if err := runSummary(nil, nil); err != nil {
		t.Fatalf("runSummary: %v", err)
	}
	flagJSON = true
	if err := runSummary(nil, nil); err != nil {
		t.Fatalf("runSummary --json: %v", err)
	}
}

func TestRunSummary_OfflineEmptySnapshot(t *testing.T) {
	useAPI(t, `{"data":[]}`)
	flagNoCache = false
	if err := runSummary(nil, nil); err != nil {
		t.Fatalf("runSummary online: %v", err)
	}

	flagOffline = true
	if err := runSummary(nil, nil); err != nil {
		t.Fatalf("runSummary --offline: %v", err)
	}
}

func TestRunDetailsAndReplyRates_EmptyDataset(t *testing.T) {
	useAPI(t, `{"data":[]}`)
	if err := runDetails(nil, nil); err != nil {
		t.Fatalf("runDetails: %v", err)
	}
	if err := runReplyRates(nil, nil); err != nil {
		t.Fatalf("runReplyRates: %v", err)
	}
}
