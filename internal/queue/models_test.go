package queue

import "testing"

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  Status
		ok    bool
	}{
		{"pending", StatusPending, true},
		{" Completed ", StatusCompleted, true},
		{"REVIEW", StatusReview, true},
		{"", "", false},
		{"bogus", "bogus", false},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestIsProcessing(t *testing.T) {
	if !(Item{Status: StatusDownloading}).IsProcessing() {
		t.Fatal("downloading should be processing")
	}
	if !(Item{Status: StatusVerifying}).IsProcessing() {
		t.Fatal("verifying should be processing")
	}
	if (Item{Status: StatusPending}).IsProcessing() {
		t.Fatal("pending should not be processing")
	}
}

func TestResultsRoundTrip(t *testing.T) {
	item := &Item{}
	if got := item.Results(); got != nil {
		t.Fatalf("expected nil results, got %#v", got)
	}

	err := item.SetResults([]FileResult{
		{URL: "https://example.com/a", FilePath: "/tmp/a.mp3", Verdict: "ok"},
		{URL: "https://example.com/b", Verdict: "failed", Errors: []string{"Invalid or zero duration"}},
	})
	if err != nil {
		t.Fatalf("SetResults failed: %v", err)
	}

	results := item.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Errors[0] != "Invalid or zero duration" {
		t.Fatalf("unexpected error payload: %#v", results[1])
	}

	if err := item.SetResults(nil); err != nil {
		t.Fatalf("SetResults(nil) failed: %v", err)
	}
	if item.ResultsJSON != "" {
		t.Fatalf("expected cleared results JSON, got %q", item.ResultsJSON)
	}
}

func TestSetFailedAndReview(t *testing.T) {
	item := &Item{Status: StatusVerifying}
	item.SetFailed("boom")
	if item.Status != StatusFailed || item.ErrorMessage != "boom" {
		t.Fatalf("unexpected failed item: %#v", item)
	}

	item = &Item{Status: StatusVerifying}
	item.SetReview("quality below threshold")
	if item.Status != StatusReview || !item.NeedsReview || item.ReviewReason != "quality below threshold" {
		t.Fatalf("unexpected review item: %#v", item)
	}
}

func TestResultsIgnoresMalformedJSON(t *testing.T) {
	item := Item{ResultsJSON: "{not json"}
	if got := item.Results(); got != nil {
		t.Fatalf("expected nil for malformed payload, got %#v", got)
	}
}
