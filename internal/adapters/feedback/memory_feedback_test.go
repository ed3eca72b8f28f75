package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

func TestMemoryFeedbackAppend(t *testing.T) {
	log := NewMemoryFeedback()
	entry := &core.FeedbackEntry{
		ProcessingID: "pid-1",
		Verdict:      core.LabelPhishing,
		TrustScore:   0.41,
		Feedback: core.Feedback{
			ReportedLabel: core.LabelSafe,
			Comment:       "newsletter, not phishing",
		},
		ReceivedAt: time.Now(),
	}
	if err := log.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got := log.Entries()
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].ProcessingID != "pid-1" || got[0].Feedback.ReportedLabel != core.LabelSafe {
		t.Errorf("entry = %+v", got[0])
	}
}
