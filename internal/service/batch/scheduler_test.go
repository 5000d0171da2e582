package batch

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinery/internal/domain"
	"refinery/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestScheduler_Start(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		spec        string
		wantErr     bool
		wantEntries int
	}{
		{name: "empty_spec_disables_scheduling", spec: "", wantEntries: 0},
		{name: "standard_cron_spec", spec: "0 2 * * *", wantEntries: 1},
		{name: "descriptor_spec", spec: "@hourly", wantEntries: 1},
		{name: "invalid_spec", spec: "not a schedule", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := newTestService(&testutil.MockBatchRunRepo{}, &testutil.MockEntityProcessor{}, &testutil.MockCleansedWriter{})
			sched := NewScheduler(svc, tt.spec, discardLogger())
			t.Cleanup(sched.Stop)

			err := sched.Start()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid schedule")
				return
			}
			require.NoError(t, err)
			assert.Len(t, sched.cron.Entries(), tt.wantEntries)
		})
	}
}

func TestScheduler_TriggersRuns(t *testing.T) {
	runs := &testutil.MockBatchRunRepo{}
	svc := newTestService(runs, &testutil.MockEntityProcessor{}, &testutil.MockCleansedWriter{})

	sched := NewScheduler(svc, "@every 10ms", discardLogger())
	require.NoError(t, sched.Start())
	t.Cleanup(sched.Stop)

	// A fire lands within a few intervals and runs to completion.
	require.Eventually(t, func() bool {
		listed, err := runs.ListRuns(context.Background(), domain.RunFilter{Status: domain.RunStatusCompleted})
		if err != nil {
			return false
		}
		for _, run := range listed {
			if run.TriggerType == domain.TriggerTypeScheduled && run.TriggeredBy == "scheduler" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}
