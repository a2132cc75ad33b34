package trust

import (
	"fmt"
	"testing"
	"time"

	"github.com/ledgerguard/ledgerguard/internal/ledger"
)

func testScorer(t *testing.T, store Store, now time.Time) *Scorer {
	t.Helper()
	s, err := NewScorer(store)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	s.now = func() time.Time { return now }
	return s
}

func trustFactorScore(t *testing.T, factors []Factor, name string) int {
	t.Helper()
	for _, f := range factors {
		if f.Name == name {
			return f.Score
		}
	}
	t.Fatalf("factor %q not found", name)
	return 0
}

func TestNewScorerRequiresStore(t *testing.T) {
	if _, err := NewScorer(nil); err == nil {
		t.Fatal("NewScorer accepted a nil store")
	}
}

func TestHistoryDepthSteps(t *testing.T) {
	cases := []struct {
		actions int
		want    int
	}{
		{0, 10}, {1, 30}, {4, 30}, {5, 50}, {19, 50},
		{20, 70}, {49, 70}, {50, 85}, {99, 85}, {100, 95}, {500, 95},
	}
	for _, tc := range cases {
		if got := historyDepthFactor(tc.actions).Score; got != tc.want {
			t.Errorf("historyDepthFactor(%d) = %d, want %d", tc.actions, got, tc.want)
		}
	}
}

func TestTaskCompletionFactor(t *testing.T) {
	if got := taskCompletionFactor(nil).Score; got != 50 {
		t.Errorf("no tasks = %d, want neutral 50", got)
	}

	tasks := make([]ledger.Task, 0, 10)
	for i := 0; i < 8; i++ {
		tasks = append(tasks, ledger.Task{Status: ledger.TaskCompleted})
	}
	for i := 0; i < 2; i++ {
		tasks = append(tasks, ledger.Task{Status: ledger.TaskFailed})
	}
	// 80% completion - 20%*30 failure cost = 74.
	if got := taskCompletionFactor(tasks).Score; got != 74 {
		t.Errorf("8/10 completed 2 failed = %d, want 74", got)
	}

	allFailed := []ledger.Task{{Status: ledger.TaskFailed}, {Status: ledger.TaskFailed}}
	if got := taskCompletionFactor(allFailed).Score; got != 0 {
		t.Errorf("all failed = %d, want clamp to 0", got)
	}

	allDone := []ledger.Task{{Status: ledger.TaskCompleted}}
	if got := taskCompletionFactor(allDone).Score; got != 100 {
		t.Errorf("all completed = %d, want 100", got)
	}
}

func TestAnomalyFrequencyFactor(t *testing.T) {
	if got := anomalyFrequencyFactor(nil, 0).Score; got != 50 {
		t.Errorf("no actions = %d, want neutral 50", got)
	}
	if got := anomalyFrequencyFactor(nil, 100).Score; got != 100 {
		t.Errorf("zero anomalies = %d, want 100", got)
	}

	// Ratio 3/100 lands in the <0.05 step (85), then critical and high
	// deductions apply.
	anomalies := []ledger.Anomaly{
		{Severity: ledger.AnomalyCritical},
		{Severity: ledger.AnomalyHigh},
		{Severity: ledger.AnomalyLow},
	}
	if got := anomalyFrequencyFactor(anomalies, 100).Score; got != 62 {
		t.Errorf("3/100 with critical+high = %d, want 85-15-8 = 62", got)
	}

	heavy := []ledger.Anomaly{
		{Severity: ledger.AnomalyCritical},
		{Severity: ledger.AnomalyCritical},
		{Severity: ledger.AnomalyCritical},
	}
	if got := anomalyFrequencyFactor(heavy, 4).Score; got != 0 {
		t.Errorf("heavy anomalies = %d, want clamp to 0", got)
	}
}

func TestConsistencyFactor(t *testing.T) {
	if got := consistencyFactor(nil).Score; got != 50 {
		t.Errorf("no transactions = %d, want neutral 50", got)
	}

	junk := []ledger.Transaction{{Amount: "abc"}, {Amount: ""}, {Amount: "-5"}}
	if got := consistencyFactor(junk).Score; got != 50 {
		t.Errorf("unparsable amounts = %d, want neutral 50", got)
	}

	steady := []ledger.Transaction{
		{Amount: "1000", Destination: "0xaaa"},
		{Amount: "1000", Destination: "0xaaa"},
		{Amount: "1000", Destination: "0xaaa"},
	}
	if got := consistencyFactor(steady).Score; got != 95 {
		t.Errorf("constant amounts = %d, want 95", got)
	}

	// CV = 50/150 = 0.33 falls in the <0.6 step.
	mixed := []ledger.Transaction{
		{Amount: "100", Destination: "0xaaa"},
		{Amount: "200", Destination: "0xaaa"},
	}
	if got := consistencyFactor(mixed).Score; got != 65 {
		t.Errorf("CV 0.33 = %d, want 65", got)
	}

	spray := make([]ledger.Transaction, 0, 6)
	for i := 0; i < 6; i++ {
		spray = append(spray, ledger.Transaction{
			Amount:      "1000",
			Destination: fmt.Sprintf("0xdest%d", i),
		})
	}
	if got := consistencyFactor(spray).Score; got != 80 {
		t.Errorf("spray pattern = %d, want 95-15 = 80", got)
	}
}

func TestComplianceFactor(t *testing.T) {
	if got := complianceFactor(nil, 0).Score; got != 50 {
		t.Errorf("empty = %d, want base 50", got)
	}

	full := []ledger.Task{
		{Status: ledger.TaskCompleted, Evidence: []string{"receipt-1"}},
		{Status: ledger.TaskCompleted, Evidence: []string{"receipt-2"}},
	}
	if got := complianceFactor(full, 0).Score; got != 100 {
		t.Errorf("full evidence, tasks without transactions = %d, want 100", got)
	}

	// Evidence rate 0.5 (+15), coverage 4/8 (+10).
	partial := []ledger.Task{
		{Status: ledger.TaskCompleted, Evidence: []string{"receipt-1"}},
		{Status: ledger.TaskCompleted},
		{Status: ledger.TaskFailed},
		{Status: ledger.TaskPending},
	}
	if got := complianceFactor(partial, 8).Score; got != 75 {
		t.Errorf("partial compliance = %d, want 75", got)
	}
}

func TestNewAgentTrustScore(t *testing.T) {
	// A brand-new agent: factor scores {10,50,50,50,50} under weights
	// {.15,.25,.25,.20,.15} give a weighted 44 and level "low".
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := testScorer(t, ledger.New(), now)

	score := s.AgentTrustScore("agent-new")
	wantFactors := map[string]int{
		FactorHistory:     10,
		FactorTasks:       50,
		FactorAnomalies:   50,
		FactorConsistency: 50,
		FactorCompliance:  50,
	}
	for name, want := range wantFactors {
		if got := trustFactorScore(t, score.Factors, name); got != want {
			t.Errorf("factor %s = %d, want %d", name, got, want)
		}
	}
	if score.Score != 44 {
		t.Errorf("score = %d, want 44", score.Score)
	}
	if score.Level != LevelLow {
		t.Errorf("level = %q, want %q", score.Level, LevelLow)
	}
	if !score.ComputedAt.Equal(now) {
		t.Errorf("ComputedAt = %v, want %v", score.ComputedAt, now)
	}
}

func TestEstablishedAgentTrustScore(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	l := ledger.New()
	for i := 0; i < 120; i++ {
		l.RecordAction(ledger.Action{AgentID: "agent-7", Kind: "transfer", Timestamp: now})
	}
	for i := 0; i < 10; i++ {
		l.RecordTask(ledger.Task{
			AgentID:  "agent-7",
			Status:   ledger.TaskCompleted,
			Evidence: []string{"receipt"},
		})
	}
	for i := 0; i < 6; i++ {
		l.RecordTransaction(ledger.Transaction{
			AgentID:     "agent-7",
			Amount:      "1000.00",
			Destination: "0xpayroll",
			Timestamp:   now,
		})
	}

	score := testScorer(t, l, now).AgentTrustScore("agent-7")

	// 95*.15 + 100*.25 + 100*.25 + 95*.20 + 100*.15 = 98.25.
	if score.Score != 98 {
		t.Errorf("score = %d, want 98", score.Score)
	}
	if score.Level != LevelVerified {
		t.Errorf("level = %q, want %q", score.Level, LevelVerified)
	}
}

func TestLevelBreakpoints(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, LevelVerified}, {90, LevelVerified},
		{89, LevelHigh}, {70, LevelHigh},
		{69, LevelMedium}, {50, LevelMedium},
		{49, LevelLow}, {30, LevelLow},
		{29, LevelUntrusted}, {0, LevelUntrusted},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.score); got != tc.want {
			t.Errorf("LevelFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		ok   bool
		want float64
	}{
		{"100", true, 100},
		{" 2500.50 ", true, 2500.50},
		{"abc", false, 0},
		{"", false, 0},
		{"-5", false, 0},
		{"0", false, 0},
		{"NaN", false, 0},
		{"Inf", false, 0},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
