package progress

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func newTestTracker() (*Tracker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), step: time.Minute}
	return New(WithClock(clk.now)), clk
}

func intPtr(v int) *int { return &v }

func TestUpdateKnownCounter(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Update(CasesStudied, 2, nil)
	tr.Update(PlansCreated, 1, intPtr(50))

	got := tr.Progress()
	if got.CasesStudied != 2 || got.PlansCreated != 1 {
		t.Errorf("counters = %+v", got)
	}
	if got.TotalScore != 0 {
		t.Errorf("TotalScore = %d, want 0 (score only counts for simulations)", got.TotalScore)
	}
	if len(got.ActivityHistory) != 2 {
		t.Fatalf("history len = %d, want 2", len(got.ActivityHistory))
	}
	if got.ActivityHistory[1].Score == nil || *got.ActivityHistory[1].Score != 50 {
		t.Errorf("history score = %v, want 50", got.ActivityHistory[1].Score)
	}
	if got.LastActivity != got.ActivityHistory[1].Timestamp {
		t.Errorf("LastActivity = %q, want last history timestamp", got.LastActivity)
	}
}

func TestUpdateUnknownActivity(t *testing.T) {
	tr, _ := newTestTracker()
	before := tr.Progress()

	tr.Update("watched_video", 3, nil)

	after := tr.Progress()
	for _, c := range Counters() {
		if after.Count(c) != before.Count(c) {
			t.Errorf("counter %s changed: %d -> %d", c, before.Count(c), after.Count(c))
		}
	}
	if len(after.ActivityHistory) != 1 || after.ActivityHistory[0].Type != "watched_video" {
		t.Errorf("history = %+v, want one watched_video entry", after.ActivityHistory)
	}
	if after.LastActivity == "" {
		t.Error("LastActivity not set")
	}
}

func TestSimulationScores(t *testing.T) {
	tr, _ := newTestTracker()
	for range 10 {
		tr.Update(SimulationsCompleted, 1, intPtr(90))
	}

	got := tr.Progress()
	if got.TotalScore != 900 || got.SimulationsCompleted != 10 {
		t.Errorf("TotalScore = %d, SimulationsCompleted = %d", got.TotalScore, got.SimulationsCompleted)
	}
	if avg := tr.Summary().AverageScore; avg != 90 {
		t.Errorf("AverageScore = %v, want 90", avg)
	}
	if !got.HasAchievement(BiasExpert) || !got.HasAchievement(FirstSimulation) {
		t.Errorf("Achievements = %v, want first_simulation and bias_expert", got.Achievements)
	}
	want := []AchievementID{FirstSimulation, BiasExpert}
	if diff := cmp.Diff(want, got.Achievements); diff != "" {
		t.Errorf("Achievements mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulationWithoutScore(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Update(SimulationsCompleted, 1, nil)
	if got := tr.Progress().TotalScore; got != 0 {
		t.Errorf("TotalScore = %d, want 0", got)
	}
}

func TestSingleIncrementUnlocks(t *testing.T) {
	tr, _ := newTestTracker()
	unlocked := tr.Update(CasesStudied, 5, nil)
	if len(unlocked) != 1 || unlocked[0].ID != CaseExplorer {
		t.Errorf("unlocked = %+v, want case_explorer", unlocked)
	}
	if !tr.Progress().HasAchievement(CaseExplorer) {
		t.Error("case_explorer not stored")
	}
}

func TestAchievementsPermanent(t *testing.T) {
	tr, _ := newTestTracker()
	for range 10 {
		tr.RecordSimulation(100)
	}
	if !tr.Progress().HasAchievement(BiasExpert) {
		t.Fatal("bias_expert not unlocked")
	}

	// Drag the average below 80.
	prev := len(tr.Progress().Achievements)
	for range 10 {
		tr.RecordSimulation(0)
		n := len(tr.Progress().Achievements)
		if n < prev {
			t.Fatalf("achievements shrank: %d -> %d", prev, n)
		}
		prev = n
	}
	if !tr.Progress().HasAchievement(BiasExpert) {
		t.Error("bias_expert was removed after average dropped")
	}
}

func TestRegistryOrderOfUnlocks(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Update(Sessions, 7, nil)
	tr.Update(PlansCreated, 3, nil)
	tr.Update(CasesStudied, 10, nil)
	tr.Update(ResourcesAccessed, 10, nil)

	want := []AchievementID{FrequentLearner, PlanCreator, CaseExplorer, Educator, ResourceHunter}
	if diff := cmp.Diff(want, tr.Progress().Achievements); diff != "" {
		t.Errorf("Achievements mismatch (-want +got):\n%s", diff)
	}

	got := tr.Achievements()
	if len(got) != len(want) || got[0].Name != "Aprendiz Constante" {
		t.Errorf("Achievements() = %+v", got)
	}
}

func TestProgressIsDeepCopy(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordSimulation(70)

	a := tr.Progress()
	b := tr.Progress()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("snapshots differ (-a +b):\n%s", diff)
	}

	a.Achievements[0] = "hacked"
	*a.ActivityHistory[0].Score = 1
	a.ActivityHistory = append(a.ActivityHistory, ActivityRecord{Type: "x"})

	c := tr.Progress()
	if diff := cmp.Diff(b, c); diff != "" {
		t.Errorf("state mutated through snapshot (-want +got):\n%s", diff)
	}
}

func TestNextAchievements(t *testing.T) {
	tr, _ := newTestTracker()
	tr.Update(PlansCreated, 2, nil)
	tr.Update(CasesStudied, 4, nil)
	tr.Update(ResourcesAccessed, 25, nil)

	next := tr.NextAchievements()
	byID := make(map[AchievementID]AchievementProgress)
	for _, n := range next {
		byID[n.ID] = n.Progress
	}

	if _, ok := byID[PlanCreator]; ok {
		t.Error("unlocked plan_creator should not be listed")
	}
	if _, ok := byID[ResourceHunter]; ok {
		t.Error("unlocked resource_hunter should not be listed")
	}

	tests := []struct {
		id   AchievementID
		want AchievementProgress
	}{
		{FirstSimulation, AchievementProgress{Current: 0, Target: 1, Percentage: 0}},
		{CaseExplorer, AchievementProgress{Current: 4, Target: 5, Percentage: 80}},
		{Educator, AchievementProgress{Current: 2, Target: 3, Percentage: 40}},
		{FrequentLearner, AchievementProgress{Current: 0, Target: 7, Percentage: 0}},
	}
	for _, tt := range tests {
		got, ok := byID[tt.id]
		if !ok {
			t.Errorf("%s missing from next achievements", tt.id)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s progress mismatch (-want +got):\n%s", tt.id, diff)
		}
	}
}

func TestNextAchievementsClampsPercentage(t *testing.T) {
	tr, _ := newTestTracker()
	// Many simulations with low scores keep bias_expert locked.
	tr.Update(SimulationsCompleted, 30, nil)
	for _, n := range tr.NextAchievements() {
		if n.ID == BiasExpert && n.Progress.Percentage != 100 {
			t.Errorf("bias_expert percentage = %v, want 100", n.Progress.Percentage)
		}
		if n.Progress.Percentage < 0 || n.Progress.Percentage > 100 {
			t.Errorf("%s percentage = %v out of range", n.ID, n.Progress.Percentage)
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		total int
		avg   float64
		want  UserLevel
	}{
		{0, 0, UserNew},
		{4, 100, UserNew},
		{5, 0, UserBeginner},
		{10, 59.9, UserBeginner},
		{10, 60, UserIntermediate},
		{25, 70, UserAdvanced},
		{49, 100, UserAdvanced},
		{50, 80, UserExpert},
		{50, 79.9, UserAdvanced},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.total, tt.avg); got != tt.want {
			t.Errorf("LevelFor(%d, %v) = %q, want %q", tt.total, tt.avg, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC), step: 40 * time.Minute}
	tr := New(WithClock(clk.now))
	tr.RecordSimulation(70)
	tr.RecordSimulation(75)
	tr.RecordSimulation(72)
	tr.Update(CasesStudied, 2, nil)

	got := tr.Summary()
	if got.TotalActivities != 5 {
		t.Errorf("TotalActivities = %d, want 5", got.TotalActivities)
	}
	if got.AverageScore != 72.3 {
		t.Errorf("AverageScore = %v, want 72.3", got.AverageScore)
	}
	if got.AchievementsEarned != 1 {
		t.Errorf("AchievementsEarned = %d, want 1", got.AchievementsEarned)
	}
	if got.UserLevel != UserBeginner {
		t.Errorf("UserLevel = %q, want beginner", got.UserLevel)
	}
	// 23:00, 23:40, 00:20, 01:00 span two dates.
	if got.DaysActive != 2 {
		t.Errorf("DaysActive = %d, want 2", got.DaysActive)
	}
	if got.LastActivity == "" {
		t.Error("LastActivity empty")
	}
}

func TestSummaryEmpty(t *testing.T) {
	tr, _ := newTestTracker()
	got := tr.Summary()
	if got.AverageScore != 0 || got.UserLevel != UserNew || got.DaysActive != 0 {
		t.Errorf("Summary() = %+v", got)
	}
}

func TestDaysActiveSkipsMalformed(t *testing.T) {
	history := []ActivityRecord{
		{Type: CasesStudied, Timestamp: "2025-01-01T10:00:00.123456"},
		{Type: CasesStudied, Timestamp: "2025-01-01T18:00:00Z"},
		{Type: CasesStudied, Timestamp: "yesterday"},
		{Type: CasesStudied, Timestamp: ""},
		{Type: CasesStudied, Timestamp: "2025-01-03"},
	}
	if got := daysActive(history); got != 2 {
		t.Errorf("daysActive = %d, want 2", got)
	}
}

func TestReset(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordSimulation(100)
	tr.Reset()
	if diff := cmp.Diff(NewState(), tr.Progress()); diff != "" {
		t.Errorf("state after reset (-want +got):\n%s", diff)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	tr, _ := newTestTracker()
	tr.RecordSimulation(90)
	tr.Update(CasesStudied, 5, nil)
	tr.Update("unknown", 1, nil)

	text, err := tr.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(text, "\n  \"simulations_completed\": 1") {
		t.Errorf("export is not indented JSON:\n%s", text)
	}

	other, _ := newTestTracker()
	if !other.Import(text) {
		t.Fatal("Import returned false")
	}
	if diff := cmp.Diff(tr.Progress(), other.Progress()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExportEmptyHasNullLastActivity(t *testing.T) {
	tr, _ := newTestTracker()
	text, err := tr.Export()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `"last_activity": null`) {
		t.Errorf("export = %s", text)
	}
	other, _ := newTestTracker()
	if !other.Import(text) {
		t.Fatal("Import of empty export failed")
	}
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "{"},
		{"array", "[]"},
		{"missing sessions", `{"simulations_completed":1,"cases_studied":0,"plans_created":0,"resources_accessed":0,"total_score":0}`},
		{"wrong type", `{"simulations_completed":"1","cases_studied":0,"plans_created":0,"resources_accessed":0,"total_score":0,"sessions":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTracker()
			tr.RecordSimulation(80)
			before := tr.Progress()

			if tr.Import(tt.in) {
				t.Fatal("Import returned true")
			}
			if diff := cmp.Diff(before, tr.Progress()); diff != "" {
				t.Errorf("state mutated on failed import (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImportMinimal(t *testing.T) {
	tr, _ := newTestTracker()
	ok := tr.Import(`{"simulations_completed":2,"cases_studied":1,"plans_created":0,"resources_accessed":0,"total_score":150,"sessions":3,"achievements":["first_simulation","first_simulation","legacy"]}`)
	if !ok {
		t.Fatal("Import returned false")
	}
	got := tr.Progress()
	if got.TotalScore != 150 || got.Sessions != 3 {
		t.Errorf("state = %+v", got)
	}
	if diff := cmp.Diff([]AchievementID{FirstSimulation, "legacy"}, got.Achievements); diff != "" {
		t.Errorf("Achievements (-want +got):\n%s", diff)
	}
	if n := len(tr.Achievements()); n != 1 {
		t.Errorf("Achievements() = %d entries, want 1 (unknown ids skipped)", n)
	}
	if got.ActivityHistory == nil {
		t.Error("ActivityHistory should be an empty slice, not nil")
	}
}
