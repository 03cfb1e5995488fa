package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
	"github.com/myrjola/habitapp/internal/habits"
	"github.com/myrjola/habitapp/internal/sqlite"
	"github.com/myrjola/habitapp/internal/testhelpers"
	"github.com/myrjola/habitapp/internal/tracker"
)

func newTestService(t *testing.T, strategy habits.FitnessStrategy) (*tracker.Service, *sqlite.Database) {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return tracker.NewService(db, logger, strategy), db
}

// userContext creates a user and returns a context authenticated as that user.
func userContext(t *testing.T, db *sqlite.Database, name string) context.Context {
	t.Helper()
	var id int
	if err := db.ReadWrite.QueryRowContext(t.Context(),
		`INSERT INTO users (webauthn_user_id, display_name) VALUES (?, ?) RETURNING id`,
		[]byte(name), name).Scan(&id); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return contexthelpers.WithUserID(t.Context(), id)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := habits.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func TestService_trackMeals(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeekdays)
	ctx := userContext(t, db, "alice")
	monday, tuesday := date(t, "2024-03-04"), date(t, "2024-03-05")

	for _, step := range []struct {
		date time.Time
		meal string
	}{
		{monday, "tuna_rice"},
		{tuesday, "tuna_rice"},
		{tuesday, "chicken_pumpkin"},
	} {
		if err := svc.ToggleVariableMeal(ctx, step.date, step.meal); err != nil {
			t.Fatalf("ToggleVariableMeal(%s): %v", step.meal, err)
		}
	}
	if err := svc.ToggleVariableMeal(ctx, tuesday, "lentil_burgers"); !errors.Is(err, habits.ErrVariableMealLimit) {
		t.Errorf("expected ErrVariableMealLimit, got %v", err)
	}
	if err := svc.ToggleVariableMeal(ctx, tuesday, "pizza"); !errors.Is(err, tracker.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown meal, got %v", err)
	}
	if err := svc.ToggleFixedMeal(ctx, tuesday, "shake"); err != nil {
		t.Fatalf("ToggleFixedMeal: %v", err)
	}
	if err := svc.AddCheatMeal(ctx, tuesday, habits.CheatMeal{Name: "empanada", Emoji: "🥟"}); err != nil {
		t.Fatalf("AddCheatMeal: %v", err)
	}
	if err := svc.ToggleFitnessActivity(ctx, tuesday, habits.ActivityBasketballTraining); err == nil {
		t.Error("expected basketball training to be rejected as a toggle")
	}

	day, err := svc.Day(ctx, tuesday)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if !day.VariableMealLimitReached {
		t.Error("expected the variable meal limit to be reached")
	}
	served := map[string]int{}
	for _, c := range day.VariableMeals {
		served[c.Meal.ID] = c.ServedThisWeek
	}
	if served["tuna_rice"] != 2 || served["chicken_pumpkin"] != 1 {
		t.Errorf("served this week = %v", served)
	}
	if !day.FixedMeals[0].Selected || day.FixedMeals[0].Meal.ID != "shake" {
		t.Errorf("first fixed meal = %+v", day.FixedMeals[0])
	}
	if diff := cmp.Diff([]habits.CheatMeal{{Name: "empanada", Emoji: "🥟"}}, day.Log.CheatMeals); diff != "" {
		t.Errorf("cheat meals mismatch (-want +got):\n%s", diff)
	}

	if err = svc.RemoveCheatMeal(ctx, tuesday, 0); err != nil {
		t.Fatalf("RemoveCheatMeal: %v", err)
	}
	l, err := svc.DailyLog(ctx, tuesday)
	if err != nil {
		t.Fatalf("DailyLog: %v", err)
	}
	if len(l.CheatMeals) != 0 {
		t.Errorf("cheat meals left: %v", l.CheatMeals)
	}
}

func TestService_userIsolation(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeekdays)
	alice := userContext(t, db, "alice")
	bob := userContext(t, db, "bob")
	day := date(t, "2024-03-06")

	if err := svc.ToggleFitnessActivity(alice, day, habits.ActivityWeightlifting); err != nil {
		t.Fatalf("ToggleFitnessActivity: %v", err)
	}
	l, err := svc.DailyLog(bob, day)
	if err != nil {
		t.Fatalf("DailyLog: %v", err)
	}
	if habits.HasFitnessActivity(&l) {
		t.Error("bob sees alice's activity")
	}
}

func TestService_Progress(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeekdays)
	ctx := userContext(t, db, "alice")
	for _, d := range []string{"2024-03-04", "2024-03-05", "2024-03-06"} {
		if err := svc.ToggleFitnessActivity(ctx, date(t, d), habits.ActivityWeightlifting); err != nil {
			t.Fatalf("ToggleFitnessActivity: %v", err)
		}
	}
	if err := svc.AddCheatMeal(ctx, date(t, "2024-03-05"), habits.CheatMeal{Name: "cake", Emoji: ""}); err != nil {
		t.Fatalf("AddCheatMeal: %v", err)
	}

	p, err := svc.Progress(ctx, habits.PeriodWeek, date(t, "2024-03-06"))
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.StreaksStale {
		t.Error("streaks should have been stored")
	}
	if p.Streaks.CurrentStreak != 1 || p.Streaks.FitnessStreak != 3 {
		t.Errorf("streaks = %+v", p.Streaks)
	}
	if p.Week.CleanDays != 2 || p.Week.TotalDays != 3 {
		t.Errorf("week clean stats = %+v", p.Week)
	}
	if p.Selected.Metrics.Weightlifting.Count != 3 {
		t.Errorf("weightlifting days = %d, want 3", p.Selected.Metrics.Weightlifting.Count)
	}

	// A later refresh with a broken fitness streak keeps the longest streak.
	state, stale, err := svc.RefreshStreaks(ctx, date(t, "2024-03-08"))
	if err != nil {
		t.Fatalf("RefreshStreaks: %v", err)
	}
	if stale {
		t.Error("refreshed streaks should have been stored")
	}
	if state.FitnessStreak != 0 || state.LongestFitnessStreak != 3 || !state.LastFitnessDay.IsZero() {
		t.Errorf("refreshed streaks = %+v", state)
	}
}

func TestService_staleStreaks(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeeklyGoal)
	ctx := userContext(t, db, "alice")
	monday, tuesday := date(t, "2024-03-04"), date(t, "2024-03-05")

	if err := svc.ToggleFitnessActivity(ctx, monday, habits.ActivityWeightlifting); err != nil {
		t.Fatalf("ToggleFitnessActivity: %v", err)
	}
	stored, stale, err := svc.RefreshStreaks(ctx, monday)
	if err != nil || stale {
		t.Fatalf("RefreshStreaks: stale %t, err %v", stale, err)
	}

	for _, stmt := range []string{
		`CREATE TRIGGER streaks_insert_fails BEFORE INSERT ON streaks BEGIN SELECT RAISE(ABORT, 'disk full'); END`,
		`CREATE TRIGGER streaks_update_fails BEFORE UPDATE ON streaks BEGIN SELECT RAISE(ABORT, 'disk full'); END`,
	} {
		if _, err = db.ReadWrite.ExecContext(t.Context(), stmt); err != nil {
			t.Fatalf("create trigger: %v", err)
		}
	}
	if err = svc.AddCheatMeal(ctx, tuesday, habits.CheatMeal{Name: "cake", Emoji: ""}); err != nil {
		t.Fatalf("AddCheatMeal: %v", err)
	}

	state, stale, err := svc.RefreshStreaks(ctx, tuesday)
	if err != nil {
		t.Fatalf("RefreshStreaks should not fail when storing fails: %v", err)
	}
	if !stale {
		t.Error("expected the streaks to be flagged stale")
	}
	if diff := cmp.Diff(stored, state); diff != "" {
		t.Errorf("stale streaks mismatch (-want +got):\n%s", diff)
	}

	p, err := svc.Progress(ctx, habits.PeriodWeek, tuesday)
	if err != nil {
		t.Fatalf("Progress should not fail when storing streaks fails: %v", err)
	}
	if !p.StreaksStale {
		t.Error("expected progress streaks to be flagged stale")
	}
	if diff := cmp.Diff(stored, p.Streaks); diff != "" {
		t.Errorf("progress streaks mismatch (-want +got):\n%s", diff)
	}
}

func TestService_CompleteBasketballSession(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeeklyGoal)
	ctx := userContext(t, db, "alice")
	day := date(t, "2024-03-06")

	first, err := svc.CompleteBasketballSession(ctx, day, map[string]int{"midrange_cs": 20, "libres": 0})
	if err != nil {
		t.Fatalf("CompleteBasketballSession: %v", err)
	}
	if first.Totals.Score != 80 {
		t.Errorf("score = %f, want 80", first.Totals.Score)
	}
	second, err := svc.CompleteBasketballSession(ctx, day, map[string]int{"libres": 45})
	if err != nil {
		t.Fatalf("CompleteBasketballSession: %v", err)
	}
	if _, err = svc.CompleteBasketballSession(ctx, day, map[string]int{"libres": 51}); !errors.Is(err, habits.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for impossible makes, got %v", err)
	}

	l, err := svc.DailyLog(ctx, day)
	if err != nil {
		t.Fatalf("DailyLog: %v", err)
	}
	if n := habits.CountActivities(&l, habits.ActivityBasketballTraining); n != 1 {
		t.Errorf("basketball training recorded %d times, want 1", n)
	}

	bd, err := svc.BasketballDay(ctx, day)
	if err != nil {
		t.Fatalf("BasketballDay: %v", err)
	}
	if !bd.HasLatest || bd.Latest.ID != second.ID || len(bd.Sessions) != 2 || len(bd.ShotTypes) != 8 {
		t.Errorf("basketball day = %+v", bd)
	}

	report, err := svc.BasketballReport(ctx, day)
	if err != nil {
		t.Fatalf("BasketballReport: %v", err)
	}
	if report.TotalSessions != 2 || report.Best.ID != second.ID || report.Week.CurrentCount != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestService_deepWork(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeekdays)
	ctx := userContext(t, db, "alice")
	day := date(t, "2024-03-06")

	var ids []int
	for _, title := range []string{"write report", "review PR", "plan sprint"} {
		task, err := svc.AddTask(ctx, day, title)
		if err != nil {
			t.Fatalf("AddTask: %v", err)
		}
		ids = append(ids, task.ID)
	}
	if _, err := svc.AddTask(ctx, day, "   "); !errors.Is(err, tracker.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank title, got %v", err)
	}
	if err := svc.ToggleTask(ctx, ids[0]); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if err := svc.MoveTask(ctx, ids[2], true); err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	if err := svc.RenameTask(ctx, ids[1], "review pull request"); err != nil {
		t.Fatalf("RenameTask: %v", err)
	}
	if err := svc.SetTarget(ctx, day, 180); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if err := svc.SetTarget(ctx, day, 100); !errors.Is(err, tracker.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for 100 minutes, got %v", err)
	}
	if err := svc.LogMinutes(ctx, day, 45); err != nil {
		t.Fatalf("LogMinutes: %v", err)
	}
	if err := svc.SaveNote(ctx, day, "# Focus\n\n* no meetings"); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	d, err := svc.DeepWorkDay(ctx, day)
	if err != nil {
		t.Fatalf("DeepWorkDay: %v", err)
	}
	var titles []string
	for _, task := range d.Tasks {
		titles = append(titles, task.Title)
	}
	if diff := cmp.Diff([]string{"write report", "plan sprint", "review pull request"}, titles); diff != "" {
		t.Errorf("task order mismatch (-want +got):\n%s", diff)
	}
	if !d.Tasks[0].Completed || d.Tasks[0].CompletedAt.IsZero() {
		t.Errorf("first task = %+v", d.Tasks[0])
	}
	if d.Session.Target != habits.Target180 || d.Session.LoggedMinutes != 45 {
		t.Errorf("session = %+v", d.Session)
	}
	if d.Note != "# Focus\n\n* no meetings" {
		t.Errorf("note = %q", d.Note)
	}
	if d.Completion.Percentage != 33 {
		t.Errorf("completion = %+v", d.Completion)
	}

	if err = svc.DeleteTask(ctx, ids[1]); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err = svc.DeleteTask(ctx, ids[1]); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
	stats, err := svc.DeepWorkStats(ctx, habits.PeriodWeek, day)
	if err != nil {
		t.Fatalf("DeepWorkStats: %v", err)
	}
	if stats.Completion.Total != 2 || stats.Completion.Completed != 1 || stats.Completion.Percentage != 50 {
		t.Errorf("stats = %+v", stats.Completion)
	}
}

func TestService_groceries(t *testing.T) {
	svc, db := newTestService(t, habits.FitnessWeekdays)
	alice := userContext(t, db, "alice")
	bob := userContext(t, db, "bob")

	for _, id := range []string{"arroz", "leche", "atun"} {
		if err := svc.ToggleGroceryItem(alice, id); err != nil {
			t.Fatalf("ToggleGroceryItem(%s): %v", id, err)
		}
	}
	// Toggling again unchecks.
	if err := svc.ToggleGroceryItem(alice, "atun"); err != nil {
		t.Fatalf("ToggleGroceryItem: %v", err)
	}
	if err := svc.ToggleGroceryItem(alice, "caviar"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown item, got %v", err)
	}

	list, err := svc.Groceries(alice)
	if err != nil {
		t.Fatalf("Groceries: %v", err)
	}
	if list.Total != 23 || list.Checked != 2 || list.Done() {
		t.Errorf("list totals = %d/%d, done %t", list.Checked, list.Total, list.Done())
	}
	var categories []string
	checked := map[string]bool{}
	for _, c := range list.Categories {
		categories = append(categories, c.Key)
		for _, item := range c.Items {
			if item.Checked != !item.CheckedAt.IsZero() {
				t.Errorf("%s: checked %t with timestamp %v", item.ID, item.Checked, item.CheckedAt)
			}
			if item.Checked {
				checked[item.ID] = true
			}
		}
	}
	wantCategories := []string{
		"proteinas", "carbohidratos", "verduras", "frutas", "lacteos", "otros", "suplementos", "snacks",
	}
	if diff := cmp.Diff(wantCategories, categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]bool{"arroz": true, "leche": true}, checked); diff != "" {
		t.Errorf("checked items mismatch (-want +got):\n%s", diff)
	}

	other, err := svc.Groceries(bob)
	if err != nil {
		t.Fatalf("Groceries: %v", err)
	}
	if other.Checked != 0 {
		t.Errorf("bob sees %d checked items of alice", other.Checked)
	}

	if err = svc.ResetGroceries(alice); err != nil {
		t.Fatalf("ResetGroceries: %v", err)
	}
	if list, err = svc.Groceries(alice); err != nil {
		t.Fatalf("Groceries: %v", err)
	}
	if list.Checked != 0 || list.Percentage() != 0 {
		t.Errorf("after reset %d items are checked", list.Checked)
	}
}
