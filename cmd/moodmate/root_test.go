package moodmate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/keshangamage/Moodmate/internal/clock"
	"github.com/keshangamage/Moodmate/internal/model"
	"github.com/keshangamage/Moodmate/internal/service"
)

// runCLI executes the root command with fresh flag values and a fixed clock.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MOODMATE_STORAGE_DRIVER", "")
	resetFlags(rootCmd)
	prev := now
	now = clock.Fixed(time.Date(2024, 7, 15, 20, 0, 0, 0, time.Local))
	t.Cleanup(func() { now = prev })

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "moodmate") {
		t.Fatalf("expected help output, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	for i := 0; i < 2; i++ {
		out, err := runCLI(t, "--db", path, "init")
		if err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
		if !strings.Contains(out, "schema v3") {
			t.Fatalf("unexpected init output %q", out)
		}
	}
}

func TestScoreCommandJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	out, err := runCLI(t, "--db", path, "score", "--mood", "happy", "--sleep", "8", "--activities", "exercise,meditation", "--stress", "3", "--energy", "8", "--weather", "sunny", "--json")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var got scoreResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode score output %q: %v", out, err)
	}
	if got.MoodScore != 10 {
		t.Fatalf("expected score 10, got %d", got.MoodScore)
	}
}

func TestScoreCommandRejectsUnknownMood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	if _, err := runCLI(t, "--db", path, "score", "--mood", "elated"); err == nil {
		t.Fatalf("expected unknown mood error")
	}
}

func TestEntryAddListShowAndInsights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	days := []string{"2024-07-11", "2024-07-12", "2024-07-13", "2024-07-14", "2024-07-15"}
	for _, d := range days {
		if _, err := runCLI(t, "--db", path, "--user", "alice", "entry", "add", "--date", d, "--mood", "sad", "--sleep", "5", "--stress", "8", "--energy", "3", "--activities", "work"); err != nil {
			t.Fatalf("entry add %s: %v", d, err)
		}
	}

	out, err := runCLI(t, "--db", path, "--user", "alice", "entry", "list", "--json")
	if err != nil {
		t.Fatalf("entry list: %v", err)
	}
	var entries []model.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != len(days) {
		t.Fatalf("expected %d entries, got %d", len(days), len(entries))
	}
	if entries[0].DateString() != days[0] || entries[len(entries)-1].DateString() != days[len(days)-1] {
		t.Fatalf("entries not in date order: %s..%s", entries[0].DateString(), entries[len(entries)-1].DateString())
	}

	out, err = runCLI(t, "--db", path, "--user", "alice", "entry", "show", entries[0].ID[:8])
	if err != nil {
		t.Fatalf("entry show: %v", err)
	}
	if !strings.Contains(out, "Mood: sad") {
		t.Fatalf("unexpected show output %q", out)
	}

	out, err = runCLI(t, "--db", path, "--user", "alice", "insights", "--json")
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	var payload struct {
		Entries  int             `json:"entries"`
		Insights []model.Insight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if payload.Entries != len(days) {
		t.Fatalf("expected %d entries in insights, got %d", len(days), payload.Entries)
	}
	found := map[model.InsightType]bool{}
	for _, in := range payload.Insights {
		found[in.Type] = true
	}
	for _, want := range []model.InsightType{model.InsightSleep, model.InsightMood, model.InsightEnergy} {
		if !found[want] {
			t.Fatalf("expected %s insight, got %+v", want, payload.Insights)
		}
	}

	out, err = runCLI(t, "--db", path, "--user", "bob", "entry", "list", "--json")
	if err != nil {
		t.Fatalf("entry list bob: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected bob to have no entries, got %s", out)
	}
}

func TestTipsCommandSeedIsDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	if _, err := runCLI(t, "--db", path, "entry", "add", "--mood", "anxious", "--activities", "exercise,meditation,socializing,nature"); err != nil {
		t.Fatalf("entry add: %v", err)
	}
	first, err := runCLI(t, "--db", path, "tips", "--seed", "42", "--json")
	if err != nil {
		t.Fatalf("tips: %v", err)
	}
	second, err := runCLI(t, "--db", path, "tips", "--seed", "42", "--json")
	if err != nil {
		t.Fatalf("tips: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical tips for the same seed\nfirst: %s\nsecond: %s", first, second)
	}
}

func TestTipsCommandWithoutEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	if _, err := runCLI(t, "--db", path, "tips"); err == nil {
		t.Fatalf("expected error without entries")
	}
}

func TestConfigDefaultUser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	if _, err := runCLI(t, "--db", path, "config", "set", "--default-user", "carol", "--hemisphere", "south"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if _, err := runCLI(t, "--db", path, "entry", "add", "--mood", "happy"); err != nil {
		t.Fatalf("entry add: %v", err)
	}
	out, err := runCLI(t, "--db", path, "--user", "carol", "entry", "list", "--json")
	if err != nil {
		t.Fatalf("entry list: %v", err)
	}
	var entries []model.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "carol" {
		t.Fatalf("expected one entry for carol, got %+v", entries)
	}

	out, err = runCLI(t, "--db", path, "config", "get")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if !strings.Contains(out, "effective hemisphere\tsouth") {
		t.Fatalf("unexpected config output %q", out)
	}
	if _, err := runCLI(t, "--db", path, "config", "set", "--hemisphere", "east"); err == nil {
		t.Fatalf("expected invalid hemisphere error")
	}
}

func TestReminderSetAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	out, err := runCLI(t, "--db", path, "reminder", "check")
	if err != nil {
		t.Fatalf("reminder check: %v", err)
	}
	if strings.Contains(out, service.ReminderMessage) {
		t.Fatalf("disabled reminder should not fire")
	}
	if _, err := runCLI(t, "--db", path, "reminder", "set", "--enable", "--time", "20:00"); err != nil {
		t.Fatalf("reminder set: %v", err)
	}
	out, err = runCLI(t, "--db", path, "reminder", "check")
	if err != nil {
		t.Fatalf("reminder check: %v", err)
	}
	if !strings.Contains(out, service.ReminderMessage) {
		t.Fatalf("expected reminder at 20:00, got %q", out)
	}
	if _, err := runCLI(t, "--db", path, "reminder", "set", "--frequency", "hourly"); err == nil {
		t.Fatalf("expected invalid frequency error")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	file := filepath.Join(dir, "export.json")
	for _, mood := range []string{"happy", "sad"} {
		if _, err := runCLI(t, "--db", src, "entry", "add", "--mood", mood, "--sleep", "7"); err != nil {
			t.Fatalf("entry add: %v", err)
		}
	}
	if _, err := runCLI(t, "--db", src, "export", "--out", file); err != nil {
		t.Fatalf("export: %v", err)
	}
	out, err := runCLI(t, "--db", dst, "import", "--in", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "inserted=2") {
		t.Fatalf("unexpected import output %q", out)
	}
	if _, err := runCLI(t, "--db", dst, "import", "--in", file); err == nil {
		t.Fatalf("expected conflict error on second import")
	}
	out, err = runCLI(t, "--db", dst, "import", "--in", file, "--mode", "skip")
	if err != nil {
		t.Fatalf("import skip: %v", err)
	}
	if !strings.Contains(out, "skipped=2") {
		t.Fatalf("unexpected skip output %q", out)
	}
}

func TestReportWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moodmate.db")
	report := filepath.Join(dir, "report.md")
	if _, err := runCLI(t, "--db", path, "entry", "add", "--mood", "happy", "--sleep", "8"); err != nil {
		t.Fatalf("entry add: %v", err)
	}
	if _, err := runCLI(t, "--db", path, "report", "--out", report, "--out-format", "markdown"); err != nil {
		t.Fatalf("report: %v", err)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(b), "# Mood Report") {
		t.Fatalf("unexpected report %q", string(b))
	}
	if _, err := runCLI(t, "--db", path, "report", "--out", report, "--out-format", "pdf"); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestTrendAndCalendar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	for _, d := range []string{"2024-07-13", "2024-07-14", "2024-07-15"} {
		if _, err := runCLI(t, "--db", path, "entry", "add", "--date", d, "--mood", "happy"); err != nil {
			t.Fatalf("entry add: %v", err)
		}
	}
	out, err := runCLI(t, "--db", path, "trend", "--json")
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	var summary service.MoodSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if summary.LoggingStreak.Current != 3 {
		t.Fatalf("expected current streak 3, got %d", summary.LoggingStreak.Current)
	}
	out, err = runCLI(t, "--db", path, "calendar", "--year", "2024")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if !strings.Contains(out, "3 days logged") {
		t.Fatalf("unexpected calendar output %q", out)
	}
}

func TestDoctorAndBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moodmate.db")
	if _, err := runCLI(t, "--db", path, "entry", "add", "--mood", "neutral"); err != nil {
		t.Fatalf("entry add: %v", err)
	}
	if _, err := runCLI(t, "--db", path, "doctor"); err != nil {
		t.Fatalf("doctor: %v", err)
	}
	out, err := runCLI(t, "--db", path, "backup", "create")
	if err != nil {
		t.Fatalf("backup create: %v", err)
	}
	if !strings.Contains(out, "Created database backup") || !strings.Contains(out, "moodmate-20240715-200000.db (1 entries)") {
		t.Fatalf("unexpected backup output %q", out)
	}
	if strings.Contains(out, "history backup") {
		t.Fatalf("sqlite backups should not write a history export: %q", out)
	}
	out, err = runCLI(t, "--db", path, "backup", "list")
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	if !strings.Contains(out, "moodmate-20240715-200000.db") {
		t.Fatalf("backup not listed: %q", out)
	}
}

func TestBackupWithRedisHistoryExportsAndRestores(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "moodmate.db")
	cfgFile := filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  driver: redis\n  redis_addr: " + mr.Addr() + "\n"
	if err := os.WriteFile(cfgFile, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	run := func(args ...string) (string, error) {
		return runCLI(t, append([]string{"--db", path, "--config", cfgFile, "--user", "carol"}, args...)...)
	}
	for _, d := range []string{"2024-07-14", "2024-07-15"} {
		if _, err := run("entry", "add", "--date", d, "--mood", "happy"); err != nil {
			t.Fatalf("entry add %s: %v", d, err)
		}
	}

	out, err := run("backup", "create")
	if err != nil {
		t.Fatalf("backup create: %v", err)
	}
	if !strings.Contains(out, "Created settings backup") || !strings.Contains(out, "(0 entries)") {
		t.Fatalf("sqlite file holds no history with redis and should say so: %q", out)
	}
	if !strings.Contains(out, "Created history backup") || !strings.Contains(out, "(2 entries for carol from redis)") {
		t.Fatalf("expected a history export of the redis entries: %q", out)
	}
	historyFile := filepath.Join(dir, "backups", "moodmate-20240715-200000-carol.history.json")
	if _, err := os.Stat(historyFile); err != nil {
		t.Fatalf("history backup missing: %v", err)
	}

	out, err = run("backup", "list")
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	if !strings.Contains(out, "\thistory\t") || !strings.Contains(out, "\tdatabase\t") {
		t.Fatalf("expected both backup kinds listed: %q", out)
	}

	mr.FlushAll()
	out, err = run("backup", "restore", "--file", historyFile)
	if err != nil {
		t.Fatalf("restore history: %v", err)
	}
	if !strings.Contains(out, "Restored 2 entries for carol into redis") {
		t.Fatalf("unexpected restore output %q", out)
	}
	out, err = run("entry", "list", "--json")
	if err != nil {
		t.Fatalf("entry list: %v", err)
	}
	var entries []model.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode entries: %v (%q)", err, out)
	}
	if len(entries) != 2 || entries[1].DateString() != "2024-07-15" {
		t.Fatalf("history not restored: %+v", entries)
	}
}

func TestEntryAddRejectsOutOfRangeDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodmate.db")
	for _, d := range []string{"0001-01-01", "2024-07-16"} {
		if _, err := runCLI(t, "--db", path, "entry", "add", "--date", d, "--mood", "happy"); err == nil {
			t.Fatalf("expected --date %s to be rejected", d)
		}
	}
	out, err := runCLI(t, "--db", path, "entry", "list", "--json")
	if err != nil {
		t.Fatalf("history should stay readable: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("rejected entries were stored: %q", out)
	}
}
