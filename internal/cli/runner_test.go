package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/idilsaglam/taskmgr/internal/api"
	"github.com/idilsaglam/taskmgr/internal/cli"
	"github.com/idilsaglam/taskmgr/internal/config"
	"github.com/idilsaglam/taskmgr/internal/exitcode"
	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/service"
	"github.com/idilsaglam/taskmgr/internal/testutil"
	"github.com/idilsaglam/taskmgr/internal/tui"
)

type harness struct {
	dir   string
	env   string
	svc   *testutil.FakeService
	stdin string

	tuiCalls []tui.Session
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	t.Setenv("TASKMGR_TOKEN", token)
	dir := t.TempDir()
	return &harness{dir: dir, env: filepath.Join(dir, "missing.env"), svc: testutil.NewFakeService()}
}

func (h *harness) run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = cli.Run(context.Background(), args, cli.Options{
		ConfigDir: h.dir,
		EnvFile:   h.env,
		Stdin:     strings.NewReader(h.stdin),
		Stdout:    &outBuf,
		Stderr:    &errBuf,
		NewService: func(*config.Config) service.Service {
			return h.svc
		},
		RunTUI: func(ctx context.Context, cfg *config.Config, sess tui.Session) error {
			h.tuiCalls = append(h.tuiCalls, sess)
			return nil
		},
	})
	return outBuf.String(), errBuf.String(), code
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	stdout, stderr, code := h.run(t, "version")
	if code != exitcode.Success {
		t.Fatalf("code = %d, stderr %q", code, stderr)
	}
	if stdout != "taskmgr "+cli.Version+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, "tok")
	if _, _, code := h.run(t, "frobnicate"); code != exitcode.UserError {
		t.Errorf("code = %d, want %d", code, exitcode.UserError)
	}
}

func TestDefaultCommandStartsUI(t *testing.T) {
	h := newHarness(t, "tok")
	if _, stderr, code := h.run(t); code != exitcode.Success {
		t.Fatalf("code = %d, stderr %q", code, stderr)
	}
	if _, _, code := h.run(t, "ui"); code != exitcode.Success {
		t.Fatalf("ui code = %d", code)
	}
	if len(h.tuiCalls) != 2 {
		t.Fatalf("tui started %d times, want 2", len(h.tuiCalls))
	}
	sess := h.tuiCalls[0]
	if sess.Token != "tok" || sess.Service == nil || sess.SaveToken == nil {
		t.Errorf("session = %+v", sess)
	}
}

func TestUIWithoutTokenStillStarts(t *testing.T) {
	h := newHarness(t, "")
	if _, _, code := h.run(t); code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	sess := h.tuiCalls[0]
	if sess.Token != "" {
		t.Errorf("token = %q, want empty", sess.Token)
	}
	if err := sess.SaveToken("saved"); err != nil {
		t.Fatal(err)
	}
	stdout, _, _ := h.run(t, "auth", "status")
	if !strings.Contains(stdout, "source: file") {
		t.Errorf("status after SaveToken = %q", stdout)
	}
}

func TestNetworkCommandsNeedToken(t *testing.T) {
	h := newHarness(t, "")
	for _, args := range [][]string{
		{"projects", "ls"},
		{"tasks", "ls"},
		{"tasks", "cycle", "t1"},
		{"tasks", "rm", "t1", "--yes"},
	} {
		_, stderr, code := h.run(t, args...)
		if code != exitcode.AuthError {
			t.Errorf("%v: code = %d, want %d", args, code, exitcode.AuthError)
		}
		if !strings.Contains(stderr, "no token found") {
			t.Errorf("%v: stderr = %q", args, stderr)
		}
	}
	if len(h.svc.Calls) != 0 {
		t.Errorf("backend called without token: %v", h.svc.Calls)
	}
}

func TestProjectsList(t *testing.T) {
	h := newHarness(t, "tok")
	stdout, _, code := h.run(t, "projects", "ls")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(stdout, "No projects added yet.") {
		t.Errorf("empty list = %q", stdout)
	}

	h.svc.AddProject("p1", "Home", "chores")
	h.svc.AddTask(model.Task{ID: "t1", Name: "Dishes", Status: model.StatusCompleted, ProjectID: "p1"})
	stdout, _, code = h.run(t, "projects", "ls")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	for _, want := range []string{"Projects (1)", "Home", "(p1)", "chores", "100%"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if h.svc.Tokens[0] != "tok" {
		t.Errorf("token sent = %q", h.svc.Tokens[0])
	}
}

func TestProjectsAdd(t *testing.T) {
	h := newHarness(t, "tok")
	if _, stderr, code := h.run(t, "projects", "add", "--name", "  "); code != exitcode.UserError {
		t.Errorf("blank name: code = %d", code)
	} else if !strings.Contains(stderr, "Name cannot be empty") {
		t.Errorf("stderr = %q", stderr)
	}

	stdout, _, code := h.run(t, "projects", "add", "--name", "Work", "--description", "day job")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(stdout, "created project Work") {
		t.Errorf("stdout = %q", stdout)
	}
	projects, _ := h.svc.ListProjects(context.Background(), "tok")
	if len(projects) != 1 || projects[0].Description != "day job" {
		t.Errorf("projects = %+v", projects)
	}
}

func seedTasks(h *harness) {
	h.svc.AddProject("p1", "Home", "")
	h.svc.AddProject("p2", "Work", "")
	h.svc.AddTask(model.Task{ID: "t1", Name: "Dishes", Priority: model.PriorityLow, Status: model.StatusPending, ProjectID: "p1"})
	h.svc.AddTask(model.Task{ID: "t2", Name: "Report", Description: "Q3 numbers", Priority: model.PriorityHigh, Status: model.StatusInProgress, ProjectID: "p2"})
	h.svc.AddTask(model.Task{ID: "t3", Name: "Taxes", Priority: model.PriorityMedium, Status: model.StatusCompleted, ProjectID: "p1"})
}

func TestTasksList(t *testing.T) {
	h := newHarness(t, "tok")
	stdout, _, _ := h.run(t, "tasks", "ls")
	if !strings.Contains(stdout, "No tasks available") {
		t.Errorf("empty list = %q", stdout)
	}

	seedTasks(h)
	stdout, _, code := h.run(t, "tasks", "ls")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	for _, want := range []string{"Tasks (2 remaining)", "[Pending] Dishes", "[In Progress] Report", "Q3 numbers", "Project: Work", "High"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestTasksListGrouped(t *testing.T) {
	h := newHarness(t, "tok")
	seedTasks(h)
	h.svc.AddTask(model.Task{ID: "t4", Name: "Loose", Status: model.StatusPending})
	stdout, _, code := h.run(t, "tasks", "ls", "--group")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	home := strings.Index(stdout, "Home")
	work := strings.Index(stdout, "Work")
	none := strings.Index(stdout, "(no project)")
	if home < 0 || work < 0 || none < 0 {
		t.Fatalf("missing group headers:\n%s", stdout)
	}
	if !(home < work && work < none) {
		t.Errorf("groups out of order (home %d, work %d, none %d)", home, work, none)
	}
	if strings.Contains(stdout, "Project: ") {
		t.Errorf("grouped rows should not repeat the project:\n%s", stdout)
	}
}

func TestTasksAdd(t *testing.T) {
	h := newHarness(t, "tok")
	_, stderr, code := h.run(t, "tasks", "add", "--name", "Dishes", "--project", "Home")
	if code != exitcode.UserError || !strings.Contains(stderr, "Add a project first") {
		t.Errorf("no projects: code %d stderr %q", code, stderr)
	}

	h.svc.AddProject("p1", "Home", "")
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing name", []string{"--project", "p1"}, exitcode.UserError},
		{"missing project", []string{"--name", "x"}, exitcode.UserError},
		{"bad priority", []string{"--name", "x", "--project", "p1", "--priority", "urgent"}, exitcode.UserError},
		{"unknown project", []string{"--name", "x", "--project", "nope"}, exitcode.UserError},
		{"by id", []string{"--name", "a", "--project", "p1"}, exitcode.Success},
		{"by name", []string{"--name", "b", "--project", "home", "--priority", "high"}, exitcode.Success},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"tasks", "add"}, tt.args...)
			if _, stderr, code := h.run(t, args...); code != tt.want {
				t.Errorf("code = %d, want %d (stderr %q)", code, tt.want, stderr)
			}
		})
	}

	tasks := h.svc.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if tasks[0].Priority != model.PriorityMedium || tasks[0].Status != model.StatusPending || tasks[0].ProjectID != "p1" {
		t.Errorf("first task = %+v", tasks[0])
	}
	if tasks[1].Priority != model.PriorityHigh {
		t.Errorf("second task priority = %q", tasks[1].Priority)
	}
}

func TestTasksCycle(t *testing.T) {
	h := newHarness(t, "tok")
	seedTasks(h)

	want := map[string]model.Status{
		"t1": model.StatusInProgress,
		"t2": model.StatusCompleted,
		"t3": model.StatusPending,
	}
	for id, status := range want {
		stdout, stderr, code := h.run(t, "tasks", "cycle", id)
		if code != exitcode.Success {
			t.Fatalf("cycle %s: code %d stderr %q", id, code, stderr)
		}
		if !strings.Contains(stdout, string(status)) {
			t.Errorf("cycle %s: stdout %q", id, stdout)
		}
	}
	for _, task := range h.svc.Tasks() {
		if task.Status != want[task.ID] {
			t.Errorf("%s status = %q, want %q", task.ID, task.Status, want[task.ID])
		}
	}

	if _, _, code := h.run(t, "tasks", "cycle", "missing"); code != exitcode.UserError {
		t.Errorf("unknown id: code = %d", code)
	}
}

func TestTasksStatus(t *testing.T) {
	h := newHarness(t, "tok")
	seedTasks(h)
	if _, _, code := h.run(t, "tasks", "status", "t1", "done"); code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if got, _ := model.Find(h.svc.Tasks(), "t1"); got.Status != model.StatusCompleted {
		t.Errorf("status = %q", got.Status)
	}
	if _, _, code := h.run(t, "tasks", "status", "t1", "sleeping"); code != exitcode.UserError {
		t.Errorf("bad status: code = %d", code)
	}
	if _, _, code := h.run(t, "tasks", "status", "t1"); code != exitcode.UserError {
		t.Errorf("missing arg: code = %d", code)
	}
}

func TestTasksRemoveConfirmation(t *testing.T) {
	h := newHarness(t, "tok")
	seedTasks(h)

	h.stdin = "n\n"
	stdout, _, code := h.run(t, "tasks", "rm", "t1")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(stdout, "Are you sure you want to delete this task? [y/N]") {
		t.Errorf("no prompt: %q", stdout)
	}
	if h.svc.CallCount("DeleteTask") != 0 {
		t.Fatal("declined delete still called the backend")
	}

	h.stdin = ""
	h.run(t, "tasks", "rm", "t1")
	if h.svc.CallCount("DeleteTask") != 0 {
		t.Fatal("empty answer should cancel")
	}

	h.stdin = "Y\n"
	if _, _, code := h.run(t, "tasks", "rm", "t1"); code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if _, ok := model.Find(h.svc.Tasks(), "t1"); ok {
		t.Error("t1 still present")
	}

	h.stdin = ""
	stdout, _, code = h.run(t, "tasks", "rm", "t2", "--yes")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if strings.Contains(stdout, "Are you sure") {
		t.Error("--yes should skip the prompt")
	}
	if len(h.svc.Tasks()) != 1 {
		t.Errorf("tasks = %+v", h.svc.Tasks())
	}
}

func TestBackendErrorsMapToExitCodes(t *testing.T) {
	h := newHarness(t, "tok")
	h.svc.ListTasksErr = &api.Error{Kind: api.KindStatus, Op: "list tasks", StatusCode: 500}
	if _, _, code := h.run(t, "tasks", "ls"); code != exitcode.BackendError {
		t.Errorf("500: code = %d, want %d", code, exitcode.BackendError)
	}

	h.svc.ListTasksErr = &api.Error{Kind: api.KindTransport, Op: "list tasks", Err: context.DeadlineExceeded}
	if _, _, code := h.run(t, "tasks", "ls"); code != exitcode.BackendError {
		t.Errorf("transport: code = %d, want %d", code, exitcode.BackendError)
	}

	h.svc.ListTasksErr = &api.Error{Kind: api.KindStatus, Op: "list tasks", StatusCode: 401}
	_, stderr, code := h.run(t, "tasks", "ls")
	if code != exitcode.AuthError {
		t.Errorf("401: code = %d, want %d", code, exitcode.AuthError)
	}
	if !strings.Contains(stderr, "auth login") {
		t.Errorf("missing login hint: %q", stderr)
	}
}

func TestAuthLoginStatusLogout(t *testing.T) {
	h := newHarness(t, "")

	stdout, _, _ := h.run(t, "auth", "status")
	if !strings.Contains(stdout, "not logged in") {
		t.Errorf("status = %q", stdout)
	}

	h.stdin = "   \n"
	if _, _, code := h.run(t, "auth", "login"); code != exitcode.UserError {
		t.Errorf("empty login: code = %d", code)
	}

	h.stdin = "secret\n"
	if _, _, code := h.run(t, "auth", "login"); code != exitcode.Success {
		t.Fatalf("login code = %d", code)
	}
	stdout, _, _ = h.run(t, "auth", "status")
	if !strings.Contains(stdout, "source: file") || !strings.Contains(stdout, "expires: (unknown)") {
		t.Errorf("status = %q", stdout)
	}

	h.svc.AddProject("p1", "Home", "")
	if _, _, code := h.run(t, "projects", "ls"); code != exitcode.Success {
		t.Fatalf("ls after login: code = %d", code)
	}
	if got := h.svc.Tokens[len(h.svc.Tokens)-1]; got != "secret" {
		t.Errorf("token sent = %q", got)
	}

	if _, _, code := h.run(t, "auth", "logout"); code != exitcode.Success {
		t.Fatalf("logout code = %d", code)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "credentials.json")); !os.IsNotExist(err) {
		t.Errorf("credentials file still present: %v", err)
	}
	stdout, _, _ = h.run(t, "auth", "status")
	if !strings.Contains(stdout, "not logged in") {
		t.Errorf("status after logout = %q", stdout)
	}
}

func TestAuthLogoutWithEnvToken(t *testing.T) {
	h := newHarness(t, "from-env")
	stdout, _, code := h.run(t, "auth", "logout")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(stdout, "TASKMGR_TOKEN") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestAuthWhoAmI(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, signed)
	stdout, _, code := h.run(t, "auth", "whoami")
	if code != exitcode.Success {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(stdout, "JWT payload") || !strings.Contains(stdout, "alice") {
		t.Errorf("stdout = %q", stdout)
	}

	h = newHarness(t, "opaque")
	stdout, _, _ = h.run(t, "auth", "whoami")
	if !strings.Contains(stdout, "Opaque token") {
		t.Errorf("stdout = %q", stdout)
	}

	h = newHarness(t, "")
	if _, _, code := h.run(t, "auth", "whoami"); code != exitcode.AuthError {
		t.Errorf("not logged in: code = %d", code)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t, "")
	t.Setenv("TASKMGR_API_URL", "http://tasks.example:8080")

	if _, stderr, code := h.run(t, "config", "init"); code != exitcode.Success {
		t.Fatalf("init: code %d stderr %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(h.dir, config.ConfigFile)); err != nil {
		t.Fatalf("config file: %v", err)
	}
	if _, _, code := h.run(t, "config", "init"); code != exitcode.AuthError {
		t.Errorf("second init: code = %d, want %d", code, exitcode.AuthError)
	}
	if _, _, code := h.run(t, "config", "init", "--force"); code != exitcode.Success {
		t.Errorf("forced init: code = %d", code)
	}

	stdout, _, code := h.run(t, "config", "show")
	if code != exitcode.Success {
		t.Fatalf("show: code = %d", code)
	}
	for _, want := range []string{"api_url: http://tasks.example:8080", "timeout: none", "theme: classic", "token: (not set)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show missing %q:\n%s", want, stdout)
		}
	}
}

func TestBadConfigIsConfigError(t *testing.T) {
	h := newHarness(t, "tok")
	t.Setenv("TASKMGR_TIMEOUT", "-5s")
	if _, _, code := h.run(t, "version"); code != exitcode.AuthError {
		t.Errorf("code = %d, want %d", code, exitcode.AuthError)
	}
}

func TestCredentialStorageErrorsAreConfigErrors(t *testing.T) {
	h := newHarness(t, "")
	blocker := filepath.Join(h.dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	h.dir = blocker
	_, stderr, code := h.run(t, "auth", "login", "secret")
	if code != exitcode.AuthError {
		t.Errorf("unwritable credentials: code = %d, want %d (stderr %q)", code, exitcode.AuthError, stderr)
	}
	if !strings.Contains(stderr, "save token") {
		t.Errorf("stderr = %q", stderr)
	}

	h = newHarness(t, "")
	if err := os.WriteFile(filepath.Join(h.dir, "credentials.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, code := h.run(t, "projects", "ls"); code != exitcode.AuthError {
		t.Errorf("unreadable credentials: code = %d, want %d", code, exitcode.AuthError)
	}
	if len(h.svc.Calls) != 0 {
		t.Errorf("backend called with unreadable credentials: %v", h.svc.Calls)
	}
}
