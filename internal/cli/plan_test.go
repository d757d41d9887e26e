package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"github.com/ErykKul/DataSync/internal/diff"
	"github.com/ErykKul/DataSync/internal/submit"
	"github.com/ErykKul/DataSync/internal/util"
)

func writeTestPlan(t *testing.T, env *util.Env, path string) *submit.Plan {
	t.Helper()
	tree, err := diff.Build([]diff.FileRecord{
		{ID: "a.txt", Name: "a.txt", Status: diff.SetStatus(diff.StatusNew)},
		{ID: "b.txt", Name: "b.txt", Status: diff.SetStatus(diff.StatusEqual)},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	tree.ApplySelection(diff.SelectUpdate)

	plan := submit.NewPlan("job-7", diff.SelectUpdate, tree)
	if err := (submit.FileSubmitter{Fs: env.Fs, Path: path}).Submit(context.Background(), plan); err != nil {
		t.Fatalf("failed to write plan: %v", err)
	}
	return plan
}

func TestPlanWith_Print(t *testing.T) {
	env := util.NewTestEnv(nil)
	plan := writeTestPlan(t, env, "/work/plan.json")

	var out bytes.Buffer
	if err := planWith(context.Background(), env, "/work", &out, "plan.json", ".dsync.toml", "", false); err != nil {
		t.Fatalf("planWith failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Plan:    " + plan.ID,
		"Job:     job-7",
		"Mode:    update",
		"Pending: 1 of 2 files",
		"copy    a.txt",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "b.txt") {
		t.Errorf("ignored records should not be listed:\n%s", got)
	}
}

func TestPlanWith_Submit(t *testing.T) {
	var stored atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/gitlab/store" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		stored.Add(1)
		_, _ = w.Write([]byte(`{"status":"accepted"}`))
	}))
	defer srv.Close()

	env := util.NewTestEnv(map[string]string{"DSYNC_DATAVERSE_TOKEN": "dv"})
	cfg := fmt.Sprintf("server = %q\nlog_level = \"error\"\n\n[repo]\ntype = \"gitlab\"\n\n[dataset]\npersistent_id = \"doi:1\"\n", srv.URL)
	if err := afero.WriteFile(env.Fs, "/work/.dsync.toml", []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	plan := writeTestPlan(t, env, "/work/plan.json")

	var out bytes.Buffer
	if err := planWith(context.Background(), env, "/work", &out, "/work/plan.json", ".dsync.toml", "", true); err != nil {
		t.Fatalf("planWith failed: %v", err)
	}
	if n := stored.Load(); n != 1 {
		t.Errorf("expected 1 store request, got %d", n)
	}
	if !strings.Contains(out.String(), "✓ Plan "+plan.ID+" submitted") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestPlanWith_Errors(t *testing.T) {
	env := util.NewTestEnv(nil)

	var out bytes.Buffer
	err := planWith(context.Background(), env, "/work", &out, "missing.json", ".dsync.toml", "", false)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing plan error, got %v", err)
	}

	writeTestPlan(t, env, "/work/plan.json")
	err = planWith(context.Background(), env, "/work", &out, "plan.json", ".dsync.toml", "", true)
	if err == nil || err.Error() != ErrMsgConfigNotFound {
		t.Errorf("expected config not found error, got %v", err)
	}
}
