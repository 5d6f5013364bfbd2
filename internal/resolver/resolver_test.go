package resolver

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/okvist/refsolve/internal/diff"
	"github.com/okvist/refsolve/internal/fetch"
	"github.com/okvist/refsolve/internal/lockfile"
)

// setupRemote builds a bare "remote" with two tagged revisions:
//
//	v1.0.0: b.txt
//	v2.0.0: a.txt added, b.txt modified
//
// and returns a local clone made at v1.0.0, before v2.0.0 existed, so
// resolving v2.0.0 exercises the fetch step.
func setupRemote(t *testing.T) (remoteDir, localDir string) {
	t.Helper()

	remoteDir = t.TempDir()
	runGit(t, remoteDir, "init", "--bare")

	workDir := t.TempDir()
	runGit(t, workDir, "init")
	runGit(t, workDir, "config", "user.email", "test@test.com")
	runGit(t, workDir, "config", "user.name", "Test User")
	writeFile(t, workDir, "b.txt", "b version 1\n")
	runGit(t, workDir, "add", ".")
	runGit(t, workDir, "commit", "-m", "Initial commit")
	runGit(t, workDir, "tag", "v1.0.0")
	runGit(t, workDir, "remote", "add", "origin", remoteDir)
	runGit(t, workDir, "push", "-u", "origin", "HEAD:main")
	runGit(t, workDir, "push", "origin", "--tags")

	// Clone now, before the second revision exists on the remote
	localDir = t.TempDir()
	runGit(t, localDir, "clone", remoteDir, ".")

	writeFile(t, workDir, "a.txt", "a\n")
	writeFile(t, workDir, "b.txt", "b version 2\n")
	runGit(t, workDir, "add", ".")
	runGit(t, workDir, "commit", "-m", "Second revision")
	runGit(t, workDir, "tag", "v2.0.0")
	runGit(t, workDir, "push", "origin", "HEAD:main")
	runGit(t, workDir, "push", "origin", "--tags")

	return remoteDir, localDir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
}

func TestResolveDiff(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)

	r := New("origin")
	result, err := r.ResolveDiff(context.Background(), localDir, "v1.0.0", "v2.0.0", diff.NewKindSet(diff.KindAdded, diff.KindModified))
	if err != nil {
		t.Fatalf("ResolveDiff() error = %v", err)
	}

	want := []diff.Change{
		{Path: "a.txt", Kind: diff.KindAdded},
		{Path: "b.txt", Kind: diff.KindModified},
	}
	if len(result.Changes) != len(want) {
		t.Fatalf("ResolveDiff() returned %d changes, want %d: %+v", len(result.Changes), len(want), result.Changes)
	}
	for i := range want {
		if result.Changes[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, result.Changes[i], want[i])
		}
	}

	if len(result.OldSHA) != 40 || len(result.NewSHA) != 40 {
		t.Errorf("resolved SHAs should be full 40-char: old=%q new=%q", result.OldSHA, result.NewSHA)
	}
	if result.OldSHA == result.NewSHA {
		t.Error("old and new revisions resolved to the same SHA")
	}
	if len(result.Attempts) == 0 {
		t.Error("fetch attempt history should have been recorded")
	}
}

func TestResolveDiff_FilterVariants(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)
	ctx := context.Background()
	r := New("origin")

	tests := []struct {
		name  string
		kinds diff.KindSet
		want  []string
	}{
		{"added only", diff.NewKindSet(diff.KindAdded), []string{"a.txt"}},
		{"modified only", diff.NewKindSet(diff.KindModified), []string{"b.txt"}},
		{"deleted only", diff.NewKindSet(diff.KindDeleted), nil},
		{"empty set", diff.NewKindSet(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.ResolveDiff(ctx, localDir, "v1.0.0", "v2.0.0", tt.kinds)
			if err != nil {
				t.Fatalf("ResolveDiff() error = %v", err)
			}
			if len(result.Changes) != len(tt.want) {
				t.Fatalf("got %d changes, want %d: %+v", len(result.Changes), len(tt.want), result.Changes)
			}
			for i, path := range tt.want {
				if result.Changes[i].Path != path {
					t.Errorf("change[%d].Path = %q, want %q", i, result.Changes[i].Path, path)
				}
			}
		})
	}
}

func TestResolveDiff_MissingInput(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)
	ctx := context.Background()
	r := New("origin", WithoutFetch())

	tests := []struct {
		name      string
		oldRev    string
		newRev    string
		wantRoles []Role
	}{
		{"empty old", "", "v2.0.0", []Role{RoleOld}},
		{"empty new", "v1.0.0", "", []Role{RoleNew}},
		{"both empty", "", "", []Role{RoleOld, RoleNew}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolveDiff(ctx, localDir, tt.oldRev, tt.newRev, diff.NewKindSet(diff.KindAdded))
			if err == nil {
				t.Fatal("ResolveDiff() with empty revision should return error")
			}

			var missing *ErrMissingInput
			if !errors.As(err, &missing) {
				t.Fatalf("expected *ErrMissingInput, got %T: %v", err, err)
			}
			if len(missing.Roles) != len(tt.wantRoles) {
				t.Fatalf("Roles = %v, want %v", missing.Roles, tt.wantRoles)
			}
			for i, role := range tt.wantRoles {
				if missing.Roles[i] != role {
					t.Errorf("Roles[%d] = %v, want %v", i, missing.Roles[i], role)
				}
			}
		})
	}
}

func TestResolveDiff_RevisionNotFound(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)
	ctx := context.Background()
	r := New("origin")

	t.Run("new revision missing", func(t *testing.T) {
		_, err := r.ResolveDiff(ctx, localDir, "v1.0.0", "v9.9.9", diff.NewKindSet(diff.KindAdded))
		if err == nil {
			t.Fatal("ResolveDiff() with missing new revision should return error")
		}

		var notFound *ErrRevisionNotFound
		if !errors.As(err, &notFound) {
			t.Fatalf("expected *ErrRevisionNotFound, got %T: %v", err, err)
		}
		if notFound.Role != RoleNew {
			t.Errorf("Role = %v, want RoleNew", notFound.Role)
		}
		if notFound.Rev != "v9.9.9" {
			t.Errorf("Rev = %q, want v9.9.9", notFound.Rev)
		}
	})

	t.Run("old revision missing", func(t *testing.T) {
		_, err := r.ResolveDiff(ctx, localDir, "v0.0.1", "v2.0.0", diff.NewKindSet(diff.KindAdded))
		if err == nil {
			t.Fatal("ResolveDiff() with missing old revision should return error")
		}

		var notFound *ErrRevisionNotFound
		if !errors.As(err, &notFound) {
			t.Fatalf("expected *ErrRevisionNotFound, got %T: %v", err, err)
		}
		if notFound.Role != RoleOld {
			t.Errorf("Role = %v, want RoleOld", notFound.Role)
		}
	})

	t.Run("both missing reports old first", func(t *testing.T) {
		_, err := r.ResolveDiff(ctx, localDir, "v0.0.1", "v9.9.9", diff.NewKindSet(diff.KindAdded))
		if err == nil {
			t.Fatal("ResolveDiff() with both revisions missing should return error")
		}

		var notFound *ErrRevisionNotFound
		if !errors.As(err, &notFound) {
			t.Fatalf("expected *ErrRevisionNotFound, got %T: %v", err, err)
		}
		if notFound.Role != RoleOld {
			t.Errorf("first reported role = %v, want RoleOld", notFound.Role)
		}
	})
}

func TestResolveDiff_FetchExhausted(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	localDir := t.TempDir()
	runGit(t, localDir, "init")
	runGit(t, localDir, "remote", "add", "origin", filepath.Join(t.TempDir(), "missing-remote"))

	f := fetch.New("origin")
	f.MaxAttempts = 2
	f.BackoffBase = 0

	r := New("origin", WithFetcher(f))
	_, err := r.ResolveDiff(context.Background(), localDir, "v1.0.0", "v2.0.0", diff.NewKindSet(diff.KindAdded))
	if err == nil {
		t.Fatal("ResolveDiff() against missing remote should return error")
	}

	var exhausted *fetch.ErrFetchExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *fetch.ErrFetchExhausted, got %T: %v", err, err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}
}

func TestResolveDiff_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	r := New("origin", WithoutFetch())
	_, err := r.ResolveDiff(context.Background(), t.TempDir(), "v1.0.0", "v2.0.0", diff.NewKindSet(diff.KindAdded))
	if err == nil {
		t.Error("ResolveDiff() in a plain directory should return error")
	}
}

func TestResolveDiff_CleansStaleLock(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)

	// Plant a stale index.lock as a crashed git process would leave it
	lockPath := filepath.Join(localDir, ".git", "index.lock")
	if err := os.WriteFile(lockPath, nil, 0644); err != nil {
		t.Fatalf("failed to plant lock file: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatalf("failed to age lock file: %v", err)
	}

	cleaner := lockfile.NewCleaner(lockfile.NewAgePolicy(10*time.Minute, nil), nil)
	r := New("origin", WithCleaner(cleaner))

	result, err := r.ResolveDiff(context.Background(), localDir, "v1.0.0", "v2.0.0", diff.NewKindSet(diff.KindAdded, diff.KindModified))
	if err != nil {
		t.Fatalf("ResolveDiff() error = %v", err)
	}

	if len(result.RemovedLocks) != 1 {
		t.Fatalf("RemovedLocks = %v, want exactly the planted lock", result.RemovedLocks)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("stale index.lock should have been deleted")
	}
}

func TestResolveDiff_Deterministic(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)
	ctx := context.Background()
	kinds := diff.NewKindSet(diff.KindAdded, diff.KindModified)
	r := New("origin")

	first, err := r.ResolveDiff(ctx, localDir, "v1.0.0", "v2.0.0", kinds)
	if err != nil {
		t.Fatalf("first ResolveDiff() error = %v", err)
	}
	second, err := r.ResolveDiff(ctx, localDir, "v1.0.0", "v2.0.0", kinds)
	if err != nil {
		t.Fatalf("second ResolveDiff() error = %v", err)
	}

	if len(first.Changes) != len(second.Changes) {
		t.Fatalf("repeated runs disagreed on change count: %d vs %d", len(first.Changes), len(second.Changes))
	}
	for i := range first.Changes {
		if first.Changes[i] != second.Changes[i] {
			t.Errorf("repeated runs disagreed at %d: %+v vs %+v", i, first.Changes[i], second.Changes[i])
		}
	}
	if first.OldSHA != second.OldSHA || first.NewSHA != second.NewSHA {
		t.Error("repeated runs resolved different SHAs")
	}
}

func TestResolveDiff_WithoutFetch(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed, skipping test")
	}

	_, localDir := setupRemote(t)
	// Fetch everything up front so offline resolution can succeed
	runGit(t, localDir, "fetch", "origin", "--tags")

	r := New("origin", WithoutFetch())
	result, err := r.ResolveDiff(context.Background(), localDir, "v1.0.0", "v2.0.0", diff.NewKindSet(diff.KindAdded))
	if err != nil {
		t.Fatalf("ResolveDiff() error = %v", err)
	}

	if len(result.Attempts) != 0 {
		t.Errorf("offline run recorded fetch attempts: %+v", result.Attempts)
	}
	if len(result.Changes) != 1 || result.Changes[0].Path != "a.txt" {
		t.Errorf("Changes = %+v, want [a.txt added]", result.Changes)
	}
}

func TestRole_String(t *testing.T) {
	if RoleOld.String() != "old" {
		t.Errorf("RoleOld.String() = %q, want old", RoleOld.String())
	}
	if RoleNew.String() != "new" {
		t.Errorf("RoleNew.String() = %q, want new", RoleNew.String())
	}
}

func TestErrMissingInput_Error(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
		want  string
	}{
		{"old only", []Role{RoleOld}, "missing required input: old revision"},
		{"both", []Role{RoleOld, RoleNew}, "missing required input: old revision, new revision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ErrMissingInput{Roles: tt.roles}
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
