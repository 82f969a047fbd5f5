package version

import (
	"strings"
	"testing"
)

// setBuildVars overrides the ldflags variables for one test and restores
// them on cleanup.
func setBuildVars(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBranch, origBuildTime := Version, GitCommit, GitBranch, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = origVersion, origCommit, origBranch, origBuildTime
	})
	Version, GitCommit, GitBranch, BuildTime = version, commit, branch, buildTime
}

func TestGetVersionInfo(t *testing.T) {
	setBuildVars(t, "1.2.0", "abc1234", "main", "2026-08-30T10:30:00Z")

	info := GetVersionInfo()
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q", info.Version)
	}
	if !info.IsRelease {
		t.Error("a stamped version should count as a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("GitCommit = %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("BuildDate year = %d, want 2026", info.BuildDate.Year())
	}
}

func TestGetVersionInfoDevIsNotRelease(t *testing.T) {
	setBuildVars(t, "dev", "", "", "")

	info := GetVersionInfo()
	if info.IsRelease {
		t.Error("dev builds are not releases")
	}
	if info.BuildDate.IsZero() {
		t.Error("BuildDate should fall back to now")
	}
}

func TestGetVersionInfoDirtyIsNotRelease(t *testing.T) {
	setBuildVars(t, "1.2.0-dirty", "", "", "")

	if GetVersionInfo().IsRelease {
		t.Error("dirty builds are not releases")
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("abc1234def5678"); got != "abc1234" {
		t.Errorf("shortCommit(long) = %q", got)
	}
	if got := shortCommit("ab12"); got != "ab12" {
		t.Errorf("shortCommit(short) = %q, want unchanged", got)
	}
}

func TestGetShortVersion(t *testing.T) {
	setBuildVars(t, "1.2.0", "abc1234", "", "2026-08-30T10:30:00Z")

	if sv := GetShortVersion(); sv != "1.2.0-abc1234" {
		t.Errorf("GetShortVersion = %q, want 1.2.0-abc1234", sv)
	}
}

func TestGetFullVersion(t *testing.T) {
	setBuildVars(t, "1.2.0", "abc1234", "main", "2026-08-30T10:30:00Z")

	fv := GetFullVersion()
	if !strings.Contains(fv, "1.2.0") || !strings.Contains(fv, "abc1234") {
		t.Errorf("GetFullVersion = %q, want version and commit", fv)
	}
	if strings.Contains(fv, "main") {
		t.Errorf("GetFullVersion = %q, default branch should be omitted", fv)
	}
	if !strings.Contains(fv, "built") {
		t.Errorf("GetFullVersion = %q, want build date", fv)
	}
}

func TestGetFullVersionFeatureBranch(t *testing.T) {
	setBuildVars(t, "1.2.0", "abc1234", "feature/runner-locks", "2026-08-30T10:30:00Z")

	if fv := GetFullVersion(); !strings.Contains(fv, "feature/runner-locks") {
		t.Errorf("GetFullVersion = %q, want feature branch included", fv)
	}
}
