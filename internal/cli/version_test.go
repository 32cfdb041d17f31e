package cli

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	clearConfigEnv(t)
	t.Chdir(t.TempDir())

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}

	for _, want := range []string{"agency version " + Version, "Git commit: " + GitCommit, runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}
