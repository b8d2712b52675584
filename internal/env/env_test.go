package env

import (
	"os"
	"strings"
	"testing"
)

func lookup(merged []string, key string) (string, bool) {
	prefix := key + "="
	for _, kv := range merged {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):], true
		}
	}
	return "", false
}

func TestSetContract(t *testing.T) {
	e := New()
	e.SetContract("456_11", `M:\projects\456\model.rvt`, `C:\rvtbatch\logs`)

	merged := e.Merge()
	for key, want := range map[string]string{
		KeyProject: "456_11",
		KeyModel:   `M:\projects\456\model.rvt`,
		KeyLogs:    `C:\rvtbatch\logs`,
	} {
		got, ok := lookup(merged, key)
		if !ok || got != want {
			t.Fatalf("%s = %q (ok=%v), want %q", key, got, ok, want)
		}
		// Mirrored into the current process for in-process hooks.
		if os.Getenv(key) != want {
			t.Fatalf("%s not mirrored into process env", key)
		}
	}
}

func TestMergeOverridesBase(t *testing.T) {
	t.Setenv("RVTBATCH_TEST_VAR", "base")
	e := New()
	e.FromOS()
	e.Set("RVTBATCH_TEST_VAR", "override")

	got, ok := lookup(e.Merge(), "RVTBATCH_TEST_VAR")
	if !ok || got != "override" {
		t.Fatalf("override lost: %q (ok=%v)", got, ok)
	}
}

func TestMergeCarriesOSBase(t *testing.T) {
	t.Setenv("RVTBATCH_BASE_VAR", "inherited")
	e := New()
	e.Set("EXTRA", "1")

	merged := e.Merge()
	if got, ok := lookup(merged, "RVTBATCH_BASE_VAR"); !ok || got != "inherited" {
		t.Fatalf("base env not carried: %q (ok=%v)", got, ok)
	}
	if got, ok := lookup(merged, "EXTRA"); !ok || got != "1" {
		t.Fatalf("override not carried: %q (ok=%v)", got, ok)
	}
}
