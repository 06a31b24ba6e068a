package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMax_PrefersHigherSeverity(t *testing.T) {
	if got := Max(SeverityModified, SeverityDeleted); got != SeverityDeleted {
		t.Fatalf("Max = %v, want deleted", got)
	}
	if got := Max(SeverityConflict, SeverityAdded); got != SeverityConflict {
		t.Fatalf("Max = %v, want conflict", got)
	}
}

func TestSeverityColor_Mapping(t *testing.T) {
	th := Default()
	if th.SeverityColor(SeverityDeleted) != th.DelColor {
		t.Fatalf("deleted files should use the deletion color")
	}
	if th.SeverityColor(SeverityAdded) != th.AddColor {
		t.Fatalf("added files should use the addition color")
	}
	if th.SeverityColor(SeverityUntracked) != th.UntrackedColor {
		t.Fatalf("untracked files should use the untracked color")
	}
}

func TestLoadFromRepo_MergesOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".redline"), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "add_color = \"42\"\ndel_color = \"99\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".redline", "theme.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	th := LoadFromRepo(dir)
	if th.AddColor != "42" || th.DelColor != "99" {
		t.Fatalf("overrides not applied: %+v", th)
	}
	// unset keys keep defaults
	if th.MetaColor != Default().MetaColor {
		t.Fatalf("unset key should keep default, got %q", th.MetaColor)
	}
}

func TestLoadFromRepo_MissingFileYieldsDefaults(t *testing.T) {
	th := LoadFromRepo(t.TempDir())
	if th != Default() {
		t.Fatalf("expected defaults, got %+v", th)
	}
}
