package narrative

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/intervalo/internal/motion"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Welcome == "" {
		t.Error("missing welcome line")
	}
	for _, b := range motion.Bands {
		if n := len(c.Pool(b)); n != 3 {
			t.Errorf("pool %s has %d lines, want 3", b, n)
		}
	}
	for _, p := range Paths {
		if !c.HasPath(p) {
			t.Errorf("missing path %s", p)
		}
		if set := c.FragmentSet(p, 0); len(set) != 3 {
			t.Errorf("path %s set 0 = %v", p, set)
		}
	}
	if ids := c.SecretIDs(); len(ids) != 4 || ids[0] != "1" || ids[3] != "4" {
		t.Errorf("secret ids = %v", ids)
	}
}

func TestDefaultIsACopy(t *testing.T) {
	a := Default()
	a.Hints["pausa"] = nil
	if len(Default().Hints["pausa"]) == 0 {
		t.Error("Default returned shared state")
	}
}

func TestFragmentSetWraps(t *testing.T) {
	c := Default()
	first := c.FragmentSet("sombra", 0)
	if got := c.FragmentSet("sombra", 3); got[0] != first[0] {
		t.Errorf("index 3 did not wrap to set 0: %q", got[0])
	}
	if got := c.FragmentSet("sombra", -1); got[0] != c.FragmentSet("sombra", 2)[0] {
		t.Errorf("negative index did not wrap: %q", got[0])
	}
	if got := c.FragmentSet("nowhere", 1); got[0] != c.FragmentSet("luz", 1)[0] {
		t.Errorf("unknown path did not fall back to luz: %q", got[0])
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.yaml")
	data := "hints:\n  rapido: [\"depressa\"]\nsecrets:\n  \"5\": [\"novo\"]\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Pool(motion.Rapido); len(got) != 1 || got[0] != "depressa" {
		t.Errorf("rapido pool = %v", got)
	}
	if len(c.Pool(motion.Lento)) != 3 {
		t.Error("untouched pool lost")
	}
	if lines, ok := c.Secret("5"); !ok || lines[0] != "novo" {
		t.Errorf("secret 5 = %v, %v", lines, ok)
	}
}

func TestLoadRejectsEmptyPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.yaml")
	if err := os.WriteFile(path, []byte("hints:\n  medio: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}
}

func TestSecret(t *testing.T) {
	c := Default()
	if _, ok := c.Secret("9"); ok {
		t.Error("unknown secret reported present")
	}
	if lines, ok := c.Secret("2"); !ok || len(lines) != 3 {
		t.Errorf("secret 2 = %v", lines)
	}
}
