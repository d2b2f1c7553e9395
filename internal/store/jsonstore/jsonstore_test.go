package jsonstore

import (
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name string `json:"name"`
}

func TestReadMissing(t *testing.T) {
	var d doc
	found, err := Read(filepath.Join(t.TempDir(), "nope.json"), &d)
	if err != nil || found {
		t.Errorf("expected not found without error, got found=%v err=%v", found, err)
	}
}

func TestWriteRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "doc.json")
	if err := Write(p, doc{Name: "x"}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fi, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %v", fi.Mode().Perm())
	}

	var d doc
	found, err := Read(p, &d)
	if err != nil || !found || d.Name != "x" {
		t.Errorf("got found=%v err=%v doc=%+v", found, err, d)
	}
}

func TestReadCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(p, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	var d doc
	if _, err := Read(p, &d); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestRemove(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.json")
	if err := Write(p, doc{}, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Remove(p); err != nil {
		t.Errorf("remove: %v", err)
	}
	if err := Remove(p); err != nil {
		t.Errorf("second remove should be a no-op, got %v", err)
	}
}
