package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mindvault/mindvault/internal/apperr"
)

func tempService(t *testing.T) (*Service, string) {
	t.Helper()
	return NewService(".mschema"), t.TempDir()
}

func TestCreateAndRead(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	path, err := svc.Create(ctx, vault, "My Map", `{"nodes":[]}`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if path != filepath.Join(vault, "My Map.mschema") {
		t.Errorf("path = %q", path)
	}

	got, err := svc.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != `{"nodes":[]}` {
		t.Errorf("content = %q", got)
	}
}

func TestCreate_SanitizesName(t *testing.T) {
	svc, vault := tempService(t)

	path, err := svc.Create(context.Background(), vault, "My Note!!", "x")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Base(path) != "My Note.mschema" {
		t.Errorf("base = %q, want %q", filepath.Base(path), "My Note.mschema")
	}
}

func TestCreate_Collision(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, vault, "dup", "a"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(ctx, vault, "dup", "b")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second Create err = %v, want ErrAlreadyExists", err)
	}
	// The original content is untouched.
	got, _ := svc.Read(ctx, filepath.Join(vault, "dup.mschema"))
	if got != "a" {
		t.Errorf("content after collision = %q, want a", got)
	}
}

func TestCreate_InvalidVault(t *testing.T) {
	svc, vault := tempService(t)

	_, err := svc.Create(context.Background(), filepath.Join(vault, "missing"), "n", "c")
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestRead_NotFound(t *testing.T) {
	svc, vault := tempService(t)

	_, err := svc.Read(context.Background(), filepath.Join(vault, "nope.mschema"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestWrite_OverwritesInPlace(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()
	path := filepath.Join(vault, "doc.mschema")

	if err := svc.Write(ctx, path, "v1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := svc.Write(ctx, path, "v2"); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	got, _ := svc.Read(ctx, path)
	if got != "v2" {
		t.Errorf("content = %q, want v2", got)
	}
}

func TestWrite_CreatesParents(t *testing.T) {
	svc, vault := tempService(t)
	path := filepath.Join(vault, "a", "b", "deep.mschema")

	if err := svc.Write(context.Background(), path, "deep"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "deep" {
		t.Errorf("content = %q", data)
	}
}

func TestDelete(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	path, _ := svc.Create(ctx, vault, "bye", "x")
	if err := svc.Delete(ctx, path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if svc.Exists(ctx, path) {
		t.Error("file still exists after delete")
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, vault := tempService(t)

	err := svc.Delete(context.Background(), filepath.Join(vault, "ghost.mschema"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete_WrongExtension(t *testing.T) {
	svc, vault := tempService(t)
	path := filepath.Join(vault, "keep.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := svc.Delete(context.Background(), path)
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Error("file should survive a refused delete")
	}
}

func TestDelete_RefusesBareExtension(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	// An all-punctuation name sanitizes to nothing, leaving a bare
	// ".mschema" dotfile behind.
	path, err := svc.Create(ctx, vault, "@#$%", "x")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Base(path) != ".mschema" {
		t.Fatalf("path = %q, want bare .mschema", path)
	}

	if err := svc.Delete(ctx, path); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestDelete_RefusesDirectory(t *testing.T) {
	svc, vault := tempService(t)
	dir := filepath.Join(vault, "trap.mschema")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	err := svc.Delete(context.Background(), dir)
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	if _, statErr := os.Stat(dir); statErr != nil {
		t.Error("directory should survive a refused delete")
	}
}

func TestRename(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	oldPath, _ := svc.Create(ctx, vault, "before", "content")
	newPath, err := svc.Rename(ctx, oldPath, "after")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if newPath != filepath.Join(vault, "after.mschema") {
		t.Errorf("newPath = %q", newPath)
	}
	if svc.Exists(ctx, oldPath) {
		t.Error("old path still exists")
	}
	got, _ := svc.Read(ctx, newPath)
	if got != "content" {
		t.Errorf("content = %q", got)
	}
}

func TestRename_ToOwnNameCollides(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	path, _ := svc.Create(ctx, vault, "same", "x")
	_, err := svc.Rename(ctx, path, "same")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
	// The document is untouched.
	got, _ := svc.Read(ctx, path)
	if got != "x" {
		t.Errorf("content = %q, want x", got)
	}
}

func TestRename_Collision(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	_, _ = svc.Create(ctx, vault, "taken", "a")
	src, _ := svc.Create(ctx, vault, "src", "b")

	_, err := svc.Rename(ctx, src, "taken")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestRename_NotFound(t *testing.T) {
	svc, vault := tempService(t)

	_, err := svc.Rename(context.Background(), filepath.Join(vault, "ghost.mschema"), "new")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExists(t *testing.T) {
	svc, vault := tempService(t)
	ctx := context.Background()

	if svc.Exists(ctx, filepath.Join(vault, "no.mschema")) {
		t.Error("Exists = true for missing file")
	}
	path, _ := svc.Create(ctx, vault, "yes", "x")
	if !svc.Exists(ctx, path) {
		t.Error("Exists = false for present file")
	}
	// Directories count too; Exists mirrors a plain stat.
	if !svc.Exists(ctx, vault) {
		t.Error("Exists = false for directory")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Note", "My Note"},
		{"My Note!!", "My Note"},
		{"  padded  ", "padded"},
		{"../../etc/passwd", "....etcpasswd"},
		{"slash/back\\slash", "slashbackslash"},
		{"under_score-dash.dot", "under_score-dash.dot"},
		{"émoji🙂 før", "émoji før"},
		{"@#$%", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Errorf("sanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
