package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
)

func TestNewFilenameKeepsExtension(t *testing.T) {
	name, err := NewFilename("Ödev Kağıdı.PDF")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("extension not kept lowercased: %q", name)
	}
	if !objectName.MatchString(name) {
		t.Fatalf("generated name %q is not a valid object id", name)
	}

	other, _ := NewFilename("Ödev Kağıdı.PDF")
	if other == name {
		t.Fatal("names should be random")
	}
}

func TestObjectNameRejectsTraversal(t *testing.T) {
	for _, id := range []string{"../etc/passwd", "abc", strings.Repeat("a", 32) + "/x"} {
		if objectName.MatchString(id) {
			t.Errorf("%q should be rejected", id)
		}
	}
}

func TestCountingReader(t *testing.T) {
	cr := &countingReader{r: strings.NewReader("hello world")}
	if _, err := io.Copy(io.Discard, cr); err != nil {
		t.Fatal(err)
	}
	if cr.n != 11 {
		t.Fatalf("counted %d bytes, want 11", cr.n)
	}
}

func TestMatchesFilter(t *testing.T) {
	owner := uuid.New()
	f := model.File{ContentType: "application/PDF", UploadedBy: owner}

	if !matchesFilter(f, model.FileFilter{ContentType: "pdf"}) {
		t.Error("content type match should be case-insensitive substring")
	}
	if matchesFilter(f, model.FileFilter{ContentType: "image"}) {
		t.Error("unexpected content type match")
	}
	if !matchesFilter(f, model.FileFilter{UploadedBy: owner.String()}) {
		t.Error("uploader filter should match")
	}
	if matchesFilter(f, model.FileFilter{UploadedBy: uuid.NewString()}) {
		t.Error("uploader filter should not match another user")
	}
}

func TestParseObjectID(t *testing.T) {
	if _, err := parseObjectID("nope"); err != ErrInvalidID {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
	if _, err := parseObjectID("64b7f0c2a1b2c3d4e5f60718"); err != nil {
		t.Fatalf("valid hex rejected: %v", err)
	}
}
