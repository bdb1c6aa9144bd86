package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/akilliyazili/yazili-backend/internal/model"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")

func TestUploadSniffsContent(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	svc := NewFileService(blobs, 1<<20, 10, nopLog)
	actor := actorFor(model.RoleTeacher)

	fh := multipartFiles(t, "file", map[string][]byte{"Ödev 1.PDF": pdfBody})[0]
	f, err := svc.Upload(ctx, actor, fh)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.ContentType != "application/pdf" || f.OriginalName != "Ödev 1.PDF" || f.UploadedBy != actor.UserID {
		t.Fatalf("file = %+v", f)
	}
	if f.Size != int64(len(pdfBody)) || !bytes.Equal(blobs.content[f.ID], pdfBody) {
		t.Fatal("stored content differs from the upload")
	}

	fake := multipartFiles(t, "file", map[string][]byte{"resim.png": []byte("#!/bin/sh\necho hi\n")})[0]
	if _, err := svc.Upload(ctx, actor, fake); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("mismatched content: err = %v", err)
	}

	exe := multipartFiles(t, "file", map[string][]byte{"setup.exe": pngHeader})[0]
	if _, err := svc.Upload(ctx, actor, exe); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("disallowed extension: err = %v", err)
	}
}

func TestUploadSizeLimit(t *testing.T) {
	svc := NewFileService(newFakeBlobs(), 16, 10, nopLog)
	fh := multipartFiles(t, "file", map[string][]byte{"a.pdf": pdfBody})[0]
	if _, err := svc.Upload(context.Background(), actorFor(model.RoleStudent), fh); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestUploadManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	svc := NewFileService(blobs, 1<<20, 2, nopLog)
	actor := actorFor(model.RoleTeacher)

	if _, err := svc.UploadMany(ctx, actor, nil); !errors.Is(err, ErrFileRequired) {
		t.Fatalf("err = %v, want ErrFileRequired", err)
	}

	three := multipartFiles(t, "files", map[string][]byte{"a.pdf": pdfBody, "b.pdf": pdfBody, "c.pdf": pdfBody})
	if _, err := svc.UploadMany(ctx, actor, three); !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("err = %v, want ErrTooManyFiles", err)
	}

	mixed := multipartFiles(t, "files", map[string][]byte{"a.pdf": pdfBody, "b.png": []byte("not a png")})
	if _, err := svc.UploadMany(ctx, actor, mixed); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("err = %v, want ErrUnsupportedFile", err)
	}
	if len(blobs.files) != 0 {
		t.Fatalf("%d files left behind after a failed batch", len(blobs.files))
	}

	two := multipartFiles(t, "files", map[string][]byte{"a.pdf": pdfBody, "b.png": pngHeader})
	files, err := svc.UploadMany(ctx, actor, two)
	if err != nil || len(files) != 2 {
		t.Fatalf("upload many: %d files, %v", len(files), err)
	}
}

func TestFileDeletePolicyAndOpen(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	svc := NewFileService(blobs, 1<<20, 10, nopLog)
	owner, other, admin := actorFor(model.RoleTeacher), actorFor(model.RoleTeacher), actorFor(model.RoleAdmin)

	f, err := svc.Upload(ctx, owner, multipartFiles(t, "file", map[string][]byte{"a.pdf": pdfBody})[0])
	if err != nil {
		t.Fatal(err)
	}

	meta, rc, err := svc.Open(ctx, f.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if meta.ID != f.ID || !bytes.Equal(data, pdfBody) {
		t.Fatal("open returned the wrong content")
	}

	mine, page, err := svc.ListMine(ctx, owner, model.PageQuery{})
	if err != nil || len(mine) != 1 || page.PerPage != 10 {
		t.Fatalf("list mine: %d, %+v, %v", len(mine), page, err)
	}

	if err := svc.Delete(ctx, other, f.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, admin, f.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, _, err := svc.Open(ctx, f.ID); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	if err := svc.Delete(ctx, owner, "missing"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}
