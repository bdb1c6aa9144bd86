package ocr

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func TestDisabled(t *testing.T) {
	if _, err := (Disabled{}).Recognize(context.Background(), []byte("x"), "image/png"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestFirstPages(t *testing.T) {
	got := firstPages(3)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("firstPages(3) = %v", got)
	}
}

func TestTextFromImages(t *testing.T) {
	resp := &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
		FullTextAnnotation: &visionpb.TextAnnotation{Text: "  1) Soru?\n"},
	}}}
	text, err := textFromImages(resp)
	if err != nil || text != "1) Soru?" {
		t.Fatalf("text=%q err=%v", text, err)
	}

	failed := &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
		Error: &status.Status{Message: "bad image"},
	}}}
	if _, err := textFromImages(failed); err == nil {
		t.Fatal("expected annotate error")
	}

	if text, err := textFromImages(&visionpb.BatchAnnotateImagesResponse{}); err != nil || text != "" {
		t.Fatalf("empty response: text=%q err=%v", text, err)
	}
}

func TestTextFromFilesJoinsPages(t *testing.T) {
	resp := &visionpb.BatchAnnotateFilesResponse{Responses: []*visionpb.AnnotateFileResponse{{
		Responses: []*visionpb.AnnotateImageResponse{
			{FullTextAnnotation: &visionpb.TextAnnotation{Text: "sayfa bir"}},
			{},
			{FullTextAnnotation: &visionpb.TextAnnotation{Text: "sayfa iki"}},
		},
	}}}
	text, err := textFromFiles(resp)
	if err != nil {
		t.Fatal(err)
	}
	if text != "sayfa bir\n\nsayfa iki" {
		t.Fatalf("text = %q", text)
	}
}
