// Package ocr turns uploaded images and PDFs into text.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

var (
	ErrDisabled        = errors.New("ocr is not configured")
	ErrUnsupportedType = errors.New("ocr supports images and PDFs only")
)

const mimePDF = "application/pdf"

// Recognizer extracts text from an image or PDF.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte, contentType string) (string, error)
}

// Disabled is the Recognizer used when OCR is switched off.
type Disabled struct{}

func (Disabled) Recognize(context.Context, []byte, string) (string, error) {
	return "", ErrDisabled
}

// VisionRecognizer uses Google Cloud Vision document text detection.
type VisionRecognizer struct {
	client   *vision.ImageAnnotatorClient
	timeout  time.Duration
	maxPages int
}

// NewVisionRecognizer creates the Vision client. Only the first maxPages pages
// of a PDF are read.
func NewVisionRecognizer(ctx context.Context, timeout time.Duration, maxPages int, opts ...option.ClientOption) (*VisionRecognizer, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	if maxPages <= 0 {
		maxPages = 5
	}
	return &VisionRecognizer{client: client, timeout: timeout, maxPages: maxPages}, nil
}

// Close releases the Vision client.
func (v *VisionRecognizer) Close() error {
	return v.client.Close()
}

// Recognize runs DOCUMENT_TEXT_DETECTION on images and file annotation on PDFs.
func (v *VisionRecognizer) Recognize(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	features := []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}}

	switch {
	case contentType == mimePDF:
		resp, err := v.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
			Requests: []*visionpb.AnnotateFileRequest{{
				InputConfig: &visionpb.InputConfig{Content: data, MimeType: mimePDF},
				Features:    features,
				Pages:       firstPages(v.maxPages),
			}},
		})
		if err != nil {
			return "", fmt.Errorf("vision BatchAnnotateFiles: %w", err)
		}
		return textFromFiles(resp)

	case strings.HasPrefix(contentType, "image/"):
		resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
			Requests: []*visionpb.AnnotateImageRequest{{
				Image:    &visionpb.Image{Content: data},
				Features: features,
			}},
		})
		if err != nil {
			return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
		}
		return textFromImages(resp)

	default:
		return "", ErrUnsupportedType
	}
}

func firstPages(n int) []int32 {
	pages := make([]int32, n)
	for i := range pages {
		pages[i] = int32(i + 1)
	}
	return pages
}

func textFromImages(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r.Error.Message)
	}
	if r.FullTextAnnotation == nil {
		return "", nil
	}
	return strings.TrimSpace(r.FullTextAnnotation.Text), nil
}

// textFromFiles joins the text of every annotated page, separated by blank lines.
func textFromFiles(resp *visionpb.BatchAnnotateFilesResponse) (string, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	file := resp.Responses[0]
	if file.Error != nil && file.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", file.Error.Message)
	}

	pages := make([]string, 0, len(file.Responses))
	for _, page := range file.Responses {
		if page == nil {
			continue
		}
		if page.Error != nil && page.Error.Message != "" {
			return "", fmt.Errorf("vision annotate error: %s", page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if t := strings.TrimSpace(page.FullTextAnnotation.Text); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
