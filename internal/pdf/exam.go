// Package pdf renders exams as printable A4 documents.
package pdf

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

const (
	fontFamily = "go"
	margin     = 50.0

	titleSize    = 25
	headerSize   = 14
	questionSize = 14
	bodySize     = 12

	questionsPerPage = 3
)

var (
	glyphsOnce sync.Once
	glyphs     *sfnt.Font
	glyphsErr  error
)

// Filename is the download name for an exam: whitespace runs become underscores.
func Filename(title string) string {
	name := strings.Join(strings.Fields(title), "_")
	if name == "" {
		name = "sinav"
	}
	return name + ".pdf"
}

// RenderExam writes exam as a PDF: a centered header with level, subject and
// duration, a rule, then numbered questions with their options. A new page
// starts after every third question.
func RenderExam(w io.Writer, exam *model.Exam) error {
	d, err := newDocument()
	if err != nil {
		return err
	}

	if err := d.centered(titleSize, exam.Title); err != nil {
		return err
	}
	d.moveDown(titleSize)
	for _, line := range []string{
		"Seviye: " + string(exam.Level),
		"Konu: " + exam.Subject,
		fmt.Sprintf("Süre: %d dakika", exam.Duration),
	} {
		if err := d.centered(headerSize, line); err != nil {
			return err
		}
	}
	d.moveDown(headerSize)

	if exam.Description != "" {
		if err := d.centered(bodySize, exam.Description); err != nil {
			return err
		}
		d.moveDown(bodySize)
	}

	d.rule()
	d.moveDown(bodySize)

	for i, q := range exam.Questions {
		if err := d.paragraph(questionSize, 0, fmt.Sprintf("Soru %d: %s", i+1, q.Text)); err != nil {
			return err
		}
		d.moveDown(questionSize / 2)

		if len(q.Options) > 0 {
			for _, opt := range q.Options {
				if err := d.paragraph(bodySize, 12, opt); err != nil {
					return err
				}
			}
			d.moveDown(bodySize / 2)
		}

		if (i+1)%questionsPerPage == 0 && i < len(exam.Questions)-1 {
			d.newPage()
		} else {
			d.moveDown(bodySize)
		}
	}

	if _, err := d.pdf.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type document struct {
	pdf        *gopdf.GoPdf
	pageWidth  float64
	pageHeight float64
	buf        sfnt.Buffer
}

func newDocument() (*document, error) {
	glyphsOnce.Do(func() {
		glyphs, glyphsErr = sfnt.Parse(goregular.TTF)
	})
	if glyphsErr != nil {
		return nil, fmt.Errorf("parse font: %w", glyphsErr)
	}

	d := &document{
		pdf:        &gopdf.GoPdf{},
		pageWidth:  gopdf.PageSizeA4.W,
		pageHeight: gopdf.PageSizeA4.H,
	}
	d.pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := d.pdf.AddTTFFontData(fontFamily, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	d.newPage()
	return d, nil
}

func (d *document) newPage() {
	d.pdf.AddPage()
	d.pdf.SetXY(margin, margin)
}

func (d *document) lineHeight(size float64) float64 { return size * 1.25 }

func (d *document) moveDown(size float64) {
	d.pdf.SetY(d.pdf.GetY() + d.lineHeight(size))
}

// ensure starts a new page when the next line would cross the bottom margin.
func (d *document) ensure(h float64) {
	if d.pdf.GetY()+h > d.pageHeight-margin {
		d.newPage()
	}
}

func (d *document) rule() {
	y := d.pdf.GetY()
	d.pdf.Line(margin, y, d.pageWidth-margin, y)
}

// printable replaces runes the embedded font has no glyph for.
func (d *document) printable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		idx, err := glyphs.GlyphIndex(&d.buf, r)
		if err != nil || idx == 0 {
			return '?'
		}
		return r
	}, s)
}

func (d *document) centered(size float64, text string) error {
	return d.write(size, 0, text, gopdf.Center)
}

func (d *document) paragraph(size, indent float64, text string) error {
	return d.write(size, indent, text, gopdf.Left)
}

func (d *document) write(size, indent float64, text string, align int) error {
	text = strings.TrimSpace(d.printable(text))
	if text == "" {
		return nil
	}
	if err := d.pdf.SetFont(fontFamily, "", size); err != nil {
		return fmt.Errorf("set font: %w", err)
	}
	width := d.pageWidth - 2*margin - indent
	lines, err := d.pdf.SplitText(text, width)
	if err != nil {
		return fmt.Errorf("split text: %w", err)
	}

	h := d.lineHeight(size)
	for _, line := range lines {
		d.ensure(h)
		d.pdf.SetX(margin + indent)
		rect := &gopdf.Rect{W: width, H: h}
		if err := d.pdf.CellWithOption(rect, line, gopdf.CellOption{Align: align}); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
		d.pdf.SetY(d.pdf.GetY() + h)
	}
	return nil
}
