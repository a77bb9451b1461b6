package docparse

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"nivesh-ai-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out   []byte
	err   error
	name  string
	args  []string
	stdin []byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	f.name, f.args, f.stdin = name, args, stdin
	return f.out, f.err
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		mime, name string
		want       models.FileType
	}{
		{"application/pdf", "deck", models.FileTypePDF},
		{"", "Deck.PDF", models.FileTypePDF},
		{"text/plain; charset=utf-8", "notes", models.FileTypeTXT},
		{"message/rfc822", "", models.FileTypeTXT},
		{"application/octet-stream", "intro.eml", models.FileTypeTXT},
		{pptxMime, "x", models.FileTypePPTX},
		{"", "deck.pptx", models.FileTypePPTX},
		{"text/html", "", models.FileTypeHTML},
		{"audio/mpeg", "pitch", models.FileTypeAudio},
		{"", "call.wav", models.FileTypeAudio},
		{"image/png", "logo.png", models.FileTypeUnknown},
		{"", "", models.FileTypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFileType(tt.mime, tt.name), "%s %s", tt.mime, tt.name)
	}
}

func TestParsePDFUsesPdfToText(t *testing.T) {
	runner := &fakeRunner{out: []byte("ACME   HEALTH\n\n\n\n\nMRR:\t$71,000")}
	p := NewParser(WithCommandRunner(runner), WithPdfToText("/usr/bin/pdftotext"))

	text, err := p.Parse(context.Background(), []byte("%PDF-1.4"), models.FileTypePDF, "deck.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ACME HEALTH\n\nMRR: $71,000", text)
	assert.Equal(t, "/usr/bin/pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-", "-"}, runner.args)
	assert.Equal(t, []byte("%PDF-1.4"), runner.stdin)
}

func TestParsePDFFailureGivesEmptyText(t *testing.T) {
	p := NewParser(WithCommandRunner(&fakeRunner{err: errors.New("exit status 1")}))
	text, err := p.Parse(context.Background(), []byte("junk"), models.FileTypePDF, "deck.pdf")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestParseEmail(t *testing.T) {
	eml := "From: founder@acme.io\r\nSubject: Acme update\r\n\r\nWe closed 5 pilots this month.\r\n"
	text, err := NewParser().Parse(context.Background(), []byte(eml), models.FileTypeTXT, "update.eml")
	require.NoError(t, err)
	assert.Equal(t, "Acme update\n\nWe closed 5 pilots this month.", text)

	text, err = NewParser().Parse(context.Background(), []byte("plain notes"), models.FileTypeTXT, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain notes", text)
}

func buildPPTX(t *testing.T, slides map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range slides {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func slideXML(paragraphs ...[]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, runs := range paragraphs {
		b.WriteString("<a:p>")
		for _, r := range runs {
			b.WriteString("<a:r><a:t>" + r + "</a:t></a:r>")
		}
		b.WriteString("</a:p>")
	}
	b.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func TestParsePPTX(t *testing.T) {
	data := buildPPTX(t, map[string]string{
		"ppt/slides/slide10.xml":           slideXML([]string{"Ask: $2M seed"}),
		"ppt/slides/slide2.xml":            slideXML([]string{"PRODUCT"}, []string{"AI triage ", "for clinics"}),
		"ppt/slides/slide1.xml":            slideXML([]string{"ACME HEALTH"}),
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
		"ppt/presentation.xml":             "<p:presentation/>",
	})

	text, err := NewParser().Parse(context.Background(), data, models.FileTypePPTX, "deck.pptx")
	require.NoError(t, err)
	assert.Equal(t, "ACME HEALTH\n\nPRODUCT\nAI triage for clinics\n\nAsk: $2M seed", text)
}

func TestParsePPTXRejectsNonZip(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("not a zip"), models.FileTypePPTX, "deck.pptx")
	assert.Error(t, err)
}

func TestParseHTML(t *testing.T) {
	html := "<html><body><h1>Acme</h1><p>We build <b>tools</b> for clinics.</p></body></html>"
	text, err := NewParser().Parse(context.Background(), []byte(html), models.FileTypeHTML, "page.html")
	require.NoError(t, err)
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "for clinics.")
	assert.NotContains(t, text, "<p>")
}

func TestParseAudioAndUnknown(t *testing.T) {
	text, err := NewParser().Parse(context.Background(), []byte{1, 2}, models.FileTypeAudio, "call.mp3")
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = NewParser().Parse(context.Background(), []byte{1, 2}, models.FileTypeUnknown, "logo.png")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNormalizeCapsLength(t *testing.T) {
	text := Normalize(strings.Repeat("ab ", 30000))
	assert.Equal(t, MaxTextLength, len([]rune(text)))

	assert.Equal(t, "é", Truncate("éa", 1))
	assert.Equal(t, "short", Truncate("short", 10))
}

func TestFlatten(t *testing.T) {
	input := map[string]interface{}{
		"b": []interface{}{"raised", 2.5, true},
		"a": "Acme",
		"c": map[string]interface{}{"z": nil, "y": "seed"},
	}
	assert.Equal(t, "Acme raised 2.5 true seed", Flatten(input))
	assert.Equal(t, "", Flatten(nil))
	assert.Equal(t, "42", Flatten(42))
	assert.Equal(t, "x y", Flatten([]string{"x", "y"}))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("deck"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]byte("deck")))
	assert.NotEqual(t, a, Fingerprint([]byte("deck2")))
}
