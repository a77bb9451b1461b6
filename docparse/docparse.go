// Package docparse turns uploaded documents into plain text for chunking and
// signal extraction.
package docparse

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"os/exec"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"nivesh-ai-backend/models"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/crypto/blake2b"
)

// MaxTextLength caps the characters kept from one document
const MaxTextLength = 50000

const pptxMime = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

var ErrUnsupported = errors.New("unsupported file type")

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\r\x{00A0}]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// DetectFileType classifies an upload by MIME type, then by extension
func DetectFileType(mimeType, filename string) models.FileType {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case mime == "application/pdf" || ext == ".pdf":
		return models.FileTypePDF
	case mime == "text/plain" || mime == "message/rfc822" || ext == ".txt" || ext == ".eml":
		return models.FileTypeTXT
	case mime == pptxMime || ext == ".pptx":
		return models.FileTypePPTX
	case mime == "text/html" || ext == ".html" || ext == ".htm":
		return models.FileTypeHTML
	case strings.HasPrefix(mime, "audio/") || ext == ".mp3" || ext == ".wav" || ext == ".m4a":
		return models.FileTypeAudio
	}
	return models.FileTypeUnknown
}

// CommandRunner runs an external program with data on stdin
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name and returns its stdout
func (ExecRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Parser extracts text from uploaded bytes
type Parser struct {
	pdfToText string
	runner    CommandRunner
	html      *md.Converter
}

// ParserOption is a functional option for Parser
type ParserOption func(*Parser)

// WithPdfToText sets the pdftotext binary
func WithPdfToText(path string) ParserOption {
	return func(p *Parser) {
		if path != "" {
			p.pdfToText = path
		}
	}
}

// WithCommandRunner replaces the process runner
func WithCommandRunner(r CommandRunner) ParserOption {
	return func(p *Parser) {
		p.runner = r
	}
}

// NewParser creates a parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		pdfToText: "pdftotext",
		runner:    ExecRunner{},
		html:      md.NewConverter("", true, nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the normalized text of data. PDF extraction failures and
// audio files give empty text and no error; unknown types give ErrUnsupported.
func (p *Parser) Parse(ctx context.Context, data []byte, fileType models.FileType, filename string) (string, error) {
	var text string
	switch fileType {
	case models.FileTypePDF:
		out, err := p.runner.Run(ctx, p.pdfToText, []string{"-layout", "-", "-"}, data)
		if err != nil {
			log.Printf("Warning: PDF text extraction failed for %s: %v", filename, err)
			return "", nil
		}
		text = string(out)
	case models.FileTypeTXT:
		text = plainText(data, filename)
	case models.FileTypePPTX:
		t, err := pptxText(data)
		if err != nil {
			return "", fmt.Errorf("failed to read pptx: %w", err)
		}
		text = t
	case models.FileTypeHTML:
		t, err := p.html.ConvertString(string(data))
		if err != nil {
			return "", fmt.Errorf("failed to convert html: %w", err)
		}
		text = t
	case models.FileTypeAudio:
		// stored only, no transcription
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}

	text = Normalize(text)
	if text == "" {
		log.Printf("Warning: Empty text extracted from %s file %s", fileType, filename)
	}
	return text, nil
}

// plainText decodes UTF-8 text; .eml files become subject plus body
func plainText(data []byte, filename string) string {
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("�"))
	}
	if strings.ToLower(filepath.Ext(filename)) != ".eml" {
		return string(data)
	}
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	var body bytes.Buffer
	body.ReadFrom(msg.Body)
	subject := msg.Header.Get("Subject")
	if subject == "" {
		return body.String()
	}
	return subject + "\n\n" + body.String()
}

// Normalize collapses horizontal whitespace and long blank runs while keeping
// line breaks, then applies MaxTextLength
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	text = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return Truncate(strings.TrimSpace(text), MaxTextLength)
}

// Truncate keeps the first n characters of text
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

// Flatten joins every scalar inside v into one space-separated string. Map
// values are visited in key order.
func Flatten(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = Flatten(rv.Index(i).Interface())
		}
		return strings.Join(parts, " ")
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		var b strings.Builder
		for _, k := range keys {
			b.WriteString(" ")
			b.WriteString(Flatten(rv.MapIndex(k).Interface()))
		}
		return strings.TrimSpace(b.String())
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Flatten(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// Fingerprint returns the hex blake2b-256 digest of data
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
