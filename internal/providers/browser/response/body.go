package response

import (
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// ContentType returns the declared media type, or one sniffed from the
// body when the server sent none.
func (r *Response) ContentType() string {
	if mt := r.MediaType(); mt != "" {
		return mt
	}
	if r.Body == "" {
		return ""
	}
	detected := mimetype.Detect([]byte(r.Body)).String()
	if mt, _, err := mime.ParseMediaType(detected); err == nil {
		return mt
	}
	return detected
}

// Charset returns the charset declared in Content-Type, lower-cased.
func (r *Response) Charset() string {
	ct := r.Headers["content-type"]
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// Text returns the body transcoded to UTF-8. The declared charset is used
// when present; otherwise valid UTF-8 is returned as is and anything else
// goes through charset detection.
func (r *Response) Text() (string, error) {
	label := r.Charset()
	if label == "" {
		if utf8.ValidString(r.Body) {
			return r.Body, nil
		}
		detected, err := chardet.NewTextDetector().DetectBest([]byte(r.Body))
		if err != nil {
			return "", fmt.Errorf("failed to detect charset: %w", err)
		}
		label = detected.Charset
	}

	if isUTF8(label) {
		return r.Body, nil
	}

	reader, err := charset.NewReaderLabel(label, strings.NewReader(r.Body))
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to transcode body: %w", err)
	}
	return string(out), nil
}

// JSON decodes the body into v regardless of the declared content type.
func (r *Response) JSON(v any) error {
	if err := sonic.UnmarshalString(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode JSON body: %w", err)
	}
	return nil
}

func isUTF8(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return true
	}
	return false
}
