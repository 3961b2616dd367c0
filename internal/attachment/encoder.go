// Package attachment turns user files into inline base64 payloads.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/user/brainassist/internal/types"
	"github.com/user/brainassist/pkg/llm"
)

// MaxSize bounds a single attachment. Larger payloads are rejected by the
// model with an invalid-argument error anyway.
const MaxSize = 20 << 20

var ErrTooLarge = errors.New("attachment too large")

// ErrUnsupported is returned for file types the chat input does not accept.
var ErrUnsupported = errors.New("unsupported attachment type")

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Accepted reports whether mimeType (or the file extension) is one the
// chat accepts: images, PDF, plain text and Word documents.
func Accepted(mimeType, name string) bool {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	switch {
	case strings.HasPrefix(mt, "image/"),
		mt == "application/pdf",
		mt == "text/plain",
		mt == docxMIME:
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".docx" || ext == ".txt"
}

// FromBytes encodes data, sniffing the MIME type from its content.
func FromBytes(name string, data []byte) (types.Attachment, error) {
	if len(data) > MaxSize {
		return types.Attachment{}, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	mt := mimetype.Detect(data)
	mimeType := mt.String()
	// Word files sniff as zip containers on some inputs; trust the extension.
	if strings.EqualFold(filepath.Ext(name), ".docx") && !mt.Is(docxMIME) {
		mimeType = docxMIME
	}
	if strings.EqualFold(filepath.Ext(name), ".txt") && strings.HasPrefix(mimeType, "text/") {
		mimeType = "text/plain"
	}
	if !Accepted(mimeType, name) {
		return types.Attachment{}, fmt.Errorf("%s (%s): %w", name, mimeType, ErrUnsupported)
	}
	return types.Attachment{
		Name:     name,
		MIMEType: baseType(mimeType),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// FromReader reads at most MaxSize+1 bytes from r and encodes them.
func FromReader(name string, r io.Reader) (types.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return types.Attachment{}, fmt.Errorf("read %s: %w", name, err)
	}
	return FromBytes(name, data)
}

// FromFile reads and encodes the file at path.
func FromFile(path string) (types.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Attachment{}, fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()
	return FromReader(filepath.Base(path), f)
}

// StripDataURL removes a "data:<mime>;base64," prefix if present.
func StripDataURL(data string) string {
	if i := strings.IndexByte(data, ','); i >= 0 {
		return data[i+1:]
	}
	return data
}

// Decode returns the raw bytes of a.
func Decode(a types.Attachment) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(StripDataURL(a.Data))
	if err != nil {
		return nil, fmt.Errorf("decode attachment %s: %w", a.Name, err)
	}
	return raw, nil
}

// Parts converts attachments into inline model parts, preserving order.
func Parts(atts []types.Attachment) ([]llm.Part, error) {
	parts := make([]llm.Part, 0, len(atts))
	for _, a := range atts {
		raw, err := Decode(a)
		if err != nil {
			return nil, err
		}
		parts = append(parts, llm.InlinePart(a.MIMEType, raw))
	}
	return parts, nil
}

func baseType(mimeType string) string {
	return strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
}
