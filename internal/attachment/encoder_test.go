package attachment

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/brainassist/internal/types"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFromBytesImage(t *testing.T) {
	a, err := FromBytes("photo.png", pngHeader)
	if err != nil {
		t.Fatal(err)
	}
	if a.MIMEType != "image/png" {
		t.Errorf("expected image/png, got %s", a.MIMEType)
	}
	if a.Name != "photo.png" {
		t.Errorf("unexpected name %s", a.Name)
	}
	raw, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, pngHeader) {
		t.Error("round-tripped data differs")
	}
}

func TestFromBytesPlainText(t *testing.T) {
	a, err := FromBytes("notes.txt", []byte("le cours de jeudi"))
	if err != nil {
		t.Fatal(err)
	}
	if a.MIMEType != "text/plain" {
		t.Errorf("expected text/plain without charset, got %s", a.MIMEType)
	}
}

func TestFromBytesUnsupported(t *testing.T) {
	_, err := FromBytes("song.mp3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFromBytesTooLarge(t *testing.T) {
	_, err := FromBytes("big.txt", make([]byte, MaxSize+1))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "scan.png" || a.MIMEType != "image/png" {
		t.Errorf("unexpected attachment %+v", a)
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAccepted(t *testing.T) {
	tests := []struct {
		mime, name string
		want       bool
	}{
		{"image/jpeg", "a.jpg", true},
		{"application/pdf", "a.pdf", true},
		{"text/plain; charset=utf-8", "a", true},
		{docxMIME, "a.docx", true},
		{"application/zip", "report.docx", true},
		{"application/octet-stream", "readme.TXT", true},
		{"audio/mpeg", "a.mp3", false},
		{"application/zip", "a.zip", false},
	}
	for _, tt := range tests {
		if got := Accepted(tt.mime, tt.name); got != tt.want {
			t.Errorf("Accepted(%q, %q) = %v, want %v", tt.mime, tt.name, got, tt.want)
		}
	}
}

func TestStripDataURLAndDecode(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("bonjour"))
	if got := StripDataURL("data:text/plain;base64," + encoded); got != encoded {
		t.Errorf("expected prefix stripped, got %q", got)
	}
	if got := StripDataURL(encoded); got != encoded {
		t.Errorf("expected bare payload unchanged, got %q", got)
	}

	a, _ := FromBytes("n.txt", []byte("bonjour"))
	a.Data = "data:text/plain;base64," + a.Data
	raw, err := Decode(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "bonjour" {
		t.Errorf("unexpected decoded text %q", raw)
	}
}

func TestParts(t *testing.T) {
	img, _ := FromBytes("a.png", pngHeader)
	txt, _ := FromBytes("b.txt", []byte("hello there"))
	parts, err := Parts([]types.Attachment{img, txt})
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].MIMEType != "image/png" || !bytes.Equal(parts[0].Data, pngHeader) {
		t.Errorf("unexpected first part %+v", parts[0])
	}
	if string(parts[1].Data) != "hello there" {
		t.Errorf("unexpected second part data %q", parts[1].Data)
	}
}
