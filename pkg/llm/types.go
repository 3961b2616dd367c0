package llm

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one turn of conversation history.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is either inline binary data or text. Inline parts carry raw bytes;
// base64 handling is the caller's concern.
type Part struct {
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

// IsInline reports whether the part carries binary data.
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// TextPart is a convenience constructor.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart is a convenience constructor.
func InlinePart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}
