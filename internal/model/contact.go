package model

// Contact is one blast recipient. Message, when set, overrides the
// job-level default text for this recipient only.
type Contact struct {
	Number  string `json:"number"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// Media is downloaded media content ready to hand to the client.
// Thumbnail is a small JPEG preview, present for images only.
type Media struct {
	Data      []byte
	Mimetype  string
	FileName  string
	Thumbnail []byte
}
