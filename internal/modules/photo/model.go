package photo

import "context"

// Tag says what a photo shows.
type Tag string

const (
	TagProduct      Tag = "product"
	TagBusinessCard Tag = "business-card"
	TagUnscoped     Tag = "unscoped"
)

// ParseTag maps free text onto a Tag, defaulting to unscoped.
func ParseTag(s string) Tag {
	switch Tag(s) {
	case TagProduct, TagBusinessCard:
		return Tag(s)
	default:
		return TagUnscoped
	}
}

// ContentType is the MIME type every captured still is stored under.
const ContentType = "image/jpeg"

// Pending is a captured image buffer that has not been uploaded yet.
// Data is base64 in JSON.
type Pending struct {
	Data []byte `json:"data"`
	Tag  Tag    `json:"tag"`
}

// Resolved is a durably stored photo. Index is the position of the source
// buffer in the batch handed to Upload.
type Resolved struct {
	URL   string `json:"url"`
	Tag   Tag    `json:"tag"`
	Index int    `json:"-"`
}

// Failure records a photo that was dropped from a batch.
type Failure struct {
	Index int
	Tag   Tag
	Key   string
	Err   error
}

// Result of a batch upload. Resolved keeps input order among survivors.
type Result struct {
	Resolved []Resolved
	Failures []Failure
}

// Storage is the object storage gateway.
type Storage interface {
	// Put durably stores data under key.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// PublicURL resolves the retrievable URL of key.
	PublicURL(key string) string
}
