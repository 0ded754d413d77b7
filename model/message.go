package model

// Attachment is a single true attachment of a message: a body part carrying
// attachment disposition and a non-empty filename. Data holds the payload
// with the transfer encoding already removed.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Message represents one fully parsed mail message.
type Message struct {
	Path        string
	Subject     string
	Attachments []Attachment
}
