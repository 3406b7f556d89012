package domain

// Attachment is an uploaded file held in transient storage for the duration
// of a single request.
type Attachment struct {
	ID           string
	OriginalName string
	MIMEType     string
	Path         string
	SizeBytes    int64
}

// RemoteAssetReference points at a file stored by the generation provider.
type RemoteAssetReference struct {
	MIMEType string
	URI      string
}
