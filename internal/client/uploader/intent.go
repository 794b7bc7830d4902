package uploader

import "context"

// Intent is a one-time authorization to upload a specific local row:
// the final asset id, a single-use time-limited upload URL and the signed
// policy fields the storage backend expects in the multipart form. Once
// consumed or expired it must be replaced with a fresh intent, never
// reused.
type Intent struct {
	LocalID      string            `json:"localId"`
	ID           string            `json:"id"`
	UploadURL    string            `json:"uploadURL"`
	UploadFields map[string]string `json:"uploadFields,omitempty"`
}

// IntentFile is the per-row payload of an intent request.
type IntentFile struct {
	LocalID      string  `json:"localId"`
	ID           string  `json:"id"`
	FileName     string  `json:"fileName"`
	RelativePath string  `json:"relativePath"`
	MimeType     string  `json:"mimeType"`
	SizeBytes    uint64  `json:"sizeBytes"`
	Profile      Profile `json:"profile,omitempty"`
}

// IntentRequest asks the control plane for one-time upload URLs for a
// batch of rows.
type IntentRequest struct {
	Files          []IntentFile         `json:"files"`
	Transforms     map[string]Transform `json:"transforms,omitempty"`
	DefaultProfile Profile              `json:"defaultProfile"`
	TargetFolder   string               `json:"targetFolder"`
	Mode           Mode                 `json:"mode"`
}

// IntentResponse carries the issued intents. TargetFolder may differ from
// the requested one (the server renames on collision in copy mode); the
// caller must aim subsequent batches at the returned value.
type IntentResponse struct {
	OK           bool     `json:"ok"`
	Intents      []Intent `json:"intents"`
	TargetFolder string   `json:"targetFolder"`
	Message      string   `json:"message,omitempty"`
}

// CommitRequest persists size/mime/dimensions against the final asset id
// after a successful upload.
type CommitRequest struct {
	CFImageID string `json:"cf_image_id"`
	SizeBytes uint64 `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
	Width     uint   `json:"width"`
	Height    uint   `json:"height"`
}

// CommitResponse acknowledges a metadata commit.
type CommitResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// ControlPlane is the collaborator issuing intents and persisting
// metadata.
type ControlPlane interface {
	CreateIntents(ctx context.Context, req IntentRequest) (*IntentResponse, error)
	CommitMetadata(ctx context.Context, req CommitRequest) error
}

// splitBatches cuts rows into consecutive slices of at most size rows,
// preserving order. Concatenating the result reproduces the input.
func splitBatches(rows []Row, size int) [][]Row {
	if size <= 0 {
		size = 1
	}
	batches := make([][]Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}

// intentFiles maps a batch of rows onto the intent request payload.
func intentFiles(rows []Row) []IntentFile {
	files := make([]IntentFile, 0, len(rows))
	for _, r := range rows {
		files = append(files, IntentFile{
			LocalID:      r.ID,
			ID:           r.ID,
			FileName:     r.FileName,
			RelativePath: r.RelativePath,
			MimeType:     r.MimeType,
			SizeBytes:    r.SizeBytes,
			Profile:      r.Profile,
		})
	}
	return files
}
