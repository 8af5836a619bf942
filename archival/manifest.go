package archival

const ManifestVersion = 1

// Manifest is metadata.json inside an export container. It is built fully in
// memory per export/import call and never persisted.
type Manifest struct {
	Version int              `json:"version"`
	Entries []*ManifestEntry `json:"entries"`
}

type ManifestEntry struct {
	Id           string `json:"id"`
	FileName     string `json:"file_name"`
	ArchivedName string `json:"archived_name"`
	OriginalUrl  string `json:"original_url"`
	PromptSetId  string `json:"prompt_set_id,omitempty"`
	VersionId    string `json:"version_id,omitempty"`
	OwnerId      string `json:"owner_id"`
	ContentType  string `json:"content_type,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	CreatedTs    int64  `json:"created_ts"`
}
