package types

// MediaRecord is one entry in the content-addressed media index. The Id is
// derived from (OwnerId, normalized Url) and is stable across re-derivation.
type MediaRecord struct {
	Id                string
	OwnerId           string
	Url               string
	SourcePromptSetId string
	SourceVersionId   string
	CreationTs        int64
}
