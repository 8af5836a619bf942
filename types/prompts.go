package types

type PromptVersion struct {
	Id         string `json:"id"`
	Text       string `json:"text"`
	ImageUrl   string `json:"image_url,omitempty"`
	CreationTs int64  `json:"created_ts"`
}

type PromptSet struct {
	Id         string           `json:"id"`
	OwnerId    string           `json:"owner_id"`
	Title      string           `json:"title"`
	Versions   []*PromptVersion `json:"versions"`
	CreationTs int64            `json:"created_ts"`
	UpdatedTs  int64            `json:"updated_ts"`
}

// Clone returns a value copy with no shared mutable structure. Used for
// share snapshots, which must not observe later edits to the live set.
func (s *PromptSet) Clone() *PromptSet {
	c := *s
	c.Versions = make([]*PromptVersion, 0, len(s.Versions))
	for _, v := range s.Versions {
		vc := *v
		c.Versions = append(c.Versions, &vc)
	}
	return &c
}
