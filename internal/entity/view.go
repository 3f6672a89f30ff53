package entity

type State int

const (
	StateLoading State = iota
	StateNotFound
	StateFetchFailed
	StateResolved
)

func (s State) String() string {
	return [...]string{"loading", "not_found", "fetch_failed", "resolved"}[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View is what a visitor sees for one masked link. Only the fields of the
// resolved state are filled in when State is StateResolved.
type View struct {
	State        State  `json:"state"`
	MaskedLink   string `json:"maskedLink"`
	OriginalLink string `json:"originalLink,omitempty"`
	Name         string `json:"name,omitempty"`
	Size         int64  `json:"size,omitempty"`
	MIMEType     string `json:"mimetype,omitempty"`
	DisplaySize  string `json:"displaySize,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func (v View) Terminal() bool {
	return v.State != StateLoading
}
