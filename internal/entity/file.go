package entity

// ManifestEntry is one shareable file listed in the manifest.
type ManifestEntry struct {
	MaskedLink   string      `json:"maskedLink"`   // Public short link, may end with a slash
	OriginalLink string      `json:"originalLink"` // Download base on the external host
	FileDetails  FileDetails `json:"fileDetails"`
}

// FileDetails is pass-through metadata of the hosted file.
type FileDetails struct {
	ID               string   `json:"id"` // Id on the hosting service, keys the thumbnail
	Name             string   `json:"name"`
	Size             int64    `json:"size"` // The size of the file in bytes
	MIMEType         string   `json:"mimetype"`
	MD5              string   `json:"md5"`
	CreateTime       int64    `json:"createTime"`
	ModTime          int64    `json:"modTime"`
	DownloadPage     string   `json:"downloadPage"`
	GuestToken       string   `json:"guestToken"`
	ParentFolder     string   `json:"parentFolder"`
	ParentFolderCode string   `json:"parentFolderCode"`
	Servers          []string `json:"servers"`
	Type             string   `json:"type"`
}
