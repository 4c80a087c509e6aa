package releases

import (
	"time"
)

// Release is a published or draft release of a repository.
type Release struct {
	ID          int64     `json:"id"                     yaml:"id"`
	TagName     string    `json:"tag_name"               yaml:"tag_name"`
	Name        string    `json:"name"                   yaml:"name"`
	Body        string    `json:"body,omitempty"         yaml:"body,omitempty"`
	Draft       bool      `json:"draft"                  yaml:"draft"`
	Prerelease  bool      `json:"prerelease"             yaml:"prerelease"`
	HTMLURL     string    `json:"html_url"               yaml:"html_url"`
	UploadURL   string    `json:"upload_url"             yaml:"upload_url"`
	CreatedAt   time.Time `json:"created_at"             yaml:"created_at"`
	PublishedAt time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	Assets      []Asset   `json:"assets"                 yaml:"assets"`
}

// Asset is a file attached to a release.
type Asset struct {
	ID                 int64     `json:"id"                   yaml:"id"`
	Name               string    `json:"name"                 yaml:"name"`
	Label              string    `json:"label,omitempty"      yaml:"label,omitempty"`
	State              string    `json:"state"                yaml:"state"`
	ContentType        string    `json:"content_type"         yaml:"content_type"`
	Size               int64     `json:"size"                 yaml:"size"`
	DownloadCount      int64     `json:"download_count"       yaml:"download_count"`
	BrowserDownloadURL string    `json:"browser_download_url" yaml:"browser_download_url"`
	CreatedAt          time.Time `json:"created_at"           yaml:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"           yaml:"updated_at"`
}

// DownloadedAsset records where an asset was written.
type DownloadedAsset struct {
	Asset        Asset  `json:"asset"         yaml:"asset"`
	Filename     string `json:"filename"      yaml:"filename"`
	BytesWritten int64  `json:"bytes_written" yaml:"bytes_written"`
}
