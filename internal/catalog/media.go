package catalog

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the broad media type of an enrolled file.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Status represents the lifecycle of an enrolled media item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status is a final one for a run.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// MediaItem is one enrolled file and its processing state. Status, Attempts
// and LastErr are mutated only through the catalog, and only the scheduler
// calls those mutators.
type MediaItem struct {
	ID       string
	Path     string
	Filename string
	Kind     Kind
	MIMEType string
	Status   Status
	Attempts int
	LastErr  string
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

var videoMIMETypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".wmv":  "video/x-ms-wmv",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",
	".mts":  "video/mp2t",
}

// KindForPath classifies a path by extension. Returns false when the
// extension is not a supported image or video format.
func KindForPath(path string) (Kind, string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := imageMIMETypes[ext]; ok {
		return KindImage, mime, true
	}
	if mime, ok := videoMIMETypes[ext]; ok {
		return KindVideo, mime, true
	}
	return "", "", false
}

// SupportedExtensions returns every recognized extension, images first,
// each group sorted.
func SupportedExtensions() []string {
	images := make([]string, 0, len(imageMIMETypes))
	for ext := range imageMIMETypes {
		images = append(images, ext)
	}
	videos := make([]string, 0, len(videoMIMETypes))
	for ext := range videoMIMETypes {
		videos = append(videos, ext)
	}
	sort.Strings(images)
	sort.Strings(videos)
	return append(images, videos...)
}
