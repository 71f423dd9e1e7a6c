package types

// Folder represents one subdirectory of the audios root
type Folder struct {
	Name  string `json:"name"`
	Label string `json:"label"` // name with hyphens shown as spaces
	Href  string `json:"href"`
}

// AudioFile represents a playable file inside a folder (MP3, WAV, OGG, M4A)
type AudioFile struct {
	Filename    string         `json:"filename"`
	Folder      string         `json:"folder"`
	Path        string         `json:"path"` // web-relative, "/audios/{folder}/{file}"
	Href        string         `json:"href"` // Path with each segment URL-escaped
	DisplayName string         `json:"displayName"`
	Format      string         `json:"format"` // "mp3", "wav", "ogg", "m4a"
	Size        int64          `json:"size"`
	Metadata    *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata represents metadata for an audio file
type AudioMetadata struct {
	Title           string  `json:"title,omitempty"`
	Artist          string  `json:"artist,omitempty"`
	Album           string  `json:"album,omitempty"`
	Duration        string  `json:"duration,omitempty"` // "m:ss"
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	TrackNumber     int     `json:"trackNumber,omitempty"`
}
