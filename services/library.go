package services

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"soundbox/types"

	"github.com/dhowden/tag"
	"go.uber.org/zap"
)

// AudioExtensions is the allow-list of playable file suffixes. Matching is
// case-sensitive.
var AudioExtensions = []string{".mp3", ".wav", ".ogg", ".m4a"}

// ErrInvalidPath is returned by ValidateFilePath
var ErrInvalidPath = errors.New("invalid library path")

// Library lists the folders and audio files below {root}/audios
type Library interface {
	AudiosPath() string
	Folders() []types.Folder
	Files(folder string) []types.AudioFile
	Lookup(folder, filename string) (types.AudioFile, bool)
	ExtractAudioMetadata(filePath string) *types.AudioMetadata
	ValidateFilePath(path string) error
	GetContentType(filePath string) string
}

// library implements the Library interface
type library struct {
	audiosPath string
	log        *zap.Logger
}

// NewLibrary creates a library rooted at audiosPath ({root}/audios)
func NewLibrary(audiosPath string, log *zap.Logger) Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &library{
		audiosPath: audiosPath,
		log:        log.Named("library"),
	}
}

func (l *library) AudiosPath() string {
	return l.audiosPath
}

// Folders returns the immediate subdirectories of the audios root. A read
// failure is logged and yields an empty list.
func (l *library) Folders() []types.Folder {
	names, err := readFolderNames(l.audiosPath)
	if err != nil {
		l.log.Error("failed to list folders", zap.String("path", l.audiosPath), zap.Error(err))
		return []types.Folder{}
	}

	folders := make([]types.Folder, 0, len(names))
	for _, name := range names {
		folders = append(folders, types.Folder{
			Name:  name,
			Label: FolderLabel(name),
			Href:  "/folder/" + url.PathEscape(name),
		})
	}
	return folders
}

// Files returns the playable files directly inside folder. A read failure,
// including an unsafe folder name, is logged and yields an empty list.
func (l *library) Files(folder string) []types.AudioFile {
	entries, err := l.readAudioEntries(folder)
	if err != nil {
		l.log.Error("failed to list audio files", zap.String("folder", folder), zap.Error(err))
		return []types.AudioFile{}
	}

	files := make([]types.AudioFile, 0, len(entries))
	for _, entry := range entries {
		files = append(files, newAudioFile(folder, entry))
	}
	return files
}

// Lookup resolves a single playable file
func (l *library) Lookup(folder, filename string) (types.AudioFile, bool) {
	if validateName(folder) != nil || validateName(filename) != nil {
		return types.AudioFile{}, false
	}
	if !IsAudioFile(filename) {
		return types.AudioFile{}, false
	}

	info, err := os.Stat(filepath.Join(l.audiosPath, folder, filename))
	if err != nil || info.IsDir() {
		return types.AudioFile{}, false
	}

	return newAudioFile(folder, fileEntry{name: filename, size: info.Size()}), true
}

type fileEntry struct {
	name string
	size int64
}

func (l *library) readAudioEntries(folder string) ([]fileEntry, error) {
	if err := validateName(folder); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(filepath.Join(l.audiosPath, folder))
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var entries []fileEntry
	for _, entry := range dirEntries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		entries = append(entries, fileEntry{name: entry.Name(), size: size})
	}
	return entries, nil
}

func readFolderNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read audios root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func newAudioFile(folder string, entry fileEntry) types.AudioFile {
	return types.AudioFile{
		Filename:    entry.name,
		Folder:      folder,
		Path:        WebPath(folder, entry.name),
		Href:        WebURL(folder, entry.name),
		DisplayName: DisplayName(entry.name),
		Format:      strings.TrimPrefix(path.Ext(entry.name), "."),
		Size:        entry.size,
	}
}

// WebPath returns the unescaped web path of a file, used for display and logs
func WebPath(folder, filename string) string {
	return "/" + path.Join("audios", folder, filename)
}

// WebURL returns the URL a file is served under, each segment escaped
func WebURL(folder, filename string) string {
	return "/audios/" + url.PathEscape(folder) + "/" + url.PathEscape(filename)
}

// IsAudioFile reports whether name ends in an allowed extension
func IsAudioFile(name string) bool {
	for _, ext := range AudioExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// GetContentType returns the appropriate MIME type for an audio file
func (l *library) GetContentType(filePath string) string {
	return ContentType(filePath)
}

// ContentType maps an allowed extension onto its MIME type
func ContentType(filePath string) string {
	switch filepath.Ext(filePath) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

// ValidateFilePath checks for path traversal attempts and other security issues
func (l *library) ValidateFilePath(p string) error {
	return ValidateFilePath(p)
}

// ValidateFilePath accepts a slash-separated path whose every segment is a
// plain local name. Dots inside a name, as in "Wait...what.mp3", are allowed.
func ValidateFilePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path not allowed", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || filepath.IsAbs(p) {
		return fmt.Errorf("%w: absolute paths not allowed", ErrInvalidPath)
	}
	for _, segment := range strings.Split(p, "/") {
		switch {
		case segment == "":
			return fmt.Errorf("%w: empty path segment", ErrInvalidPath)
		case segment == "." || segment == "..":
			return fmt.Errorf("%w: path traversal not allowed", ErrInvalidPath)
		case !filepath.IsLocal(segment):
			return fmt.Errorf("%w: %q is not a local name", ErrInvalidPath, segment)
		}
	}
	return nil
}

// validateName accepts a single path segment only
func validateName(name string) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: nested paths not allowed", ErrInvalidPath)
	}
	return nil
}

// ExtractAudioMetadata reads tags from an audio file, filling gaps from the path
func (l *library) ExtractAudioMetadata(filePath string) *types.AudioMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		l.log.Warn("could not open audio file", zap.String("path", filePath), zap.Error(err))
		return extractMetadataFromPath(filePath)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		l.log.Debug("no readable tags, using path metadata", zap.String("path", filePath), zap.Error(err))
		return extractMetadataFromPath(filePath)
	}

	metadata := &types.AudioMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	metadata.TrackNumber, _ = meta.Track()

	if metadata.Title == "" || metadata.Album == "" {
		fallback := extractMetadataFromPath(filePath)
		if metadata.Title == "" {
			metadata.Title = fallback.Title
		}
		if metadata.Album == "" {
			metadata.Album = fallback.Album
		}
		if metadata.TrackNumber == 0 {
			metadata.TrackNumber = fallback.TrackNumber
		}
	}

	return metadata
}

var trackPrefix = regexp.MustCompile(`^(\d+)[\.\-\s]+(.+)`)

// extractMetadataFromPath derives metadata from {folder}/{file}: the folder is
// the album and the display name is the title.
func extractMetadataFromPath(filePath string) *types.AudioMetadata {
	metadata := &types.AudioMetadata{}

	filename := filepath.Base(filePath)
	if dir := filepath.Base(filepath.Dir(filePath)); dir != "." && dir != string(filepath.Separator) {
		metadata.Album = FolderLabel(dir)
	}

	title := finalExtension.ReplaceAllString(filename, "")
	if matches := trackPrefix.FindStringSubmatch(title); len(matches) > 2 {
		title = matches[2]
		if trackNum, err := strconv.Atoi(matches[1]); err == nil {
			metadata.TrackNumber = trackNum
		}
	}
	metadata.Title = titleWords(title)

	return metadata
}
