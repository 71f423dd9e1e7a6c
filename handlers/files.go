package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"soundbox/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileHandler serves the library as JSON and streams audio files
type FileHandler struct {
	library services.Library
	indexer services.Indexer
	log     *zap.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(library services.Library, indexer services.Indexer, log *zap.Logger) *FileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileHandler{
		library: library,
		indexer: indexer,
		log:     log.Named("files"),
	}
}

// ListFolders returns the folders of the library
func (h *FileHandler) ListFolders(c *gin.Context) {
	folders := h.library.Folders()
	c.JSON(http.StatusOK, gin.H{
		"folders": folders,
		"count":   len(folders),
	})
}

// ListFiles returns the playable files of one folder, optionally with metadata
func (h *FileHandler) ListFiles(c *gin.Context) {
	name := c.Param("name")
	files := h.library.Files(name)

	if c.Query("metadata") == "1" && h.indexer != nil {
		files = h.indexer.Describe(c.Request.Context(), files, nil)
	}

	c.JSON(http.StatusOK, folderSummary(name, files))
}

// StreamFile streams an audio file with support for range requests
func (h *FileHandler) StreamFile(c *gin.Context) {
	requestedPath := strings.TrimPrefix(c.Param("filepath"), "/")

	// Security: Validate file path
	if err := h.library.ValidateFilePath(requestedPath); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "path security violation",
			"details": err.Error(),
		})
		return
	}

	if !services.IsAudioFile(requestedPath) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "file extension not allowed",
			"details": "only .mp3, .wav, .ogg and .m4a files can be streamed",
		})
		return
	}

	folder, filename, _ := strings.Cut(requestedPath, "/")
	audio, ok := h.library.Lookup(folder, filename)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "file not found",
			"path":  requestedPath,
		})
		return
	}

	fullPath := filepath.Join(h.library.AudiosPath(), audio.Folder, audio.Filename)
	file, err := os.Open(fullPath)
	if err != nil {
		h.log.Error("failed to open file", zap.String("path", fullPath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to open file",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "file access error",
			"details": err.Error(),
		})
		return
	}

	// Set appropriate headers for audio streaming
	c.Header("Content-Type", h.library.GetContentType(audio.Filename))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600")
	if c.Query("download") == "1" {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": audio.Filename}))
	}

	// Handle range requests for seeking
	if rangeHeader := c.GetHeader("Range"); rangeHeader != "" {
		h.handleRangeRequest(c, file, fileInfo.Size(), rangeHeader)
		return
	}

	c.Header("Content-Length", strconv.FormatInt(fileInfo.Size(), 10))
	c.Status(http.StatusOK)
	if c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(c.Writer, file); err != nil {
		h.log.Debug("stream interrupted", zap.String("path", requestedPath), zap.Error(err))
	}
}

// parseRange parses a single "bytes=start-end" range against size. Suffix
// ranges ("bytes=-500") address the last bytes of the file.
func parseRange(rangeHeader string, size int64) (start, end int64, ok bool) {
	ranges, found := strings.CutPrefix(rangeHeader, "bytes=")
	if !found || strings.Contains(ranges, ",") {
		return 0, 0, false
	}

	first, last, found := strings.Cut(ranges, "-")
	if !found {
		return 0, 0, false
	}

	var err error
	switch {
	case first == "" && last == "":
		return 0, 0, false
	case first == "":
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		start, end = size-n, size-1
	default:
		start, err = strconv.ParseInt(first, 10, 64)
		if err != nil || start < 0 {
			return 0, 0, false
		}
		end = size - 1
		if last != "" {
			end, err = strconv.ParseInt(last, 10, 64)
			if err != nil || end < start {
				return 0, 0, false
			}
		}
	}

	if start >= size {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}

// handleRangeRequest handles HTTP range requests for efficient seeking
func (h *FileHandler) handleRangeRequest(c *gin.Context, file *os.File, fileSize int64, rangeHeader string) {
	start, end, ok := parseRange(rangeHeader, fileSize)
	if !ok {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to seek file",
		})
		return
	}

	contentLength := end - start + 1
	c.Header("Content-Length", strconv.FormatInt(contentLength, 10))
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Status(http.StatusPartialContent)
	if c.Request.Method == http.MethodHead {
		return
	}

	if _, err := io.CopyN(c.Writer, file, contentLength); err != nil {
		h.log.Debug("range stream interrupted", zap.Int64("start", start), zap.Int64("end", end), zap.Error(err))
	}
}
