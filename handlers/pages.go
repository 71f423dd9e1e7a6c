package handlers

import (
	"html/template"
	"net/http"
	"path"

	"soundbox/config"
	"soundbox/services"
	"soundbox/types"
	"soundbox/web"

	"github.com/gin-gonic/gin"
)

// LoadTemplates parses the embedded page templates
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"colorClass": services.ColorClass,
	}).ParseFS(web.Templates, "templates/*.html")
}

// emptyState fills the shared "empty" template
type emptyState struct {
	Heading string
	Hint    string
}

// PageHandler renders the folder collection and folder detail pages
type PageHandler struct {
	library services.Library
}

// NewPageHandler creates a new page handler
func NewPageHandler(library services.Library) *PageHandler {
	return &PageHandler{
		library: library,
	}
}

// Home lists every folder in the library
func (h *PageHandler) Home(c *gin.Context) {
	folders := h.library.Folders()

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":   "Home",
		"Folders": folders,
		"Empty": emptyState{
			Heading: "No Music Yet!",
			Hint:    "Create your first folder in the /" + config.AudiosDirName + " directory to get started.",
		},
	})
}

// Folder lists the playable files of one folder, one widget card each
func (h *PageHandler) Folder(c *gin.Context) {
	name := c.Param("name")
	files := h.library.Files(name)
	label := services.FolderLabel(name)

	c.HTML(http.StatusOK, "folder.html", gin.H{
		"Title":     label,
		"Name":      name,
		"Label":     label,
		"Files":     files,
		"SongCount": services.SongCountLabel(len(files)),
		"Empty": emptyState{
			Heading: "No Music Files!",
			Hint:    "Add some audio files to the " + path.Join("/", config.AudiosDirName, name) + " folder to see them here.",
		},
	})
}

// folderSummary is the JSON shape of one folder's listing
func folderSummary(name string, files []types.AudioFile) gin.H {
	return gin.H{
		"folder":  name,
		"label":   services.FolderLabel(name),
		"files":   files,
		"count":   len(files),
		"summary": services.SongCountLabel(len(files)),
	}
}
