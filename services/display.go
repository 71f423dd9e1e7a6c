package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	finalExtension = regexp.MustCompile(`\.[^/.]+$`)
	wordSeparators = regexp.MustCompile(`[-_]`)
	wordStart      = regexp.MustCompile(`\b\w`)
)

// colorClasses are the gradient classes cycled across widget cards
var colorClasses = []string{
	"from-red-400 to-pink-500",
	"from-blue-400 to-purple-500",
	"from-green-400 to-blue-500",
	"from-yellow-400 to-orange-500",
	"from-purple-400 to-pink-500",
	"from-indigo-400 to-blue-500",
}

// FolderLabel renders a folder name for display
func FolderLabel(name string) string {
	return strings.ReplaceAll(name, "-", " ")
}

// DisplayName turns "my-song_title.mp3" into "My Song Title"
func DisplayName(filename string) string {
	return titleWords(finalExtension.ReplaceAllString(filename, ""))
}

// titleWords swaps hyphens and underscores for spaces and capitalizes each word
func titleWords(name string) string {
	name = wordSeparators.ReplaceAllString(name, " ")
	return wordStart.ReplaceAllStringFunc(name, strings.ToUpper)
}

// FormatTime renders seconds as m:ss
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// SongCountLabel renders "1 song to enjoy!" / "3 songs to enjoy!"
func SongCountLabel(n int) string {
	suffix := "s"
	if n == 1 {
		suffix = ""
	}
	return fmt.Sprintf("%d song%s to enjoy!", n, suffix)
}

// ColorClass picks the card gradient for the widget at index
func ColorClass(index int) string {
	if index < 0 {
		index = -index
	}
	return colorClasses[index%len(colorClasses)]
}
