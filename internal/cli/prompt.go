package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// VideoPatterns are the file patterns offered by the video picker.
var VideoPatterns = []string{"*.mp4", "*.mov", "*.avi", "*.webm", "*.mkv"}

// ErrNoVideoSelected is returned when the user cancels the picker or
// enters nothing.
var ErrNoVideoSelected = errors.New("no video selected")

// PickVideo opens a native file dialog for choosing a dashcam video. When
// no dialog is available (headless sessions, SSH) it falls back to a
// terminal prompt.
func PickVideo() (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Title("Select dashcam video"),
		zenity.FileFilters{
			{Name: "Video files", Patterns: VideoPatterns},
		},
	)
	if err == nil {
		return selected, nil
	}
	if errors.Is(err, zenity.ErrCanceled) {
		return "", ErrNoVideoSelected
	}

	log.Debug().Err(err).Msg("File picker unavailable, prompting on terminal")
	path := PromptForVideo()
	if path == "" {
		return "", ErrNoVideoSelected
	}
	return path, nil
}

// PromptForVideo prompts the user interactively for a video path.
// Returns an empty string if the user enters nothing.
func PromptForVideo() string {
	fmt.Print("Video file: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		log.Warn().Err(err).Msg("Failed to read input")
		return ""
	}

	return strings.Trim(strings.TrimSpace(input), `"'`)
}
