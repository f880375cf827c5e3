package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/auth"
)

// ResolveVideoPath checks that the path exists, is a regular file and has
// a known video extension, then returns the absolute path.
func ResolveVideoPath(videoPath string) (string, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("video not found: %s", videoPath)
		}
		return "", fmt.Errorf("access video %s: %w", videoPath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a video: %s", videoPath)
	}
	if !IsVideoFile(videoPath) {
		return "", fmt.Errorf("unsupported video extension %q", filepath.Ext(videoPath))
	}

	if absPath, err := filepath.Abs(videoPath); err == nil {
		videoPath = absPath
	}
	return videoPath, nil
}

// IsVideoFile reports whether path has one of the VideoPatterns extensions.
func IsVideoFile(path string) bool {
	ext := "*" + strings.ToLower(filepath.Ext(path))
	return slices.Contains(VideoPatterns, ext)
}

// HandleValidationError processes auth.ValidationError and exits with appropriate messaging.
func HandleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Err(err).Msg("No credentials configured for the selected backend")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid credentials. Check your API key or AWS profile and model access")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("Quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("Backend validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during backend validation")
	}
	os.Exit(1)
}
