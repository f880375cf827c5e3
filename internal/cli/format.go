package cli

import (
	"fmt"
	"time"

	"github.com/fpang/incident-dispatch/internal/video"
)

// DescribeVideo summarises ffprobe metadata for dashcam footage for the terminal, e.g.
// "1:02 at 29.97 fps, 1920x1080 h264". Fields ffprobe could not fill are
// left out.
func DescribeVideo(info *video.Info) string {
	s := clipLength(info.Duration)
	if info.FrameRate > 0 {
		s += fmt.Sprintf(" at %.2f fps", info.FrameRate)
	}
	if info.Width > 0 && info.Height > 0 {
		s += fmt.Sprintf(", %dx%d", info.Width, info.Height)
	}
	if info.Codec != "" {
		s += " " + info.Codec
	}
	return s
}

// clipLength renders d as M:SS, or H:MM:SS for long recordings, rounded to
// the nearest second.
func clipLength(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
