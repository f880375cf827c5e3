package incident

import "fmt"

// VideoReadError means the source video could not be opened or yielded
// no usable frames.
type VideoReadError struct {
	Path    string
	Message string
	Err     error
}

func (e *VideoReadError) Error() string {
	msg := fmt.Sprintf("video read error (%s): %s", e.Path, e.Message)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *VideoReadError) Unwrap() error {
	return e.Err
}

// InferenceStage identifies which model call failed.
type InferenceStage string

const (
	StageFrame     InferenceStage = "frame"
	StageSynthesis InferenceStage = "synthesis"
)

// InferenceError wraps any failure of the model-inference collaborator,
// including empty responses. Auth, quota and network failures are not
// distinguished here.
type InferenceError struct {
	Stage   InferenceStage
	FrameID int // set when Stage == StageFrame
	Err     error
}

func (e *InferenceError) Error() string {
	if e.Stage == StageFrame {
		return fmt.Sprintf("inference error (frame %d): %v", e.FrameID, e.Err)
	}
	return fmt.Sprintf("inference error (%s): %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
