package entities

// Stage is a step of the meeting pipeline
type Stage string

const (
	StageIdle            Stage = "idle"
	StageUploading       Stage = "uploading"
	StageTranscribed     Stage = "transcribed"
	StageSummarizing     Stage = "summarizing"
	StageSummarized      Stage = "summarized"
	StageExtractingTasks Stage = "extracting_tasks"
	StageTasksReady      Stage = "tasks_ready"
	StagePublishing      Stage = "publishing"
	StagePublished       Stage = "published"
)

// IsBusy reports whether the stage has a remote call outstanding
func (s Stage) IsBusy() bool {
	switch s {
	case StageUploading, StageSummarizing, StageExtractingTasks, StagePublishing:
		return true
	}
	return false
}

// UploadStatus is the outcome of the most recent upload attempt
type UploadStatus string

const (
	UploadStatusNone      UploadStatus = "none"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusSucceeded UploadStatus = "succeeded"
	UploadStatusFailed    UploadStatus = "failed"
	UploadStatusCancelled UploadStatus = "cancelled"
)
