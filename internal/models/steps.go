package models

// Step is the lifecycle stage of an asynchronous alignment
type Step string

const (
	StepQueued     Step = "queued"
	StepProcessing Step = "processing"
	StepCompleted  Step = "completed"
	StepFailed     Step = "failed"
)

func (s Step) Valid() bool {
	switch s {
	case StepQueued, StepProcessing, StepCompleted, StepFailed:
		return true
	}
	return false
}
