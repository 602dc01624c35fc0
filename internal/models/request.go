package models

// AlignmentRequest carries two uploaded files through the sync and stream paths
type AlignmentRequest struct {
	AlignmentID  string `json:"alignmentId"`
	UserID       string `json:"userId"`
	File1Name    string `json:"file1Name"`
	File1Content string `json:"file1Content"`
	File2Name    string `json:"file2Name"`
	File2Content string `json:"file2Content"`
}

// AlignmentAccepted is the response of an asynchronous submission
type AlignmentAccepted struct {
	AlignmentID string `json:"alignmentId"`
	Step        Step   `json:"step"`
}

// StatusResponse reports the step of an asynchronous alignment
type StatusResponse struct {
	AlignmentID string `json:"alignmentId"`
	Step        Step   `json:"step"`
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}
