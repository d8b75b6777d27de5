package entities

import (
	"errors"
	"strings"
	"time"
)

// OperationStatus is the lifecycle state reported by the speech service for
// an asynchronous job (consent validation or voice training).
type OperationStatus string

const (
	OperationNotStarted OperationStatus = "NotStarted"
	OperationRunning    OperationStatus = "Running"
	OperationSucceeded  OperationStatus = "Succeeded"
	OperationFailed     OperationStatus = "Failed"
	OperationCanceled   OperationStatus = "Canceled"
)

// ParseOperationStatus normalizes the status string returned by the service.
// Unknown values map to OperationRunning so the caller keeps polling instead
// of aborting on a state the API added after this code was written.
func ParseOperationStatus(s string) OperationStatus {
	switch strings.ToLower(s) {
	case "notstarted":
		return OperationNotStarted
	case "running", "waiting", "processing":
		return OperationRunning
	case "succeeded":
		return OperationSucceeded
	case "failed":
		return OperationFailed
	case "canceled", "cancelled":
		return OperationCanceled
	default:
		return OperationRunning
	}
}

// Terminal reports whether no further polling can change the status.
func (s OperationStatus) Terminal() bool {
	return s == OperationSucceeded || s == OperationFailed || s == OperationCanceled
}

// Project is the remote grouping entity that scopes a consent record and a
// personal voice together. Immutable after creation.
type Project struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
}

// Consent is an uploaded consent statement awaiting (or done with) remote
// validation.
type Consent struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	VoiceTalentName string          `json:"voice_talent_name"`
	CompanyName     string          `json:"company_name"`
	Locale          string          `json:"locale"`
	Status          OperationStatus `json:"status"`
}

// PersonalVoice is the trained voice resource. SpeakerProfileID is populated
// once training succeeds and is the handle used for synthesis afterwards.
type PersonalVoice struct {
	ID               string          `json:"id"`
	ProjectID        string          `json:"project_id"`
	ConsentID        string          `json:"consent_id"`
	Status           OperationStatus `json:"status"`
	SpeakerProfileID string          `json:"speaker_profile_id"`
	CreatedAt        time.Time       `json:"created_at"`
	LastActionAt     time.Time       `json:"last_action_at"`
}

// Operation is the ephemeral handle the service returns for an asynchronous
// step. It belongs to exactly one consent or one personal voice, never both.
type Operation struct {
	ID     string          `json:"id"`
	Status OperationStatus `json:"status"`
	// Diagnostic carries whatever failure detail the service attached.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// EnrollmentRequest is the validated input for a personal-voice enrollment
// run.
type EnrollmentRequest struct {
	ProjectID       string
	ConsentID       string
	VoiceID         string
	ConsentPath     string
	SamplePaths     []string
	VoiceTalentName string
	CompanyName     string
	Locale          string
}

// Validate checks the request before any remote call is made.
func (r *EnrollmentRequest) Validate() error {
	if strings.TrimSpace(r.VoiceTalentName) == "" {
		return errors.New("voice talent name is required")
	}
	if strings.TrimSpace(r.CompanyName) == "" {
		return errors.New("company name is required")
	}
	if r.ConsentPath == "" {
		return errors.New("consent audio file is required")
	}
	if len(r.SamplePaths) < 2 {
		return errors.New("at least 2 sample audio files are required")
	}
	if r.Locale == "" {
		return errors.New("locale is required")
	}
	return nil
}

// EnrollmentResult is the final summary of a successful run.
type EnrollmentResult struct {
	Project          Project       `json:"project"`
	Consent          Consent       `json:"consent"`
	Voice            PersonalVoice `json:"voice"`
	SpeakerProfileID string        `json:"speaker_profile_id"`
}
