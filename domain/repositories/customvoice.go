package repositories

import (
	"context"

	"github.com/voiceforge/voiceforge/domain/entities"
)

// ConsentUpload carries everything the service needs to validate a recorded
// consent statement.
type ConsentUpload struct {
	ConsentID       string
	ProjectID       string
	VoiceTalentName string
	CompanyName     string
	Locale          string
	Description     string
	AudioFilename   string
	Audio           []byte
}

// VoiceSample is one uploaded training sample.
type VoiceSample struct {
	Filename string
	Audio    []byte
}

// VoiceCreation carries the inputs for training a personal voice. The
// referenced consent must already be validated.
type VoiceCreation struct {
	VoiceID   string
	ProjectID string
	ConsentID string
	Samples   []VoiceSample
}

// CustomVoice abstracts the personal-voice enrollment surface of the speech
// service. Each call is synchronous at the HTTP level; UploadConsent and
// CreateVoice additionally return the Operation handle for the asynchronous
// job they started, to be driven by the poller.
type CustomVoice interface {
	// CreateProject creates the remote project grouping entity.
	CreateProject(ctx context.Context, projectID, description string) (entities.Project, error)
	// UploadConsent uploads the consent audio and starts its validation job.
	UploadConsent(ctx context.Context, upload ConsentUpload) (entities.Consent, entities.Operation, error)
	// GetOperation fetches the current state of an asynchronous job.
	GetOperation(ctx context.Context, operationID string) (entities.Operation, error)
	// CreateVoice uploads the samples and starts the training job.
	CreateVoice(ctx context.Context, creation VoiceCreation) (entities.PersonalVoice, entities.Operation, error)
	// GetVoice fetches the voice resource, including the speaker profile id
	// once training has succeeded.
	GetVoice(ctx context.Context, voiceID string) (entities.PersonalVoice, error)
	// DeleteProject removes a project and everything scoped under it.
	DeleteProject(ctx context.Context, projectID string) error
}
