package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/entities"
	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/pipeline"
	"github.com/voiceforge/voiceforge/internal/poll"
)

// EnrollmentService drives the personal-voice enrollment workflow: create
// project, upload consent, poll its validation, train the voice, poll the
// training, and fetch the speaker profile id.
type EnrollmentService struct {
	customVoice repositories.CustomVoice
	converter   repositories.AudioConverter
	poller      *poll.Poller
	runner      *pipeline.Runner
	logger      *zap.Logger
}

// NewEnrollmentService creates an enrollment service.
func NewEnrollmentService(
	customVoice repositories.CustomVoice,
	converter repositories.AudioConverter,
	poller *poll.Poller,
	runner *pipeline.Runner,
	logger *zap.Logger,
) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		customVoice: customVoice,
		converter:   converter,
		poller:      poller,
		runner:      runner,
		logger:      logger,
	}
}

// Enroll runs the full workflow. Any failure aborts the remaining steps; a
// created project with a failed consent is left on the service unless the
// runner was built with cleanup enabled.
func (s *EnrollmentService) Enroll(ctx context.Context, req entities.EnrollmentRequest) (*entities.EnrollmentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	fillGeneratedIDs(&req)

	// Shared state the steps write into.
	var (
		consentAudio []byte
		sampleAudio  []repositories.VoiceSample
		result       entities.EnrollmentResult
	)

	steps := []pipeline.Step{
		{
			Name: "convert audio",
			Run: func(ctx context.Context) error {
				var err error
				consentAudio, sampleAudio, err = s.prepareAudio(ctx, req)
				return err
			},
		},
		{
			Name: "create project",
			Run: func(ctx context.Context) error {
				project, err := s.customVoice.CreateProject(ctx, req.ProjectID,
					fmt.Sprintf("Personal voice project for %s", req.VoiceTalentName))
				if err != nil {
					return err
				}
				result.Project = project
				return nil
			},
			Cleanup: func(ctx context.Context) error {
				return s.customVoice.DeleteProject(ctx, req.ProjectID)
			},
		},
		{
			Name: "upload consent",
			Run: func(ctx context.Context) error {
				consent, operation, err := s.customVoice.UploadConsent(ctx, repositories.ConsentUpload{
					ConsentID:       req.ConsentID,
					ProjectID:       req.ProjectID,
					VoiceTalentName: req.VoiceTalentName,
					CompanyName:     req.CompanyName,
					Locale:          req.Locale,
					Description:     fmt.Sprintf("Consent for %s", req.VoiceTalentName),
					AudioFilename:   filepath.Base(req.ConsentPath),
					Audio:           consentAudio,
				})
				if err != nil {
					return err
				}

				if _, err := s.waitForOperation(ctx, operation, consent.Status); err != nil {
					return fmt.Errorf("consent validation: %w", err)
				}
				consent.Status = entities.OperationSucceeded
				result.Consent = consent
				return nil
			},
		},
		{
			Name: "create voice",
			Run: func(ctx context.Context) error {
				voice, operation, err := s.customVoice.CreateVoice(ctx, repositories.VoiceCreation{
					VoiceID:   req.VoiceID,
					ProjectID: req.ProjectID,
					ConsentID: req.ConsentID,
					Samples:   sampleAudio,
				})
				if err != nil {
					return err
				}

				if _, err := s.waitForOperation(ctx, operation, voice.Status); err != nil {
					return fmt.Errorf("voice training: %w", err)
				}
				voice.Status = entities.OperationSucceeded
				result.Voice = voice
				return nil
			},
		},
		{
			Name: "fetch speaker profile",
			Run: func(ctx context.Context) error {
				voice, err := s.customVoice.GetVoice(ctx, req.VoiceID)
				if err != nil {
					return err
				}
				if voice.SpeakerProfileID == "" {
					return fmt.Errorf("voice %s succeeded but has no speaker profile id", req.VoiceID)
				}
				result.Voice = voice
				result.SpeakerProfileID = voice.SpeakerProfileID
				return nil
			},
		},
	}

	if err := s.runner.Execute(ctx, "personal-voice-enrollment", steps); err != nil {
		return nil, err
	}

	s.logger.Info("enrollment completed",
		zap.String("projectID", result.Project.ID),
		zap.String("voiceID", result.Voice.ID),
		zap.String("speakerProfileID", result.SpeakerProfileID))
	return &result, nil
}

// waitForOperation drives the operation through the poller. Operations some
// API versions complete inline (already Succeeded, no handle) skip polling.
func (s *EnrollmentService) waitForOperation(ctx context.Context, operation entities.Operation, resourceStatus entities.OperationStatus) (entities.Operation, error) {
	if operation.ID == "" || operation.Status == entities.OperationSucceeded ||
		(operation.Status == "" && resourceStatus == entities.OperationSucceeded) {
		return operation, nil
	}
	return s.poller.Wait(ctx, func(ctx context.Context) (entities.Operation, error) {
		return s.customVoice.GetOperation(ctx, operation.ID)
	})
}

// prepareAudio converts the consent and sample files to upload-ready WAV and
// reads them into memory. Temporary conversion artifacts are removed before
// returning. A conversion failure aborts before any remote call.
func (s *EnrollmentService) prepareAudio(ctx context.Context, req entities.EnrollmentRequest) ([]byte, []repositories.VoiceSample, error) {
	consentAudio, err := s.loadConverted(ctx, req.ConsentPath)
	if err != nil {
		return nil, nil, fmt.Errorf("consent audio: %w", err)
	}

	samples := make([]repositories.VoiceSample, 0, len(req.SamplePaths))
	for _, path := range req.SamplePaths {
		audio, err := s.loadConverted(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("sample audio %s: %w", filepath.Base(path), err)
		}
		samples = append(samples, repositories.VoiceSample{
			Filename: wavName(path),
			Audio:    audio,
		})
	}
	return consentAudio, samples, nil
}

func (s *EnrollmentService) loadConverted(ctx context.Context, path string) ([]byte, error) {
	converted, err := s.converter.ConvertToWAV(ctx, path)
	if err != nil {
		return nil, err
	}
	if converted.Temporary {
		defer func() {
			if err := os.Remove(converted.Path); err != nil {
				s.logger.Warn("could not remove temporary file",
					zap.String("path", converted.Path), zap.Error(err))
			}
		}()
	}
	return os.ReadFile(converted.Path)
}

// fillGeneratedIDs assigns run-unique identifiers for anything the caller
// left blank.
func fillGeneratedIDs(req *entities.EnrollmentRequest) {
	if req.ProjectID == "" {
		req.ProjectID = generateID("project")
	}
	if req.ConsentID == "" {
		req.ConsentID = generateID("consent")
	}
	if req.VoiceID == "" {
		req.VoiceID = generateID("voice")
	}
}

// generateID builds a prefix-timestamp-suffix identifier. The uuid suffix
// keeps two runs within the same second apart.
func generateID(prefix string) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102150405"), suffix)
}

// wavName swaps the input file's extension for .wav, matching what the
// converted upload actually contains.
func wavName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".wav"
}
