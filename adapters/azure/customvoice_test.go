package azure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/voiceforge/voiceforge/domain/entities"
	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/config"
)

func newTestCustomVoiceClient(t *testing.T, handler http.Handler) (*CustomVoiceClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewCustomVoiceClient(config.Speech{
		Key:                   "test-key",
		Endpoint:              server.URL,
		CustomVoiceAPIVersion: "2024-02-01-preview",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewCustomVoiceClient returned error: %v", err)
	}
	return client, server
}

func TestNewCustomVoiceClientRequiresKey(t *testing.T) {
	_, err := NewCustomVoiceClient(config.Speech{Region: "eastus"}, nil)
	if err == nil {
		t.Error("Expected error when key is not set")
	}
}

func TestCreateProject(t *testing.T) {
	client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/customvoice/projects/proj-1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api-version") != "2024-02-01-preview" {
			t.Errorf("Missing api-version query, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			t.Error("Missing subscription key header")
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if payload["kind"] != "PersonalVoice" {
			t.Errorf("Expected PersonalVoice kind, got %q", payload["kind"])
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":   "proj-1",
			"kind": "PersonalVoice",
		})
	}))

	project, err := client.CreateProject(context.Background(), "proj-1", "a project")
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if project.ID != "proj-1" {
		t.Errorf("Expected project id proj-1, got %q", project.ID)
	}
}

func TestCreateProjectRejected(t *testing.T) {
	client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid characters in id"}}`))
	}))

	_, err := client.CreateProject(context.Background(), "bad id!", "x")
	if !IsServiceError(err) {
		t.Fatalf("Expected ServiceError, got %v", err)
	}
	var se *ServiceError
	errors.As(err, &se)
	if se.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", se.StatusCode)
	}
}

func TestUploadConsentParsesOperationLocation(t *testing.T) {
	client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("Expected multipart form: %v", err)
		}
		if got := r.FormValue("voiceTalentName"); got != "Jane Speaker" {
			t.Errorf("Expected voiceTalentName, got %q", got)
		}
		if got := r.FormValue("projectId"); got != "proj-1" {
			t.Errorf("Expected projectId, got %q", got)
		}
		if got := r.FormValue("locale"); got != "en-US" {
			t.Errorf("Expected locale, got %q", got)
		}
		file, header, err := r.FormFile("audiodata")
		if err != nil {
			t.Fatalf("Expected audiodata part: %v", err)
		}
		file.Close()
		if header.Filename != "consent.wav" {
			t.Errorf("Expected consent.wav filename, got %q", header.Filename)
		}

		w.Header().Set("Operation-Location",
			"https://eastus.api.cognitive.microsoft.com/customvoice/operations/op-123?api-version=2024-02-01-preview")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "consent-1",
			"status": "NotStarted",
		})
	}))

	consent, operation, err := client.UploadConsent(context.Background(), repositories.ConsentUpload{
		ConsentID:       "consent-1",
		ProjectID:       "proj-1",
		VoiceTalentName: "Jane Speaker",
		CompanyName:     "Acme",
		Locale:          "en-US",
		AudioFilename:   "consent.wav",
		Audio:           []byte("RIFF audio"),
	})
	if err != nil {
		t.Fatalf("UploadConsent returned error: %v", err)
	}
	if consent.ID != "consent-1" {
		t.Errorf("Expected consent id, got %q", consent.ID)
	}
	if operation.ID != "op-123" {
		t.Errorf("Expected operation id from Operation-Location, got %q", operation.ID)
	}
	if operation.Status != entities.OperationNotStarted {
		t.Errorf("Expected NotStarted, got %s", operation.Status)
	}
}

func TestGetOperationMapsStatusAndDiagnostic(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantStatus entities.OperationStatus
		wantDiag   string
	}{
		{
			name:       "running",
			body:       `{"id": "op-1", "status": "Running"}`,
			wantStatus: entities.OperationRunning,
		},
		{
			name:       "succeeded",
			body:       `{"id": "op-1", "status": "Succeeded"}`,
			wantStatus: entities.OperationSucceeded,
		},
		{
			name:       "failed with diagnostic",
			body:       `{"id": "op-1", "status": "Failed", "error": {"code": "BadAudio", "message": "audio too short"}}`,
			wantStatus: entities.OperationFailed,
			wantDiag:   "audio too short",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/customvoice/operations/op-1" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(tc.body))
			}))

			operation, err := client.GetOperation(context.Background(), "op-1")
			if err != nil {
				t.Fatalf("GetOperation returned error: %v", err)
			}
			if operation.Status != tc.wantStatus {
				t.Errorf("Expected status %s, got %s", tc.wantStatus, operation.Status)
			}
			if operation.Diagnostic != tc.wantDiag {
				t.Errorf("Expected diagnostic %q, got %q", tc.wantDiag, operation.Diagnostic)
			}
		})
	}
}

func TestCreateVoiceUploadsAllSamples(t *testing.T) {
	client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("Expected multipart form: %v", err)
		}
		if got := r.FormValue("consentId"); got != "consent-1" {
			t.Errorf("Expected consentId, got %q", got)
		}
		files := r.MultipartForm.File["audiodata"]
		if len(files) != 2 {
			t.Errorf("Expected 2 audiodata parts, got %d", len(files))
		}

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "voice-1",
			"status": "NotStarted",
		})
	}))

	voice, operation, err := client.CreateVoice(context.Background(), repositories.VoiceCreation{
		VoiceID:   "voice-1",
		ProjectID: "proj-1",
		ConsentID: "consent-1",
		Samples: []repositories.VoiceSample{
			{Filename: "s1.wav", Audio: []byte("a")},
			{Filename: "s2.wav", Audio: []byte("b")},
		},
	})
	if err != nil {
		t.Fatalf("CreateVoice returned error: %v", err)
	}
	if voice.ID != "voice-1" {
		t.Errorf("Expected voice id, got %q", voice.ID)
	}
	if operation.ID == "" {
		t.Error("Expected an operation handle")
	}
}

func TestGetVoiceReturnsSpeakerProfile(t *testing.T) {
	client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id":               "voice-1",
			"projectId":        "proj-1",
			"consentId":        "consent-1",
			"status":           "Succeeded",
			"speakerProfileId": "profile-abc",
			"createdDateTime":  "2026-08-30T10:00:00Z",
		})
	}))

	voice, err := client.GetVoice(context.Background(), "voice-1")
	if err != nil {
		t.Fatalf("GetVoice returned error: %v", err)
	}
	if voice.SpeakerProfileID != "profile-abc" {
		t.Errorf("Expected speaker profile id, got %q", voice.SpeakerProfileID)
	}
	if voice.Status != entities.OperationSucceeded {
		t.Errorf("Expected Succeeded, got %s", voice.Status)
	}
	if voice.CreatedAt.IsZero() {
		t.Error("Expected created timestamp to parse")
	}
}

func TestDeleteProject(t *testing.T) {
	deleted := false
	client, _ := newTestCustomVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteProject(context.Background(), "proj-1"); err != nil {
		t.Fatalf("DeleteProject returned error: %v", err)
	}
	if !deleted {
		t.Error("Expected delete request to be issued")
	}
}

func TestOperationIDFromLocation(t *testing.T) {
	cases := []struct {
		location string
		want     string
	}{
		{"https://host/customvoice/operations/op-9?api-version=x", "op-9"},
		{"/customvoice/operations/op-9", "op-9"},
		{"op-9", "op-9"},
	}
	for _, tc := range cases {
		if got := operationIDFromLocation(tc.location); got != tc.want {
			t.Errorf("operationIDFromLocation(%q) = %q, want %q", tc.location, got, tc.want)
		}
	}
}
