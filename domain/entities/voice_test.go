package entities

import "testing"

func TestParseOperationStatus(t *testing.T) {
	cases := []struct {
		in   string
		want OperationStatus
	}{
		{"NotStarted", OperationNotStarted},
		{"notstarted", OperationNotStarted},
		{"Running", OperationRunning},
		{"Succeeded", OperationSucceeded},
		{"succeeded", OperationSucceeded},
		{"Failed", OperationFailed},
		{"Canceled", OperationCanceled},
		{"cancelled", OperationCanceled},
		{"SomethingNew", OperationRunning},
	}
	for _, tc := range cases {
		if got := ParseOperationStatus(tc.in); got != tc.want {
			t.Errorf("ParseOperationStatus(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestOperationStatusTerminal(t *testing.T) {
	terminal := []OperationStatus{OperationSucceeded, OperationFailed, OperationCanceled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}
	for _, s := range []OperationStatus{OperationNotStarted, OperationRunning} {
		if s.Terminal() {
			t.Errorf("Expected %s to be non-terminal", s)
		}
	}
}

func TestEnrollmentRequestValidate(t *testing.T) {
	valid := EnrollmentRequest{
		ConsentPath:     "consent.wav",
		SamplePaths:     []string{"a.wav", "b.wav"},
		VoiceTalentName: "Jane",
		CompanyName:     "Acme",
		Locale:          "en-US",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*EnrollmentRequest)
	}{
		{"missing name", func(r *EnrollmentRequest) { r.VoiceTalentName = " " }},
		{"missing company", func(r *EnrollmentRequest) { r.CompanyName = "" }},
		{"missing consent", func(r *EnrollmentRequest) { r.ConsentPath = "" }},
		{"one sample", func(r *EnrollmentRequest) { r.SamplePaths = r.SamplePaths[:1] }},
		{"missing locale", func(r *EnrollmentRequest) { r.Locale = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			req.SamplePaths = append([]string(nil), valid.SamplePaths...)
			tc.mutate(&req)
			if err := req.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
