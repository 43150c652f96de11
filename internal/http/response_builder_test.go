package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseTriggers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerEntryLogged("2025-06-30", "Happy").
		TriggerFormReset().
		TriggerSuccessNotification("Check-in saved").
		BodyHTML("<p>ok</p>").
		Write(w)

	if w.Code != http.StatusOK || w.Body.String() != "<p>ok</p>" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not a JSON object: %v", err)
	}
	for _, name := range []string{"entry:logged", "form:reset", "show-notification"} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("HX-Trigger missing %s", name)
		}
	}

	var logged map[string]string
	if err := json.Unmarshal(triggers["entry:logged"], &logged); err != nil {
		t.Fatal(err)
	}
	if logged["day"] != "2025-06-30" || logged["mood"] != "Happy" {
		t.Errorf("entry:logged = %v", logged)
	}

	var note struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(triggers["show-notification"], &note); err != nil {
		t.Fatal(err)
	}
	if note.Type != "success" || note.Message != "Check-in saved" || note.Duration != successNotificationMs {
		t.Errorf("notification = %+v", note)
	}
}

func TestHTMXResponseNoTriggers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
	if _, ok := w.Header()["Hx-Trigger"]; ok {
		t.Error("HX-Trigger set without triggers")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHTMXResponseControlHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Redirect("/").Retarget("#form-error").Reswap("innerHTML").Write(w)

	want := map[string]string{"HX-Redirect": "/", "HX-Retarget": "#form-error", "HX-Reswap": "innerHTML"}
	for name, v := range want {
		if got := w.Header().Get(name); got != v {
			t.Errorf("%s = %q, want %q", name, got, v)
		}
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Invalid input"), http.StatusBadRequest,
			`<div class="error" role="alert">Invalid input</div>`},
		{"internal", InternalServerError("Could not save"), http.StatusInternalServerError,
			`<div class="error" role="alert">Could not save</div>`},
		{"escaped", ErrorResponse(http.StatusUnprocessableEntity, `<script>alert("x")</script>`), http.StatusUnprocessableEntity,
			`<div class="error" role="alert">&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "POST" {
		t.Fatalf("got %d Allow=%q", w.Code, w.Header().Get("Allow"))
	}
	if strings.TrimSpace(w.Body.String()) != "" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}
