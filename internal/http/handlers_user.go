package http

import (
	"context"
	"net/http"
	"net/url"

	"moodlog/internal/auth"
	applog "moodlog/internal/log"
)

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleUpdateUser changes only the fields present in the body.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpUpdate)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpUpdate)
		return
	}
	if p.Has("displayName") {
		u.DisplayName = p.Get("displayName")
	}
	if p.Has("email") {
		u.Email = p.Get("email")
	}
	if p.Has("photoURL") {
		photo := p.Get("photoURL")
		if photo != "" && !validPhotoURL(photo) {
			writeJSONError(w, http.StatusUnprocessableEntity, "photoURL must be an http(s) URL")
			return
		}
		u.PhotoURL = photo
	}
	if err := u.Validate(); err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpUpdate)
		return
	}

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpUpdate)
		return
	}
	s.logger.InfoContext(r.Context(), "Profile updated", applog.FieldUserID, userID)
	if isHTMX(r) {
		// The greeting on the dashboard shows the display name.
		NewHTMXResponse().
			TriggerDashboardRefresh().
			TriggerSuccessNotification("Profile updated").
			Status(http.StatusNoContent).
			Write(w)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func validPhotoURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
