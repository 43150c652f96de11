package http

import (
	"net/http"

	"moodlog/internal/auth"
	applog "moodlog/internal/log"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, applog.ComponentAuth, applog.OpRegister)
		return
	}

	session, err := s.auth.Register(r.Context(), p.Get("email"), p.GetSecret("password"), p.Get("displayName"))
	if err != nil {
		s.writeError(w, r, err, applog.ComponentAuth, applog.OpRegister)
		return
	}
	s.appMetrics.registrations.Add(1)
	s.startSession(w, r, session, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, applog.ComponentAuth, applog.OpLogin)
		return
	}

	session, err := s.auth.Login(r.Context(), p.Get("email"), p.GetSecret("password"))
	if err != nil {
		s.writeError(w, r, err, applog.ComponentAuth, applog.OpLogin)
		return
	}
	s.appMetrics.logins.Add(1)
	s.startSession(w, r, session, http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// startSession sets the browser cookie and answers with the token, or with a
// redirect for htmx forms.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, session auth.Session, status int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(s.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	if isHTMX(r) {
		NewHTMXResponse().Redirect("/").Write(w)
		return
	}
	writeJSON(w, status, session)
}
