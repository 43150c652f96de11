package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"moodlog/internal/auth"
	"moodlog/internal/core"
	applog "moodlog/internal/log"
	"moodlog/internal/services"
	"moodlog/internal/store"
)

// dashboardResponse is the JSON form of the home screen.
type dashboardResponse struct {
	services.Dashboard
	Quote string `json:"quote,omitempty"`
}

type todayView struct {
	Entry *core.MoodEntry
	Quote string
}

// pageView feeds index.html and the dashboard partial.
type pageView struct {
	services.Dashboard
	User         core.User
	Quote        string
	Moods        []core.Mood
	SleepBuckets []core.SleepBucket
	Tags         []core.Tag
	MaxJournal   int
	MaxTags      int
}

// TodayCard is the "today_card" data for the full page.
func (v pageView) TodayCard() todayView {
	return todayView{Entry: v.Today, Quote: v.Quote}
}

var templateFuncs = template.FuncMap{
	"joinTags": func(tags []core.Tag) string {
		parts := make([]string, len(tags))
		for i, t := range tags {
			parts[i] = string(t)
		}
		return strings.Join(parts, ", ")
	},
	"comparisonText": func(c core.Comparison) string {
		switch c {
		case core.Increase:
			return "Increase from the previous 5 check-ins"
		case core.Decrease:
			return "Decrease from the previous 5 check-ins"
		default:
			return "Same as the previous 5 check-ins"
		}
	},
}

// loadDashboard reads the history window and the profile concurrently.
func (s *Server) loadDashboard(ctx context.Context, userID string) (core.User, services.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	now := s.today()
	var (
		user    core.User
		entries []core.MoodEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.entries.ListEntries(gctx, userID, historySince(now, s.historyDays))
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		user, err = s.store.GetUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.User{}, services.Dashboard{}, err
	}

	return user, services.BuildDashboard(user, entries, now, s.sleepTrend), nil
}

func (s *Server) todayQuote(d services.Dashboard) string {
	if d.Today == nil {
		return ""
	}
	return s.pickQuote(d.Today.Mood)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	_, d, err := s.loadDashboard(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{Dashboard: d, Quote: s.todayQuote(d)})
}

// handleDashboardPartial re-renders the dashboard section after a check-in.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	view, err := s.buildPageView(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpRead)
		return
	}
	html, err := s.renderFragment("dashboard", view)
	if err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		InternalServerError("Could not render the dashboard").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(html).Write(w)
}

// handleIndex renders the dashboard for a signed-in browser and the login
// page for everyone else.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")

	userID, ok := s.sessionUser(r)
	if !ok {
		s.renderPage(w, r, "login.html", nil)
		return
	}

	view, err := s.buildPageView(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		// The token outlived its account.
		s.renderPage(w, r, "login.html", nil)
		return
	}
	if err != nil {
		s.events.LogError(r.Context(), "Dashboard load failed", err, applog.ComponentMood, applog.OpRead,
			applog.NewFields().WithUser(userID))
		http.Error(w, "could not load your dashboard", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, r, "index.html", view)
}

// sessionUser validates the session cookie without rejecting the request.
func (s *Server) sessionUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(auth.CookieName)
	if err != nil {
		return "", false
	}
	claims, err := s.tokens.ValidateToken(c.Value)
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

func (s *Server) buildPageView(ctx context.Context, userID string) (pageView, error) {
	user, d, err := s.loadDashboard(ctx, userID)
	if err != nil {
		return pageView{}, err
	}
	return pageView{
		Dashboard:    d,
		User:         user,
		Quote:        s.todayQuote(d),
		Moods:        core.Moods(),
		SleepBuckets: core.SleepBuckets(),
		Tags:         core.Tags(),
		MaxJournal:   core.MaxJournalLength,
		MaxTags:      core.MaxTags,
	}, nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithErrorType(applog.ErrorTypeTemplate))
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderFragment(name string, data any) (string, error) {
	if s.templates == nil {
		return "", errors.New("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
