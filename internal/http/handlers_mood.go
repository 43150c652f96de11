package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"moodlog/internal/auth"
	"moodlog/internal/core"
	applog "moodlog/internal/log"
	"moodlog/internal/quotes"
	"moodlog/internal/services"
)

// loggedEntry is the reply to a check-in.
type loggedEntry struct {
	Entry core.MoodEntry `json:"entry"`
	Quote string         `json:"quote"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	days := ParseHistoryDays(r.URL.Query(), s.historyDays, maxHistoryDays)

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	entries, err := s.entries.ListEntries(ctx, userID, historySince(s.today(), days))
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"days":    days,
		"entries": core.SortNewestFirst(entries),
	})
}

// handleLogMood stores today's check-in from a JSON or form body.
func (s *Server) handleLogMood(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpUpsert)
		return
	}

	saved, err := s.logToday(r.Context(), userID, p.EntryInput())
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpUpsert)
		return
	}
	writeJSON(w, http.StatusOK, loggedEntry{Entry: saved, Quote: s.pickQuote(saved.Mood)})
}

// handleCreateEntry is the htmx variant of handleLogMood. It answers with the
// refreshed "today" card.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	userID, _ := auth.UserIDFrom(r.Context())

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Retarget("#form-error").Write(w)
		return
	}

	saved, err := s.logToday(r.Context(), userID, p.EntryInput())
	if err != nil {
		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.events.LogError(r.Context(), "Entry save failed", err, applog.ComponentMood, applog.OpUpsert,
				applog.NewFields().WithUser(userID))
			message = "Could not save your check-in"
		}
		ErrorResponse(status, message).
			Retarget("#form-error").
			Reswap("innerHTML").
			TriggerErrorNotification(message).
			Write(w)
		return
	}

	html, err := s.renderFragment("today_card", todayView{Entry: &saved, Quote: s.pickQuote(saved.Mood)})
	if err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		InternalServerError("Check-in saved, reload the page to see it").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerEntryLogged(saved.Date.Key(), string(saved.Mood)).
		TriggerFormReset().
		TriggerSuccessNotification("Check-in saved").
		BodyHTML(html).
		Write(w)
}

// logToday stores the entry for today in the server's timezone through the
// cache, so cached history is invalidated.
func (s *Server) logToday(ctx context.Context, userID string, in services.EntryInput) (core.MoodEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	saved, err := services.LogToday(ctx, s.entries, userID, in, s.today())
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("log today: %w", err)
	}

	s.appMetrics.entriesLogged.Add(1)
	s.events.LogEntryLogged(ctx, userID, saved.Date.Key(), string(saved.Mood), string(saved.Sleep),
		len(saved.Tags), utf8.RuneCountInString(saved.Journal))
	return saved, nil
}

// handleExportCSV streams the user's whole history, newest first.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	entries, err := s.store.ListEntries(ctx, userID, time.Time{})
	if err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := writeEntriesCSV(&buf, core.SortNewestFirst(entries)); err != nil {
		s.writeError(w, r, err, applog.ComponentMood, applog.OpExport)
		return
	}

	filename := fmt.Sprintf("moodlog-%s.csv", core.DayKey(s.today()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	s.logger.InfoContext(r.Context(), "Exported entries",
		applog.FieldUserID, userID,
		applog.FieldOperation, applog.OpExport,
		"count", len(entries))
}

var csvHeader = []string{"date", "mood", "sleep", "tags", "journal"}

func writeEntriesCSV(buf *bytes.Buffer, entries []core.MoodEntry) error {
	cw := csv.NewWriter(buf)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		tags := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = string(t)
		}
		record := []string{e.Date.Key(), string(e.Mood), string(e.Sleep), strings.Join(tags, ";"), e.Journal}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	label := strings.TrimSpace(r.URL.Query().Get("mood"))
	if label == "" {
		writeJSONError(w, http.StatusBadRequest, "mood query parameter is required")
		return
	}
	mood, err := core.ParseMood(label)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %q", err, label), applog.ComponentMood, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mood":   string(mood),
		"quote":  s.pickQuote(mood),
		"quotes": s.moodQuotes(mood),
	})
}

func (s *Server) pickQuote(m core.Mood) string {
	if s.quotes == nil {
		return quotes.Fallback
	}
	return s.quotes.Pick(m)
}

// moodQuotes lists every quote the card may show for m.
func (s *Server) moodQuotes(m core.Mood) []string {
	var all []string
	if s.quotes != nil {
		all = s.quotes.For(m)
	}
	if len(all) == 0 {
		return []string{quotes.Fallback}
	}
	return all
}
