package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/flows"
	"github.com/jonathan/job-assistant/internal/rendering"
	"github.com/jonathan/job-assistant/internal/state"
)

// multipartMemory is how much of an upload is held in memory before
// spilling to a temporary file.
const multipartMemory = 1 << 20

// StateResponse is the JSON form of a visitor's page.
type StateResponse struct {
	State    state.State       `json:"state"`
	Active   string            `json:"active"`
	Notices  []feedback.Notice `json:"notices"`
	Busy     bool              `json:"busy"`
	BusyText string            `json:"busy_text,omitempty"`
}

// wantsJSON reports whether the client asked for JSON rather than a redirect.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// respond sends view as JSON, or redirects form posts back to the page.
// JSON clients carry out view.Navigate themselves, so any delayed navigation
// is dropped rather than left for a later page load.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *flows.Session, view flows.View) {
	if wantsJSON(r) {
		sess.Nav.TakePending()
		s.jsonResponse(w, http.StatusOK, view)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail reports a request that never reached a flow.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}

	if wantsJSON(r) {
		s.errorResponse(w, status, err.Error())
		return
	}
	http.Error(w, err.Error(), status)
}

// withSession resolves the visitor session before calling fn.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*flows.Session)) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fn(sess)
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: "index", Message: fmt.Sprintf("%q is not a job index", raw)}
	}
	return index, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		if page := r.URL.Query().Get("page"); page != "" {
			s.runner.Navigate(sess, page)
		}

		busy, busyText := sess.Overlay.State()
		in := rendering.PageInput{
			State:        sess.Store.Snapshot(),
			Links:        sess.Nav.Links(),
			Active:       sess.Nav.Active(),
			Notices:      sess.Tray.Active(),
			Now:          sess.Tray.Now(),
			Busy:         busy,
			BusyText:     busyText,
			Refresh:      sess.Nav.TakePending(),
			DefaultLimit: flows.DefaultLimit,
		}

		var buf bytes.Buffer
		if err := s.runner.Controller().Renderer().Page(&buf, in); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := buf.WriteTo(w); err != nil {
			s.logger.Debug("failed to write page", zap.Error(err))
		}
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		busy, busyText := sess.Overlay.State()
		s.jsonResponse(w, http.StatusOK, StateResponse{
			State:    sess.Store.Snapshot(),
			Active:   sess.Nav.Active(),
			Notices:  sess.Tray.Active(),
			Busy:     busy,
			BusyText: busyText,
		})
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.fail(w, r, tooLarge)
				return
			}
			s.fail(w, r, &ErrValidation{Field: "resume", Message: "expected a multipart form"})
			return
		}
		defer r.MultipartForm.RemoveAll() //nolint:errcheck

		file, header, err := r.FormFile("resume")
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "resume", Message: "file is required"})
			return
		}
		defer file.Close()

		source := flows.Source(r.FormValue("source"))
		switch source {
		case "":
			source = flows.SourcePicker
		case flows.SourceDrop, flows.SourcePicker:
		default:
			s.fail(w, r, &ErrValidation{Field: "source", Message: "must be drop or picker"})
			return
		}

		view := s.runner.Upload(r.Context(), sess, flows.UploadInput{
			Filename:     header.Filename,
			DeclaredType: header.Header.Get("Content-Type"),
			Source:       source,
			Body:         file,
		})
		s.respond(w, r, sess, view)
	})
}

func (s *Server) handleRemoveResume(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		s.respond(w, r, sess, s.runner.RemoveResume(r.Context(), sess))
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		in := flows.SearchInput{Location: r.FormValue("location")}
		if raw := strings.TrimSpace(r.FormValue("limit")); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				s.fail(w, r, &ErrValidation{Field: "limit", Message: "must be a number"})
				return
			}
			in.Limit = limit
		}
		s.respond(w, r, sess, s.runner.SearchJobs(r.Context(), sess, in))
	})
}

func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		index, err := pathIndex(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, r, sess, s.runner.CoverLetter(r.Context(), sess, index))
	})
}

func (s *Server) handleResearchFromJob(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		index, err := pathIndex(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, r, sess, s.runner.ResearchFromJob(r.Context(), sess, index))
	})
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		s.respond(w, r, sess, s.runner.CloseModal(r.Context(), sess))
	})
}

func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		in := flows.SkillGapInput{JobDescription: r.FormValue("job_description")}
		s.respond(w, r, sess, s.runner.SkillGap(r.Context(), sess, in))
	})
}

func (s *Server) handleSkillGapStream(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		in := flows.SkillGapInput{JobDescription: r.FormValue("job_description")}

		sse, err := NewSSEWriter(w)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		view := s.runner.StreamSkillGap(r.Context(), sess, in, func(e flows.Event) {
			if err := sse.WriteFlowEvent(e); err != nil {
				s.logger.Debug("failed to write event", zap.String("flow", e.Flow), zap.Error(err))
			}
		})
		for _, n := range view.Notices {
			if n.Kind == feedback.KindError {
				sse.WriteError(n.Text)
			}
		}
		sse.WriteComplete(view)
		sess.Nav.TakePending()
	})
}

// formSkills collects repeated and comma separated skills values.
func formSkills(r *http.Request) []string {
	if err := r.ParseForm(); err != nil {
		return nil
	}
	var skills []string
	for _, v := range r.Form["skills"] {
		for _, skill := range strings.Split(v, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				skills = append(skills, skill)
			}
		}
	}
	return skills
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		skills := formSkills(r)
		if len(skills) == 0 {
			s.fail(w, r, &ErrValidation{Field: "skills", Message: "at least one skill is required"})
			return
		}
		s.respond(w, r, sess, s.runner.Courses(r.Context(), sess, flows.CoursesInput{Skills: skills}))
	})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		in := flows.ResearchInput{
			CompanyName: r.FormValue("company_name"),
			JobTitle:    r.FormValue("job_title"),
		}
		s.respond(w, r, sess, s.runner.Research(r.Context(), sess, in))
	})
}

func (s *Server) handleCoverLetterDownload(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, flows.CoverLetterDownload)
}

func (s *Server) handleBriefDownload(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, flows.BriefDownload)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, get func(state.State) (flows.Download, error)) {
	s.withSession(w, r, func(sess *flows.Session) {
		d, err := s.runner.Download(sess, get)
		if err != nil {
			if errors.Is(err, flows.ErrNothingToDownload) {
				sess.Tray.Notify(flows.MsgNothingToDownload, feedback.KindError)
			}
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", d.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(d.Body)))
		if _, err := w.Write([]byte(d.Body)); err != nil {
			s.logger.Debug("failed to write download", zap.String("file", d.Filename), zap.Error(err))
		}
	})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		page := r.PathValue("page")
		if !s.runner.Navigate(sess, page) && wantsJSON(r) {
			s.fail(w, r, &ErrUnknownPage{Page: page})
			return
		}
		if wantsJSON(r) {
			s.jsonResponse(w, http.StatusOK, map[string]string{"active": sess.Nav.Active()})
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *flows.Session) {
		id := r.PathValue("id")
		// Notices expire on their own, so a form post for a gone notice
		// still lands back on the page.
		if !sess.Tray.Dismiss(id) && wantsJSON(r) {
			s.fail(w, r, &ErrNoticeNotFound{ID: id})
			return
		}
		if wantsJSON(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}
