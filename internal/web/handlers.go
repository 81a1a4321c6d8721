package web

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/vitos/trade_strategy_manager/internal/domain"
	"github.com/vitos/trade_strategy_manager/internal/usecase"
	"go.uber.org/zap"
)

// Templates
var templates *template.Template

func InitTemplates(dir string) error {
	var err error
	templates, err = template.ParseGlob(filepath.Join(dir, "*.html"))
	return err
}

// PageData feeds the index page and the workspace partial.
type PageData struct {
	Query       string
	Items       []usecase.ListItem
	Detail      *usecase.DetailView
	Toast       string
	UndoPending bool
	UndoMs      int64
}

func (s *Server) pageData(query, toast string) PageData {
	data := PageData{
		Query:  query,
		Items:  s.query.ListItems(query),
		Toast:  toast,
		UndoMs: s.repo.UndoBuffer().Window().Milliseconds(),
	}
	if cur, ok := s.query.Current(); ok {
		view := s.query.Detail(cur)
		data.Detail = &view
	}
	_, data.UndoPending = s.repo.UndoBuffer().Peek()
	return data
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Template error", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", s.pageData(r.URL.Query().Get("q"), ""))
}

func (s *Server) handleStrategyList(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "strategy_list", s.pageData(r.URL.Query().Get("q"), ""))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	strategy, ok := s.query.Select(r.PathValue("id"))
	if !ok {
		s.render(w, http.StatusNotFound, "strategy_details", PageData{})
		return
	}
	view := s.query.Detail(strategy)
	s.render(w, http.StatusOK, "strategy_details", PageData{Detail: &view})
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	strategy, ok := s.repo.FindByID(r.PathValue("id"))
	if !ok {
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return
	}
	raw, err := usecase.RawView(strategy)
	if err != nil {
		s.logger.Error("Failed to encode strategy", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, "strategy_raw", raw)
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.query.ClearSelection()
	s.render(w, http.StatusOK, "strategy_form", FormData{})
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	strategy, ok := s.query.Select(r.PathValue("id"))
	if !ok {
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return
	}
	s.render(w, http.StatusOK, "strategy_form", FormFromStrategy(strategy))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := ParseForm(r.PostForm)
	created, err := s.repo.Create(r.Context(), form.Fields())
	if s.formFailed(w, form, err) {
		return
	}

	s.query.Select(created.ID)
	s.hub.Publish(Event{Type: EventCreated, ID: created.ID, Name: created.Name})
	s.render(w, http.StatusOK, "workspace", s.pageData("", s.savedToast(err)))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := ParseForm(r.PostForm)
	form.ID = r.PathValue("id")
	updated, err := s.repo.Update(r.Context(), form.ID, form.Fields())
	if s.formFailed(w, form, err) {
		return
	}

	s.query.Select(updated.ID)
	s.hub.Publish(Event{Type: EventUpdated, ID: updated.ID, Name: updated.Name})
	s.render(w, http.StatusOK, "workspace", s.pageData("", s.savedToast(err)))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := s.repo.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return
	}

	s.query.ClearSelection()
	s.hub.Publish(Event{Type: EventDeleted, ID: removed.ID, Name: removed.Name})

	toast := `Deleted "` + removed.Name + `"`
	if err != nil {
		toast += unsavedSuffix
	}
	s.render(w, http.StatusOK, "workspace", s.pageData("", toast))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	restored, ok, err := s.repo.Undo(r.Context())
	if !ok {
		s.render(w, http.StatusOK, "workspace", s.pageData("", ""))
		return
	}

	s.query.Select(restored.ID)
	s.hub.Publish(Event{Type: EventRestored, ID: restored.ID, Name: restored.Name})

	toast := `Restored "` + restored.Name + `"`
	if err != nil {
		toast += unsavedSuffix
	}
	s.render(w, http.StatusOK, "workspace", s.pageData("", toast))
}

const unsavedSuffix = " (not saved to disk, the change may be lost on restart)"

// formFailed renders the form again for errors that left the catalog
// untouched. Store errors are not failures here: the change was applied.
func (s *Server) formFailed(w http.ResponseWriter, form FormData, err error) bool {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return false
	case errors.As(err, &verr):
		form.Error = verr.Reason
		s.render(w, http.StatusUnprocessableEntity, "strategy_form", form)
		return true
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Strategy not found", http.StatusNotFound)
		return true
	}
	return false
}

func (s *Server) savedToast(err error) string {
	if err != nil {
		return "Strategy saved" + unsavedSuffix
	}
	return "Strategy saved successfully!"
}
