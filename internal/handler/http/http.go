package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/jgivc/maskedlink/internal/common"
	"github.com/jgivc/maskedlink/internal/entity"
)

const (
	PathValueMaskedLink = "maskedLink"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"

	maxMaskedLinkLen = 1024
)

type PageService interface {
	GetPage(ctx context.Context, slug string) (string, error)
}

type ResolveService interface {
	Run(ctx context.Context, maskedLink string, emit func(entity.View)) entity.View
	Download(ctx context.Context, maskedLink string) (string, error)
}

type ViewRenderer interface {
	View(view entity.View) (string, error)
}

func NewPageHandler(slug string, srv PageService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PageHandler"), slog.String("slug", slug))

	return func(w http.ResponseWriter, r *http.Request) {
		content, err := srv.GetPage(r.Context(), slug)
		if err != nil {
			LoggerFromContext(r.Context(), log).Debug("Page unavailable", slog.Any("error", err))

			switch {
			case errors.Is(err, common.ErrPageNotFound):
				http.Error(w, "Page not found", http.StatusNotFound)
			default:
				http.Error(w, "Cannot get page", http.StatusInternalServerError)
			}

			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.Write([]byte(content))
	}
}

func NewDetailHandler(srv ResolveService, renderer ViewRenderer, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DetailHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		maskedLink := r.PathValue(PathValueMaskedLink)
		reqLog := LoggerFromContext(r.Context(), log)

		view := notFoundView(maskedLink)
		if validMaskedLink(maskedLink) {
			view = srv.Run(r.Context(), maskedLink, func(v entity.View) {
				reqLog.Debug("View state", slog.String("masked_link", maskedLink), slog.String("state", v.State.String()))
			})

			if r.Context().Err() != nil {
				return
			}
		} else {
			reqLog.Debug("Invalid masked link", slog.String("masked_link", maskedLink))
		}

		content, err := renderer.View(view)
		if err != nil {
			reqLog.Error("Cannot render view", slog.String("masked_link", maskedLink), slog.Any("error", err))
			http.Error(w, "Cannot render page", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(statusForState(view.State))
		w.Write([]byte(content))
	}
}

func NewAPIHandler(srv ResolveService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "APIHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		maskedLink := r.PathValue(PathValueMaskedLink)

		view := notFoundView(maskedLink)
		if validMaskedLink(maskedLink) {
			view = srv.Run(r.Context(), maskedLink, nil)
			if r.Context().Err() != nil {
				return
			}
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(statusForState(view.State))
		if err := json.NewEncoder(w).Encode(view); err != nil {
			LoggerFromContext(r.Context(), log).Error("Cannot encode view", slog.Any("error", err))
		}
	}
}

func NewDownloadHandler(srv ResolveService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DownloadHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		maskedLink := r.PathValue(PathValueMaskedLink)
		if !validMaskedLink(maskedLink) {
			http.Error(w, "File not found", http.StatusNotFound)

			return
		}

		downloadURL, err := srv.Download(r.Context(), maskedLink)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrFileNotFound):
				http.Error(w, "File not found", http.StatusNotFound)
			case errors.Is(err, common.ErrFetchFailed):
				http.Error(w, "Failed to fetch file data", http.StatusBadGateway)
			default:
				http.Error(w, "Cannot get file", http.StatusInternalServerError)
			}

			return
		}

		LoggerFromContext(r.Context(), log).Info("Redirect to download", slog.String("masked_link", maskedLink), slog.String("url", downloadURL))

		http.Redirect(w, r, downloadURL, http.StatusFound)
	}
}

func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// validMaskedLink accepts a single non-empty path segment, optionally followed by one slash.
func validMaskedLink(s string) bool {
	if len(s) > maxMaskedLinkLen {
		return false
	}

	segment := strings.TrimSuffix(s, "/")
	if segment == "" || strings.Contains(segment, "/") {
		return false
	}

	return strings.IndexFunc(segment, unicode.IsControl) < 0
}

func notFoundView(maskedLink string) entity.View {
	return entity.View{State: entity.StateNotFound, MaskedLink: maskedLink}
}

func statusForState(state entity.State) int {
	switch state {
	case entity.StateResolved:
		return http.StatusOK
	case entity.StateNotFound:
		return http.StatusNotFound
	case entity.StateFetchFailed:
		return http.StatusBadGateway
	}

	return http.StatusServiceUnavailable
}
