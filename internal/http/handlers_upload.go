package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/scoutdeck/scoutdeck/internal/upload"
)

// maxUploadBytes bounds a whole multipart request: two file slots plus form
// overhead. Individual slots are checked again by the workflow.
const maxUploadBytes = 2*upload.MaxFileSize + 1<<20

// UploadHandler accepts one multipart submission per tournament. Either a
// single "file" part (kind given explicitly or detected from the filename)
// or dedicated "total"/"per90" parts for a two-slice batch.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := strconv.Atoi(chi.URLParam(r, "tournamentID"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "tournament id must be an integer")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(w, http.StatusRequestEntityTooLarge, "file_too_large", "The upload exceeds the size limit.")
				return
			}
			respondError(w, http.StatusBadRequest, "invalid_multipart", "Request must be multipart/form-data with the file parts.")
			return
		}

		round := 0
		if raw := r.FormValue("round"); raw != "" {
			if round, err = strconv.Atoi(raw); err != nil {
				respondError(w, http.StatusBadRequest, "validation_error", "round must be an integer")
				return
			}
		}

		files := make(map[statsapi.SliceKind]upload.File)
		if fh := firstFile(r, "file"); fh != nil {
			kind := statsapi.SliceKind(strings.ToUpper(r.FormValue("kind")))
			if r.FormValue("kind") == "" {
				kind = upload.KindFromFilename(fh.Filename)
			}
			f, err := fh.Open()
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid_multipart", "Could not read the uploaded file.")
				return
			}
			defer f.Close()
			files[kind] = upload.File{Name: fh.Filename, Size: fh.Size, Data: f}
		}
		for field, kind := range map[string]statsapi.SliceKind{"total": statsapi.SliceTotal, "per90": statsapi.SlicePer90} {
			fh := firstFile(r, field)
			if fh == nil {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid_multipart", "Could not read the uploaded file.")
				return
			}
			defer f.Close()
			files[kind] = upload.File{Name: fh.Filename, Size: fh.Size, Data: f}
		}

		req := upload.Request{
			TournamentID: tournamentID,
			Season:       r.FormValue("season"),
			Round:        round,
			Files:        files,
		}
		result, err := s.Uploader.Run(r.Context(), req)
		if err != nil {
			respondError(w, http.StatusBadRequest, "upload_validation", err.Error())
			return
		}

		view := buildBatchView(result)
		if result.Succeeded == 0 && result.Failed > 0 {
			status := http.StatusBadRequest
			message := "Every slot in the batch failed."
			for _, slot := range result.Slots {
				if slot.Err == nil {
					continue
				}
				message = slot.Err.Error()
				if errors.Is(slot.Err, upload.ErrFileTooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				break
			}
			respondErrorDetails(w, status, "upload_failed", message, map[string]any{"batch": view})
			return
		}

		log.Info("Upload batch accepted", "tournamentID", tournamentID, "succeeded", result.Succeeded, "failed", result.Failed)
		view.Success = true
		respondJSON(w, http.StatusOK, view)
	}
}

// LastUploadHandler returns the remembered submission for a tournament and
// slice kind, plus the round a scout would most likely enter next.
func (s *Server) LastUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID, err := queryIntPtr(r, "tournament_id")
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		if tournamentID == nil {
			respondError(w, http.StatusBadRequest, "validation_error", "tournament_id query parameter is required")
			return
		}

		kind := statsapi.SliceTotal
		if raw := r.URL.Query().Get("kind"); raw != "" {
			kind = statsapi.SliceKind(strings.ToUpper(raw))
			if !kind.Known() {
				respondError(w, http.StatusBadRequest, "validation_error", "kind must be TOTAL or PER90")
				return
			}
		}

		rec, err := s.Prefs.LastUpload(*tournamentID, kind)
		if err != nil {
			log.Error("Failed to load last upload", "tournamentID", *tournamentID, "error", err)
			respondError(w, http.StatusInternalServerError, "storage_error", "Could not load the upload history.")
			return
		}
		respondJSON(w, http.StatusOK, lastUploadResponse{
			Success:        true,
			Data:           rec,
			SuggestedRound: rec.SuggestedRound(),
		})
	}
}

func firstFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil
	}
	return headers[0]
}

func buildBatchView(result *upload.BatchResult) batchView {
	slots := make([]slotView, 0, len(result.Slots))
	for _, slot := range result.Slots {
		v := slotView{
			Kind:        slot.Kind,
			FileName:    slot.FileName,
			Status:      slot.Status,
			Transitions: slot.Transitions,
			Report:      slot.Report,
			DurationMS:  slot.Duration.Milliseconds(),
		}
		if slot.Err != nil {
			v.Error = slot.Err.Error()
		}
		slots = append(slots, v)
	}
	return batchView{
		ID:           result.ID,
		TournamentID: result.TournamentID,
		Season:       result.Season,
		Round:        result.Round,
		Slots:        slots,
		Succeeded:    result.Succeeded,
		Failed:       result.Failed,
		DurationMS:   result.Duration.Milliseconds(),
	}
}
