package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/couchcryptid/degree-day-etl/internal/adapter/archive"
	"github.com/couchcryptid/degree-day-etl/internal/domain"
	"github.com/couchcryptid/degree-day-etl/internal/pipeline"
)

// Multipart form field names.
const (
	fieldZip          = "zip_file"
	fieldCoordinates  = "coordinates_file"
	fieldMosquitoLife = "mosquito_life"
	fieldThreshold    = "threshold"
	fieldRequiredDD   = "requiredDD"
	fieldStartMonth   = "start_month"
	fieldEndMonth     = "end_month"
)

const multipartMemory = 32 << 20

// errBadRequest marks request problems found before the pipeline runs.
var errBadRequest = errors.New("bad request")

type uploadResponse struct {
	RunID  string          `json:"run_id"`
	Years  []int           `json:"years"`
	Rows   int             `json:"rows"`
	Report pipeline.Report `json:"report"`
}

type resultResponse struct {
	RunID      string          `json:"run_id"`
	CreatedAt  time.Time       `json:"created_at"`
	DurationMS int64           `json:"duration_ms"`
	Params     domain.Params   `json:"params"`
	Report     pipeline.Report `json:"report"`
	Years      []int           `json:"years"`
	Rows       int             `json:"rows"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in, err := s.readInput(r)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}

	res, err := s.runner.Run(r.Context(), in)
	if err != nil {
		s.writeRunError(w, r, err)
		return
	}
	s.results.Put(res)

	writeJSON(w, http.StatusOK, uploadResponse{
		RunID:  res.RunID,
		Years:  res.Output.Years(),
		Rows:   res.Output.RowCount(),
		Report: res.Report,
	})
}

func (s *Server) readInput(r *http.Request) (pipeline.Input, error) {
	var in pipeline.Input

	params, err := parseParams(r)
	if err != nil {
		return in, err
	}
	in.Params = params

	zf, zh, err := formFile(r, fieldZip, ".zip")
	if err != nil {
		return in, err
	}
	defer zf.Close()
	stations, err := archive.ReadStations(zf, zh.Size, s.opts.StationDir, s.opts.MaxExtractedBytes)
	if err != nil {
		return in, err
	}
	in.Stations = stations

	cf, _, err := formFile(r, fieldCoordinates, ".csv")
	if err != nil {
		return in, err
	}
	defer cf.Close()
	coords, err := io.ReadAll(cf)
	if err != nil {
		return in, fmt.Errorf("read %s: %w", fieldCoordinates, err)
	}
	in.Coordinates = coords

	return in, nil
}

func formFile(r *http.Request, field, ext string) (multipart.File, *multipart.FileHeader, error) {
	f, h, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, fmt.Errorf("%w: no %s selected", errBadRequest, field)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", errBadRequest, field, err)
	}
	if h.Filename == "" || !strings.HasSuffix(strings.ToLower(h.Filename), ext) {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s must be a %s file", errBadRequest, field, ext)
	}
	return f, h, nil
}

func parseParams(r *http.Request) (domain.Params, error) {
	var (
		p    domain.Params
		errs []error
	)
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{fieldMosquitoLife, &p.MosquitoLife},
		{fieldThreshold, &p.Threshold},
		{fieldRequiredDD, &p.RequiredDD},
		{fieldStartMonth, &p.StartMonth},
		{fieldEndMonth, &p.EndMonth},
	} {
		raw := strings.TrimSpace(r.FormValue(f.name))
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be an integer, got %q", f.name, raw))
			continue
		}
		*f.dst = v
	}
	if len(errs) > 0 {
		return p, fmt.Errorf("%w: %w", errBadRequest, errors.Join(errs...))
	}
	return p, nil
}

func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) || domain.IsInputError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("upload failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) handleDownload(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.results.Latest()
	if !ok || res.Output.RowCount() == 0 {
		writeError(w, http.StatusNotFound, "no data available")
		return
	}

	var buf bytes.Buffer
	if err := archive.WriteYearlyArchive(&buf, res.Output); err != nil {
		s.logger.Error("build download archive failed", "error", err, "run_id", res.RunID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="generations_%s.zip"`, res.RunID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.results.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no data available")
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{
		RunID:      res.RunID,
		CreatedAt:  res.CreatedAt,
		DurationMS: res.Duration.Milliseconds(),
		Params:     res.Params,
		Report:     res.Report,
		Years:      res.Output.Years(),
		Rows:       res.Output.RowCount(),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
