package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-chi/chi/v5"

	merrors "github.com/matzehuels/markstack/pkg/errors"
	mio "github.com/matzehuels/markstack/pkg/io"
	"github.com/matzehuels/markstack/pkg/jobs"
	"github.com/matzehuels/markstack/pkg/pipeline"
	"github.com/matzehuels/markstack/pkg/presets"
)

const (
	maxRequestBody = 1 << 20
	browseMaxFiles = 10
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string       `json:"error"`
	Code  merrors.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := merrors.GetCode(err)
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		code = merrors.ErrCodeNotFound
	case errors.Is(err, os.ErrPermission):
		code = merrors.ErrCodeInvalidPath
	case code == "":
		code = merrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: merrors.UserMessage(err), Code: code})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, os.ErrPermission):
		return http.StatusForbidden
	}
	switch merrors.GetCode(err) {
	case merrors.ErrCodeInvalidInput, merrors.ErrCodeInvalidColor, merrors.ErrCodeInvalidPosition,
		merrors.ErrCodeInvalidPattern, merrors.ErrCodeInvalidPreset, merrors.ErrCodeInvalidPath,
		merrors.ErrCodeMissingMarkSource, merrors.ErrCodeNotFound, merrors.ErrCodeFileNotFound,
		merrors.ErrCodeImageDecode:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return merrors.Wrap(merrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// =============================================================================
// Presets and jobs
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type presetInfo struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]presetInfo, len(s.presets))
	for name, p := range s.presets {
		out[name] = presetInfo{Description: p.Description, Type: p.Kind()}
	}
	writeJSON(w, http.StatusOK, out)
}

// ExecuteRequest starts a multi-folder batch.
type ExecuteRequest struct {
	BaseInput  string          `json:"base_input"`
	BaseOutput string          `json:"base_output"`
	Config     string          `json:"config"`
	Parallel   int             `json:"parallel,omitempty"`
	Workers    int             `json:"workers,omitempty"`
	DryRun     bool            `json:"dry_run,omitempty"`
	Overrides  *presets.Preset `json:"overrides,omitempty"`
	// Async returns 202 with the queued job instead of waiting for it.
	Async bool `json:"async,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.BaseInput == "" || req.BaseOutput == "" || req.Config == "" {
		s.writeError(w, r, merrors.New(merrors.ErrCodeInvalidInput, "missing required fields: base_input, base_output, config"))
		return
	}

	preset, err := s.presets.Get(req.Config)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Overrides != nil {
		preset = preset.Merge(*req.Overrides)
	}

	opts := pipeline.FolderOptions{
		BaseInput:  req.BaseInput,
		BaseOutput: req.BaseOutput,
		Preset:     req.Config,
		Parallel:   req.Parallel,
		Workers:    req.Workers,
		DryRun:     req.DryRun,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	runCtx := r.Context()
	if req.Async {
		runCtx = s.base
	}
	engine, err := s.runner.PresetEngine(runCtx, preset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job := jobs.New(req.Config, req.BaseInput, req.BaseOutput)
	job.DryRun = req.DryRun
	if err := s.jobs.Create(r.Context(), job); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("job accepted", "job", job.ID, "preset", req.Config, "input", req.BaseInput)

	run := func(ctx context.Context) {
		job.Start()
		s.saveJob(ctx, job)
		reports, err := s.runner.RunFolders(ctx, engine, opts)
		job.Finish(reports, err)
		s.saveJob(context.WithoutCancel(ctx), job)
		s.logger.Info("job finished", "job", job.ID, "status", job.Status,
			"succeeded", job.Succeeded, "failed", job.Failed)
	}

	if req.Async {
		snapshot := *job
		go run(s.base)
		writeJSON(w, http.StatusAccepted, &snapshot)
		return
	}
	run(r.Context())
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) saveJob(ctx context.Context, job *jobs.Job) {
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("save job", "job", job.ID, "err", err)
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.List(r.Context(), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*jobs.Job{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// =============================================================================
// Folder helpers
// =============================================================================

type validateRequest struct {
	BaseInput  string `json:"base_input"`
	BaseOutput string `json:"base_output"`
}

type pathStatus struct {
	Exists         bool     `json:"exists"`
	IsDir          bool     `json:"is_dir"`
	CanCreate      *bool    `json:"can_create,omitempty"`
	Subfolders     []string `json:"subfolders,omitempty"`
	SubfolderCount *int     `json:"subfolder_count,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type validateResponse struct {
	BaseInput  pathStatus `json:"base_input"`
	BaseOutput pathStatus `json:"base_output"`
}

func statPath(p string) pathStatus {
	if p == "" {
		return pathStatus{}
	}
	info, err := os.Stat(p)
	if err != nil {
		return pathStatus{}
	}
	return pathStatus{Exists: true, IsDir: info.IsDir()}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := validateResponse{BaseInput: statPath(req.BaseInput), BaseOutput: statPath(req.BaseOutput)}
	canCreate := true
	resp.BaseOutput.CanCreate = &canCreate

	if resp.BaseInput.IsDir {
		subs, err := mio.Subdirs(req.BaseInput)
		if err != nil {
			resp.BaseInput.Error = merrors.UserMessage(err)
		} else {
			n := len(subs)
			resp.BaseInput.Subfolders = subs
			resp.BaseInput.SubfolderCount = &n
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type folderRequest struct {
	FolderPath string `json:"folder_path"`
}

type browseResponse struct {
	FolderName  string   `json:"folder_name"`
	FullPath    string   `json:"full_path"`
	ParentDir   *string  `json:"parent_dir"`
	Folders     []string `json:"folders"`
	Files       []string `json:"files"`
	FolderCount int      `json:"folder_count"`
	FileCount   int      `json:"file_count"`
}

// requireDir cleans p and checks that it is an existing directory.
func requireDir(p string) (string, error) {
	p = filepath.Clean(p)
	info, err := os.Stat(p)
	if err != nil {
		if os.IsPermission(err) {
			return "", err
		}
		return "", merrors.New(merrors.ErrCodeInvalidPath, "path does not exist")
	}
	if !info.IsDir() {
		return "", merrors.New(merrors.ErrCodeInvalidPath, "path is not a directory")
	}
	return p, nil
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.FolderPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.FolderPath = wd
	}
	dir, err := requireDir(req.FolderPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := browseResponse{FullPath: dir, Folders: []string{}, Files: []string{}}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			resp.Folders = append(resp.Folders, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	sort.Strings(resp.Folders)
	sort.Strings(files)
	resp.FolderCount = len(resp.Folders)
	resp.FileCount = len(files)
	resp.Files = append(resp.Files, files[:min(len(files), browseMaxFiles)]...)

	if parent := filepath.Dir(dir); parent != dir {
		resp.ParentDir = &parent
		resp.FolderName = filepath.Base(dir)
	} else {
		resp.FolderName = dir
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFolderName(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.FolderPath == "" {
		s.writeError(w, r, merrors.New(merrors.ErrCodeInvalidInput, "no folder path provided"))
		return
	}
	dir, err := requireDir(req.FolderPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"folder_name": filepath.Base(dir),
		"full_path":   dir,
	})
}
