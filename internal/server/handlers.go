// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pdfdesk/internal/desk"
	"github.com/pdiddy/pdfdesk/internal/errinfo"
	"github.com/pdiddy/pdfdesk/internal/httputil"
	"github.com/pdiddy/pdfdesk/internal/intake"
	"github.com/pdiddy/pdfdesk/internal/logging"
	"github.com/pdiddy/pdfdesk/internal/metrics"
	"github.com/pdiddy/pdfdesk/internal/vault"
	"github.com/pdiddy/pdfdesk/pkg/types"
)

// uploadField is the multipart field carrying files.
const uploadField = "file"

// CommandResponse is the reply to every desk command: what the command
// produced and the desk state after it.
type CommandResponse struct {
	Result desk.Result `json:"result"`
	Desk   desk.View   `json:"desk"`
}

// ReorderRequest is the body of the reorder endpoint.
type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// DragRequest is the body of the drag endpoint. Phase is start, over, drop
// or end; Index is the dragged item for start and the hovered item
// otherwise.
type DragRequest struct {
	Phase     string  `json:"phase"`
	Index     int     `json:"index"`
	PointerX  float64 `json:"pointer_x"`
	ItemLeft  float64 `json:"item_left"`
	ItemWidth float64 `json:"item_width"`
}

// ProcessRequest is the body of the process endpoint. With Wait set the
// reply is sent once the transformation settles.
type ProcessRequest struct {
	Input string `json:"input"`
	Wait  bool   `json:"wait"`
}

// CredentialsRequest is the body of the credentials endpoint. Absent fields
// are left unchanged.
type CredentialsRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"desks":  s.desks.Len(),
	})
}

func (s *Server) handleCreateDesk(w http.ResponseWriter, r *http.Request) {
	d := s.desks.Create()
	httputil.WriteJSON(w, http.StatusCreated, d.View())
}

func (s *Server) handleGetDesk(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d.View())
}

func (s *Server) handleDeleteDesk(w http.ResponseWriter, r *http.Request) {
	if err := s.desks.Delete(r.PathValue("id")); err != nil {
		httputil.WriteMessage(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFiles(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	tool, ok := toolParam(w, r)
	if !ok {
		return
	}
	files, err := s.readUpload(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.dispatch(w, r, d, desk.AddFiles{Tool: tool, Files: files})
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	tool, ok := toolParam(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		httputil.WriteError(w, errinfo.Validation("Invalid file index %q.", r.PathValue("index")))
		return
	}
	s.dispatch(w, r, d, desk.RemoveFile{Tool: tool, Index: index})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	tool, ok := toolParam(w, r)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	s.dispatch(w, r, d, desk.Reorder{Tool: tool, From: req.From, To: req.To})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	tool, ok := toolParam(w, r)
	if !ok {
		return
	}
	var req DragRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var cmd desk.Command
	switch req.Phase {
	case "start":
		cmd = desk.DragStart{Tool: tool, Index: req.Index}
	case "over":
		cmd = desk.DragOver{Tool: tool, Target: req.Index, PointerX: req.PointerX, ItemLeft: req.ItemLeft, ItemWidth: req.ItemWidth}
	case "drop":
		cmd = desk.Drop{Tool: tool, Target: req.Index}
	case "end":
		cmd = desk.DragEnd{Tool: tool}
	case string(intake.DragEnter), string(intake.DragOverTarget), string(intake.DragLeave):
		cmd = desk.DropTarget{Tool: tool, Event: intake.DropTargetEvent(req.Phase)}
	default:
		httputil.WriteError(w, errinfo.Validation("Unknown drag phase %q.", req.Phase))
		return
	}
	s.dispatch(w, r, d, cmd)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	tool, ok := toolParam(w, r)
	if !ok {
		return
	}
	var req ProcessRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := d.Dispatch(r.Context(), desk.Process{Tool: tool, Input: req.Input})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !req.Wait {
		httputil.WriteJSON(w, http.StatusAccepted, CommandResponse{Result: res, Desk: d.View()})
		return
	}

	select {
	case err = <-res.Done:
	case <-r.Context().Done():
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CommandResponse{Result: res, Desk: d.View()})
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	var req CredentialsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Email != nil {
		if _, err := d.Dispatch(r.Context(), desk.SetEmail{Value: *req.Email}); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if req.Password != nil {
		if _, err := d.Dispatch(r.Context(), desk.SetPassword{Value: *req.Password}); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, CommandResponse{Desk: d.View()})
}

func (s *Server) handleGateAction(w http.ResponseWriter, r *http.Request) {
	d, ok := s.desk(w, r)
	if !ok {
		return
	}
	cmd, err := desk.GateAction(r.PathValue("action"))
	if err != nil {
		httputil.WriteMessage(w, http.StatusNotFound, errinfo.Message(err, "unknown action"))
		return
	}
	s.dispatch(w, r, d, cmd)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	a, err := s.downloads.Redeem(r.PathValue("token"))
	if err != nil {
		metrics.RecordDownload(false)
		code := http.StatusNotFound
		if errors.Is(err, vault.ErrExpired) || errors.Is(err, vault.ErrGone) {
			code = http.StatusGone
		}
		logging.WithContext(r.Context()).Info("download refused", zap.Error(err))
		httputil.WriteMessage(w, code, downloadMessage(err))
		return
	}

	metrics.RecordDownload(true)
	mimeType := a.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Payload)))
	w.WriteHeader(http.StatusOK)
	w.Write(a.Payload)
}

func downloadMessage(err error) string {
	switch {
	case errors.Is(err, vault.ErrExpired), errors.Is(err, vault.ErrGone):
		return err.Error()
	default:
		return vault.ErrInvalidToken.Error()
	}
}

// dispatch runs cmd and writes the command response.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, d *desk.Desk, cmd desk.Command) {
	res, err := d.Dispatch(r.Context(), cmd)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CommandResponse{Result: res, Desk: d.View()})
}

func (s *Server) desk(w http.ResponseWriter, r *http.Request) (*desk.Desk, bool) {
	d, err := s.desks.Get(r.PathValue("id"))
	if err != nil {
		httputil.WriteMessage(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return d, true
}

func toolParam(w http.ResponseWriter, r *http.Request) (types.ToolID, bool) {
	id, ok := types.ParseToolID(r.PathValue("tool"))
	if !ok {
		httputil.WriteMessage(w, http.StatusNotFound, fmt.Sprintf("unknown tool %q", r.PathValue("tool")))
		return "", false
	}
	return id, true
}

// readUpload reads every part of the multipart field "file". The MIME type
// is the one declared by the part, falling back to the file extension and
// then to content sniffing.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]types.SelectableFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errinfo.Validation("Expected a multipart upload: %v", err)
	}

	var files []types.SelectableFile
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errinfo.Validation("Reading upload: %v", err)
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, errinfo.Validation("Reading %s: %v", part.FileName(), err)
		}
		files = append(files, types.SelectableFile{
			Name:     part.FileName(),
			MIMEType: detectMIME(part.FileName(), part.Header.Get("Content-Type"), data),
			Data:     data,
		})
	}
	if len(files) == 0 {
		return nil, errinfo.Validation("No files were uploaded.")
	}
	return files, nil
}

func detectMIME(name, declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if t := types.MIMETypeByName(name); t != "" {
		return t
	}
	t, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return t
}
