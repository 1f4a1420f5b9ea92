package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskdeck/internal/eventbus"
	"github.com/kazz187/taskdeck/internal/session"
	"github.com/kazz187/taskdeck/pkg/cerr"
	"github.com/kazz187/taskdeck/pkg/clog"
	"github.com/kazz187/taskdeck/pkg/storage"
)

const (
	// UploadIDHeader correlates progress events with an upload.
	UploadIDHeader = "X-Upload-Id"
	formField      = "files"
	maxFilesPerReq = 5
)

type Server struct {
	store         storage.Storage
	eventBus      *eventbus.Bus
	publicBaseURL string
	maxSize       int64
	now           func() time.Time
}

func NewServer(store storage.Storage, eventBus *eventbus.Bus, publicBaseURL string, maxSize int64) *Server {
	return &Server{
		store:         store,
		eventBus:      eventBus,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		maxSize:       maxSize,
		now:           time.Now,
	}
}

// Result is the outcome for one file of a batch.
type Result struct {
	Name  string     `json:"name"`
	URL   string     `json:"url,omitempty"`
	Path  string     `json:"path,omitempty"`
	Type  string     `json:"type,omitempty"`
	Size  int64      `json:"size"`
	Error *FileError `json:"error,omitempty"`
}

type FileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UploadResponse struct {
	Files []Result `json:"files"`
}

// APIRoutes mounts the authenticated endpoints (under /api).
func (s *Server) APIRoutes(r chi.Router) {
	r.Post("/files/{folder}", s.Upload)
	r.Delete("/files", s.Delete)
}

// URL returns the public URL of an object.
func (s *Server) URL(object string) string {
	return s.publicBaseURL + "/files/" + object
}

// objectFromURL accepts a public URL or a bare "/files/..." path.
func (s *Server) objectFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	p := path.Clean("/" + u.Path)
	if !strings.HasPrefix(p, "/files/") {
		return "", fmt.Errorf("not a file url: %s", raw)
	}
	return strings.TrimPrefix(p, "/files/"), nil
}

// Upload stores every file of a multipart batch independently; one
// rejected file does not fail the others.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := session.Require(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	folder, ok := ParseFolder(chi.URLParam(r, "folder"))
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "unknown folder", nil)
		return
	}

	var progress *progressReader
	if uploadID := r.Header.Get(UploadIDHeader); uploadID != "" {
		clog.AddAttribute(ctx, "upload.id", uploadID)
		progress = newProgressReader(r.Body, r.ContentLength, 10, func(pct int) {
			s.eventBus.Publish(progressEvent(uploadID, sess.UserID, pct))
		})
		r.Body = io.NopCloser(progress)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "expected a multipart/form-data body", err)
		return
	}

	resp := &UploadResponse{Files: []Result{}}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cerr.SetNewJSONError(ctx, cerr.Unavailable, "upload interrupted", err)
			return
		}
		if part.FormName() != formField || part.FileName() == "" {
			part.Close()
			continue
		}
		if len(resp.Files) >= maxFilesPerReq {
			resp.Files = append(resp.Files, rejected(part.FileName(), cerr.InvalidArgument, fmt.Sprintf("at most %d files per upload", maxFilesPerReq)))
			part.Close()
			continue
		}
		resp.Files = append(resp.Files, s.save(ctx, folder, sess.UserID, part))
		part.Close()
	}
	if progress != nil {
		progress.done()
	}
	clog.AddAttribute(ctx, "upload.files", len(resp.Files))
	cerr.SetJSONResponse(ctx, resp)
}

func rejected(name string, code cerr.Code, msg string) Result {
	return Result{Name: name, Error: &FileError{Code: code.String(), Message: msg}}
}

func (s *Server) save(ctx context.Context, folder Folder, userID string, part *multipart.Part) Result {
	name := part.FileName()
	data, err := io.ReadAll(io.LimitReader(part, s.maxSize+1))
	if err != nil {
		return rejected(name, cerr.Unavailable, "upload interrupted")
	}
	if int64(len(data)) > s.maxSize {
		return rejected(name, cerr.InvalidArgument, fmt.Sprintf("file is larger than %d bytes", s.maxSize))
	}
	typ := contentType(part.Header.Get("Content-Type"), data)
	if !slices.Contains(AcceptedTypes, typ) {
		return rejected(name, cerr.InvalidArgument, fmt.Sprintf("file type %q is not accepted", typ))
	}

	object := ObjectName(folder, userID, name, s.now())
	if err := s.store.Write(ctx, object, data); err != nil {
		slog.ErrorContext(ctx, "failed to store upload", "object", object, clog.ErrorAttributeKey, err)
		return rejected(name, cerr.Unavailable, "failed to store file")
	}
	return Result{Name: name, URL: s.URL(object), Path: object, Type: typ, Size: int64(len(data))}
}

// contentType trusts the declared type unless it is missing or generic.
func contentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// Delete removes an object the caller uploaded, addressed by its URL.
func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := session.Require(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	object, err := s.objectFromURL(r.URL.Query().Get("url"))
	if err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid file url", err)
		return
	}
	owner, ok := OwnerOf(object)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid file url", nil)
		return
	}
	if owner != sess.UserID {
		cerr.SetNewJSONError(ctx, cerr.PermissionDenied, "you can only delete your own files", nil)
		return
	}
	if err := s.store.Delete(ctx, object); err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageDeleteError("file", err))
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusOK, struct{}{})
}

// Serve writes an object publicly (mounted at /files/*).
func (s *Server) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	object := chi.URLParam(r, "*")
	if _, ok := OwnerOf(object); !ok {
		cerr.SetNewJSONError(ctx, cerr.NotFound, "file not found", nil)
		return
	}
	data, err := s.store.Read(ctx, object)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("file", err))
		return
	}
	typ := mime.TypeByExtension(path.Ext(object))
	if typ == "" {
		typ = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", typ)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	cerr.MarkWritten(ctx)
	http.ServeContent(w, r, path.Base(object), time.Time{}, bytes.NewReader(data))
}
