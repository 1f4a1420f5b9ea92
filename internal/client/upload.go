package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"connectrpc.com/connect"

	"github.com/kazz187/taskdeck/internal/file"
)

type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Upload sends files to /api/files/{folder}. Each file gets its own result
// and rejected files carry an error instead of failing the batch. When
// uploadID is set the server publishes upload.progress events for it; the
// body is buffered so its length is known.
func (c *Client) Upload(ctx context.Context, folder file.Folder, uploadID string, files ...UploadFile) (*file.UploadResponse, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := writeParts(mw, files); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/files/%s", c.baseURL, folder), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if uploadID != "" {
		req.Header.Set(file.UploadIDHeader, uploadID)
	}
	return doJSON[file.UploadResponse](c, req)
}

func writeParts(mw *multipart.Writer, files []UploadFile) error {
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, f.Body); err != nil {
			return err
		}
	}
	return mw.Close()
}

// DeleteFile removes an uploaded file by its public URL.
func (c *Client) DeleteFile(ctx context.Context, fileURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/files", nil)
	if err != nil {
		return err
	}
	q := req.URL.Query()
	q.Set("url", fileURL)
	req.URL.RawQuery = q.Encode()
	_, err = doJSON[struct{}](c, req)
	return err
}

type httpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doJSON runs a plain HTTP API call. Error bodies are turned into connect
// errors so callers check codes the same way as for RPCs.
func doJSON[T any](c *Client, req *http.Request) (*T, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var he httpError
		if err := json.NewDecoder(resp.Body).Decode(&he); err != nil {
			return nil, connect.NewError(connect.CodeUnknown, fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		var code connect.Code
		if err := code.UnmarshalText([]byte(he.Code)); err != nil {
			code = connect.CodeUnknown
		}
		return nil, connect.NewError(code, errors.New(he.Message))
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
