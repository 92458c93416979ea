package nativemsg

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Request is a send request from the browser extension.
type Request struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Response reports the outcome of a request back to the extension.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Host serves send requests over a native messaging stream. Each
// request is handled synchronously; the extension waits for the
// response before sending the next one.
type Host struct {
	In     io.Reader
	Out    io.Writer
	Send   func(ctx context.Context, article *kindlebeam.Article) error
	Logger *slog.Logger
}

// Run processes requests until the stream closes or ctx is canceled.
// A request that fails produces an error response, not a host exit.
func (h *Host) Run(ctx context.Context) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := ReadMessage(h.In)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		resp := h.handle(ctx, logger, payload)
		if err := WriteMessage(h.Out, resp); err != nil {
			return err
		}
	}
}

func (h *Host) handle(ctx context.Context, logger *slog.Logger, payload []byte) Response {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		logger.Error("malformed request", "error", err)
		return Response{Success: false, Error: "malformed request", Code: kindlebeam.EINVALID}
	}

	article := &kindlebeam.Article{
		Title:   req.Title,
		Content: req.Content,
		URL:     req.URL,
	}

	logger.Info("send requested", "title", article.DisplayTitle(), "url", article.URL)

	if err := h.Send(ctx, article); err != nil {
		logger.Error("send failed", "url", article.URL, "error", err)
		return Response{
			Success: false,
			Error:   kindlebeam.ErrorMessage(err),
			Code:    kindlebeam.ErrorCode(err),
		}
	}

	logger.Info("send succeeded", "url", article.URL)
	return Response{Success: true}
}
