package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/file"
	"github.com/moodmoney/quota/pkg/logger"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/plans"
	"github.com/moodmoney/quota/pkg/response"
)

const (
	receiptField = "image"
	// multipartOverhead leaves room for boundaries and headers.
	multipartOverhead = 1 << 20
)

type scannedReceipt struct {
	Receipt    *openai.Receipt `json:"receipt"`
	ReceiptKey string          `json:"receiptKey"`
}

// scanReceipt stores the uploaded image and parses it. An image that cannot
// be parsed is deleted again and the scan is not counted.
func (a *api) scanReceipt(w http.ResponseWriter, r *http.Request) {
	if a.Files == nil || a.Receipts == nil {
		unavailableHandler(w, r)
		return
	}

	data, err := readUpload(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	contentType, err := file.DetectImage(data)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	key := file.ReceiptKey(userID, contentType)
	var receipt *openai.Receipt

	out, err := a.Gate.Run(r.Context(), userID, plans.FeatureReceipt, func(ctx context.Context) error {
		if err := a.Files.Put(ctx, key, contentType, data); err != nil {
			return err
		}
		parsed, err := a.Receipts.ParseReceipt(ctx, contentType, data)
		if err != nil {
			a.discard(ctx, key)
			return err
		}
		receipt = parsed
		return nil
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, scannedReceipt{Receipt: receipt, ReceiptKey: key}, usageMeta(out))
}

func (a *api) discard(ctx context.Context, key string) {
	if err := a.Files.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, file.ErrFileNotFound) {
		a.log.WarnContext(ctx, "failed to delete unparsed receipt",
			slog.String("key", key),
			logger.Error(err),
		)
	}
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, file.MaxReceiptSize+multipartOverhead)

	f, _, err := r.FormFile(receiptField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, multipart.ErrMessageTooLarge):
			return nil, file.ErrFileTooLarge
		case errors.Is(err, http.ErrMissingFile):
			return nil, response.ErrBadRequest.WithMessage("multipart field \"image\" is required")
		case errors.Is(err, http.ErrNotMultipart):
			return nil, response.ErrUnsupportedMedia.WithMessage("expected a multipart/form-data upload")
		default:
			return nil, response.ErrBadRequest.WithMessage("unreadable upload")
		}
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, file.MaxReceiptSize+1))
	if err != nil {
		return nil, response.ErrBadRequest.WithMessage("unreadable upload")
	}
	return data, nil
}
