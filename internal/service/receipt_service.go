package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize     = 5 * 1024 * 1024 // 5MB
	ReceiptMaxWidth    = 1200
	ReceiptJPEGQuality = 85
	ReceiptURLExpiry   = 15 * time.Minute
	receiptContentType = "image/jpeg"
)

var (
	ErrReceiptTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptType = errors.New("invalid format. Supported: JPEG, PNG")
	ErrInvalidImageData   = errors.New("invalid image data")
)

// allowedReceiptExtensions lists the accepted upload extensions
var allowedReceiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ReceiptLink is a time-limited download link for a receipt
type ReceiptLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReceiptService stores receipt images for expenses
type ReceiptService struct {
	expenseRepo domain.ExpenseRepository
	store       storage.ObjectStore
}

// NewReceiptService creates a new ReceiptService. store may be nil when
// object storage is not configured.
func NewReceiptService(expenseRepo domain.ExpenseRepository, store storage.ObjectStore) *ReceiptService {
	return &ReceiptService{expenseRepo: expenseRepo, store: store}
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

func decodeReceipt(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedReceiptExtensions[ext] {
		return nil, ErrInvalidReceiptType
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}
	return img, nil
}

// UploadReceipt resizes the image, stores it as JPEG and attaches it to the
// expense, replacing any earlier receipt.
func (s *ReceiptService) UploadReceipt(ctx context.Context, workspaceID int32, expenseID int32, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", domain.ErrStorageNotConfigured
	}
	expense, err := s.expenseRepo.GetByID(workspaceID, expenseID)
	if err != nil {
		return "", err
	}
	previous := expense.ReceiptPath

	img, err := decodeReceipt(data, filename)
	if err != nil {
		return "", err
	}
	if img.Bounds().Dx() > ReceiptMaxWidth {
		// Height 0 keeps the aspect ratio
		img = imaging.Resize(img, ReceiptMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ReceiptJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	objectPath := fmt.Sprintf("receipts/%d/%d/%s.jpg", workspaceID, expenseID, uuid.New().String())
	path, err := s.store.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), receiptContentType, int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := s.expenseRepo.SetReceiptPath(workspaceID, expenseID, &path); err != nil {
		_ = s.store.Delete(ctx, path)
		return "", err
	}

	if previous != nil && *previous != path {
		if err := s.store.Delete(ctx, *previous); err != nil {
			log.Warn().Err(err).Str("path", *previous).Msg("Failed to delete replaced receipt")
		}
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("expense_id", expenseID).Msg("Receipt uploaded")
	return path, nil
}

// GetReceiptURL returns a presigned download link for the expense's receipt
func (s *ReceiptService) GetReceiptURL(ctx context.Context, workspaceID int32, expenseID int32) (*ReceiptLink, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrStorageNotConfigured
	}
	expense, err := s.expenseRepo.GetByID(workspaceID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.ReceiptPath == nil {
		return nil, domain.ErrReceiptNotFound
	}

	url, err := s.store.GeneratePresignedURL(ctx, *expense.ReceiptPath, ReceiptURLExpiry)
	if err != nil {
		return nil, err
	}
	return &ReceiptLink{URL: url, ExpiresAt: time.Now().Add(ReceiptURLExpiry)}, nil
}
