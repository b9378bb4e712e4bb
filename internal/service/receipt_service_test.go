package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
)

// createTestImage creates a test image of the specified size and format
func createTestImage(width, height int, format string) ([]byte, string) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	if format == "png" {
		png.Encode(&buf, img)
		return buf.Bytes(), "receipt.png"
	}
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
	return buf.Bytes(), "receipt.jpg"
}

func newReceiptFixture() (*ReceiptService, *testutil.MockExpenseRepository, *testutil.MockObjectStore, *domain.Expense) {
	expenses := testutil.NewMockExpenseRepository()
	store := testutil.NewMockObjectStore()
	e := &domain.Expense{WorkspaceID: 1, Amount: money("10"), Date: d(2026, 3, 1), Description: "Groceries"}
	expenses.AddExpense(e)
	return NewReceiptService(expenses, store), expenses, store, e
}

func TestUploadReceipt_ResizesWideImages(t *testing.T) {
	svc, _, store, e := newReceiptFixture()
	data, filename := createTestImage(2400, 600, "png")

	path, err := svc.UploadReceipt(context.Background(), 1, e.ID, data, filename)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(path, "receipts/1/") || !strings.HasSuffix(path, ".jpg") {
		t.Errorf("unexpected object path %q", path)
	}
	if store.Types[path] != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", store.Types[path])
	}

	stored, err := jpeg.Decode(bytes.NewReader(store.Objects[path]))
	if err != nil {
		t.Fatalf("stored object is not a jpeg: %v", err)
	}
	if w, h := stored.Bounds().Dx(), stored.Bounds().Dy(); w != ReceiptMaxWidth || h != 300 {
		t.Errorf("expected 1200x300, got %dx%d", w, h)
	}
	if e.ReceiptPath == nil || *e.ReceiptPath != path {
		t.Errorf("receipt path not attached to expense")
	}
}

func TestUploadReceipt_ReplacesPreviousObject(t *testing.T) {
	svc, _, store, e := newReceiptFixture()
	data, filename := createTestImage(100, 100, "jpeg")

	first, err := svc.UploadReceipt(context.Background(), 1, e.ID, data, filename)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.UploadReceipt(context.Background(), 1, e.ID, data, filename)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := store.Objects[first]; ok {
		t.Errorf("expected first receipt to be deleted")
	}
	if _, ok := store.Objects[second]; !ok {
		t.Errorf("expected second receipt to be stored")
	}
}

func TestUploadReceipt_Rejects(t *testing.T) {
	svc, _, store, e := newReceiptFixture()
	small, _ := createTestImage(10, 10, "jpeg")

	tests := []struct {
		name     string
		data     []byte
		filename string
		want     error
	}{
		{"too large", make([]byte, MaxReceiptSize+1), "big.jpg", ErrReceiptTooLarge},
		{"bad extension", small, "receipt.gif", ErrInvalidReceiptType},
		{"not an image", []byte("hello"), "receipt.jpg", ErrInvalidImageData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadReceipt(context.Background(), 1, e.ID, tt.data, tt.filename)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if len(store.Objects) != 0 {
		t.Errorf("expected nothing stored, got %d objects", len(store.Objects))
	}
}

func TestUploadReceipt_OtherWorkspace(t *testing.T) {
	svc, _, _, e := newReceiptFixture()
	data, filename := createTestImage(100, 100, "jpeg")

	_, err := svc.UploadReceipt(context.Background(), 2, e.ID, data, filename)
	if !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestReceipt_StorageNotConfigured(t *testing.T) {
	expenses := testutil.NewMockExpenseRepository()
	svc := NewReceiptService(expenses, nil)

	if svc.IsEnabled() {
		t.Errorf("expected receipts to be disabled")
	}
	if _, err := svc.UploadReceipt(context.Background(), 1, 1, nil, "a.jpg"); !errors.Is(err, domain.ErrStorageNotConfigured) {
		t.Errorf("expected ErrStorageNotConfigured, got %v", err)
	}
	if _, err := svc.GetReceiptURL(context.Background(), 1, 1); !errors.Is(err, domain.ErrStorageNotConfigured) {
		t.Errorf("expected ErrStorageNotConfigured, got %v", err)
	}
}

func TestGetReceiptURL(t *testing.T) {
	svc, _, _, e := newReceiptFixture()

	if _, err := svc.GetReceiptURL(context.Background(), 1, e.ID); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Errorf("expected ErrReceiptNotFound, got %v", err)
	}

	data, filename := createTestImage(100, 100, "jpeg")
	path, err := svc.UploadReceipt(context.Background(), 1, e.ID, data, filename)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	link, err := svc.GetReceiptURL(context.Background(), 1, e.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(link.URL, path) {
		t.Errorf("expected URL to reference %q, got %q", path, link.URL)
	}
}
