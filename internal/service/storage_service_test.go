package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"quizhub_backend/internal/util"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type captureProvider struct {
	filename    string
	contentType string
	data        []byte
}

func (p *captureProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	p.filename = filename
	p.contentType = contentType
	p.data = data
	return p.GetURL(filename), nil
}

func (p *captureProvider) Delete(ctx context.Context, filename string) error { return nil }

func (p *captureProvider) GetURL(filename string) string { return "/uploads/" + filename }

func TestSaveQuestionMediaSniffsType(t *testing.T) {
	provider := &captureProvider{}
	svc := NewMediaService(provider)

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 600)...)
	url, err := svc.SaveQuestionMedia(context.Background(), "diagram.png", bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if provider.contentType != "image/png" {
		t.Fatalf("sniffed type %q, want image/png", provider.contentType)
	}
	if !strings.HasPrefix(provider.filename, "questions/") || !strings.HasSuffix(provider.filename, ".png") {
		t.Fatalf("unexpected object name %q", provider.filename)
	}
	// 嗅探读掉的头部字节必须原样进入存储
	if !bytes.Equal(provider.data, payload) {
		t.Fatalf("stored %d bytes, want %d", len(provider.data), len(payload))
	}
	if url != provider.GetURL(provider.filename) {
		t.Fatalf("returned url %q does not match provider", url)
	}
}

func TestSaveQuestionMediaRejectsUnknownType(t *testing.T) {
	provider := &captureProvider{}
	svc := NewMediaService(provider)

	payload := []byte("just some plain text, not media")
	_, err := svc.SaveQuestionMedia(context.Background(), "notes.txt", bytes.NewReader(payload), int64(len(payload)))
	if err == nil || !util.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.filename != "" {
		t.Fatal("rejected upload must not reach the provider")
	}
}

func TestSaveQuestionMediaDropsForeignImageExtension(t *testing.T) {
	provider := &captureProvider{}
	svc := NewMediaService(provider)

	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 16)...)
	if _, err := svc.SaveQuestionMedia(context.Background(), "upload.php", bytes.NewReader(payload), int64(len(payload))); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got := provider.filename; strings.Contains(got[len("questions/"):], ".") {
		t.Fatalf("foreign extension kept on image object %q", got)
	}
}
