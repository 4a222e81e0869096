package util

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrInvalidDataURL = errors.New("invalid data url")

var sanitizeRe = regexp.MustCompile(`[^a-z0-9_\-]`)

// NewGCSClient talks to STORAGE_EMULATOR_HOST when it is set.
func NewGCSClient(ctx context.Context) (*storage.Client, error) {
	if host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		return storage.NewClient(ctx,
			option.WithEndpoint(strings.TrimSuffix(host, "/")+"/storage/v1/"),
			option.WithoutAuthentication(),
		)
	}
	return storage.NewClient(ctx)
}

var newGCSClientHook = NewGCSClient

// IsDataURL reports whether s is a base64 data URL such as a captured signature.
func IsDataURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "data:") && strings.Contains(s, ";base64,")
}

// DecodeDataURL splits "data:<mime>;base64,<payload>" into its bytes and mime type.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if !IsDataURL(s) {
		return nil, "", ErrInvalidDataURL
	}
	header, payload, _ := strings.Cut(s, ",")
	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if mime == "" {
		mime = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return data, mime, nil
}

// UploadBase64ToGCS stores a data URL payload and returns its gs:// URL and size.
func UploadBase64ToGCS(ctx context.Context, dataURL, bucketName, objectName string) (string, int64, error) {
	data, mime, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", 0, err
	}

	client, err := newGCSClientHook(ctx)
	if err != nil {
		return "", 0, err
	}
	defer client.Close()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = mime

	n, err := w.Write(data)
	if err != nil {
		_ = w.Close()
		return "", 0, err
	}
	if err := w.Close(); err != nil {
		return "", 0, err
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), int64(n), nil
}

// ReadGCSObject downloads the object behind a gs:// URL.
func ReadGCSObject(ctx context.Context, gsURL string) ([]byte, string, error) {
	bucket, objectPath, err := ParseGSURL(gsURL)
	if err != nil {
		return nil, "", err
	}

	client, err := newGCSClientHook(ctx)
	if err != nil {
		return nil, "", err
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", err
	}
	return data, strings.TrimSpace(rc.ContentType()), nil
}

func ParseGSURL(gsURL string) (bucket string, objectPath string, err error) {
	gsURL = strings.TrimSpace(gsURL)
	if gsURL == "" {
		return "", "", fmt.Errorf("empty gs url")
	}
	if !strings.HasPrefix(gsURL, "gs://") {
		return "", "", fmt.Errorf("invalid gs url (must start with gs://): %s", gsURL)
	}

	bucket, objectPath, ok := strings.Cut(strings.TrimPrefix(gsURL, "gs://"), "/")
	bucket = strings.TrimSpace(bucket)
	objectPath = strings.TrimSpace(objectPath)
	if !ok || bucket == "" || objectPath == "" {
		return "", "", fmt.Errorf("invalid gs url format: %s", gsURL)
	}
	return bucket, objectPath, nil
}

func SanitizePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRe.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

// SignaturePrefix is the folder holding one subject's signatures for a form.
func SignaturePrefix(formID, subjectType, subjectID string) string {
	return fmt.Sprintf("signatures/%s/%s_%s",
		SanitizePart(formID), SanitizePart(subjectType), SanitizePart(subjectID))
}
