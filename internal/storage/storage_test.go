package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalService_PutAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	svc, err := NewLocalService(dir, "http://localhost:8000/")
	require.NoError(t, err)

	url, err := svc.Put(context.Background(), Object{
		Key:         "1700000000000.jpg",
		Body:        strings.NewReader("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/1700000000000.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, svc.Delete(context.Background(), "1700000000000.jpg"))
	_, err = os.Stat(filepath.Join(dir, "1700000000000.jpg"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, svc.Delete(context.Background(), "1700000000000.jpg"))
}

func TestLocalService_RejectsTraversal(t *testing.T) {
	svc, err := NewLocalService(t.TempDir(), "http://localhost:8000")
	require.NoError(t, err)

	for _, key := range []string{"../escape.png", "a/b.png", "", "."} {
		_, err := svc.Put(context.Background(), Object{Key: key, Body: strings.NewReader("x")})
		assert.Error(t, err, "key %q", key)
	}
}

func TestLocalService_RequiresDir(t *testing.T) {
	_, err := NewLocalService("  ", "http://localhost")
	assert.Error(t, err)
}

func TestS3Service_Addressing(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1", Credentials: aws.AnonymousCredentials{}})

	svc := NewS3Service(client, S3Options{Bucket: "journal", KeyPrefix: "/uploads/", Region: "eu-west-1"})
	assert.Equal(t, "uploads/1.png", svc.objectKey("1.png"))
	assert.Equal(t, "https://journal.s3.eu-west-1.amazonaws.com/uploads/1.png", svc.publicURL("uploads/1.png"))

	global := NewS3Service(client, S3Options{Bucket: "journal"})
	assert.Equal(t, "https://journal.s3.amazonaws.com/1.png", global.publicURL("1.png"))

	cdn := NewS3Service(client, S3Options{Bucket: "journal", PublicBaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "1.png", cdn.objectKey("1.png"))
	assert.Equal(t, "https://cdn.example.com/1.png", cdn.publicURL("1.png"))
}

func TestS3Service_RequiresBucket(t *testing.T) {
	client := s3.New(s3.Options{Region: "us-east-1", Credentials: aws.AnonymousCredentials{}})
	svc := NewS3Service(client, S3Options{})

	_, err := svc.Put(context.Background(), Object{Key: "1.png", Body: strings.NewReader("x")})
	assert.Error(t, err)
	assert.Error(t, svc.Delete(context.Background(), "1.png"))
}

type s3Request struct {
	method string
	path   string
	acl    string
	ctype  string
	body   string
}

type s3Recorder struct {
	mu       sync.Mutex
	requests []s3Request
}

func (r *s3Recorder) all() []s3Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]s3Request(nil), r.requests...)
}

func newS3TestServer(t *testing.T) (*s3.Client, *s3Recorder) {
	t.Helper()
	rec := &s3Recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, s3Request{
			method: r.Method,
			path:   r.URL.Path,
			acl:    r.Header.Get("X-Amz-Acl"),
			ctype:  r.Header.Get("Content-Type"),
			body:   string(body),
		})
		rec.mu.Unlock()
		// buckets created since 2023 have ACLs disabled
		if r.Header.Get("X-Amz-Acl") != "" {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `<Error><Code>AccessControlListNotSupported</Code><Message>The bucket does not allow ACLs</Message></Error>`)
			return
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  aws.AnonymousCredentials{},
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
	})
	return client, rec
}

func TestS3Service_PutAndDelete(t *testing.T) {
	client, rec := newS3TestServer(t)
	svc := NewS3Service(client, S3Options{Bucket: "journal", KeyPrefix: "uploads", PublicBaseURL: "https://cdn.example.com"})

	url, err := svc.Put(context.Background(), Object{
		Key:         "1.png",
		Body:        strings.NewReader("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/1.png", url)

	requests := rec.all()
	require.Len(t, requests, 1)
	put := requests[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/journal/uploads/1.png", put.path)
	assert.Empty(t, put.acl)
	assert.Equal(t, "image/png", put.ctype)
	assert.Contains(t, put.body, "png-bytes")

	require.NoError(t, svc.Delete(context.Background(), "1.png"))
	requests = rec.all()
	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodDelete, requests[1].method)
	assert.Equal(t, "/journal/uploads/1.png", requests[1].path)
}
