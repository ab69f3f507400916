package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"demo.vgv", "text/plain; charset=utf-8"},
		{"player.HTML", "text/html; charset=utf-8"},
		{"out.mp4", "video/mp4"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.name); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"out.mp4", "out.mp4", false},
		{"a/./b/../c.vgv", "a/c.vgv", false},
		{`dir\file.html`, "dir/file.html", false},
		{"", "", true},
		{"/etc/passwd", "", true},
		{"../escape", "", true},
		{"a/../..", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("CleanKey(%q) error = %v, want ErrInvalidKey", tt.key, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("CleanKey(%q) = %q, %v, want %q", tt.key, got, err, tt.want)
			}
		})
	}
}

func TestDiskStore_PutAndGet(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	content := []byte("vgv1\nI500\t10\t10\twhite\n")
	loc, err := store.Put(context.Background(), "streams/demo.vgv", "text/plain", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if filepath.Base(loc) != "demo.vgv" {
		t.Errorf("location = %q", loc)
	}

	obj, err := store.Get("streams/demo.vgv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer obj.Close()

	if obj.ContentType != "text/plain" || obj.Size != int64(len(content)) {
		t.Errorf("object = %s %d bytes", obj.ContentType, obj.Size)
	}
	data, err := io.ReadAll(obj.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestDiskStore_TooLarge(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 4)
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.Put(context.Background(), "big.mp4", "video/mp4", strings.NewReader("12345"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Put() error = %v, want ErrTooLarge", err)
	}
	if _, err := store.Get("big.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("store left %d files behind", len(entries))
	}

	if _, err := store.Put(context.Background(), "ok.mp4", "video/mp4", strings.NewReader("1234")); err != nil {
		t.Errorf("Put() at the limit error = %v", err)
	}
}

func TestDiskStore_DeleteAndCleanup(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := store.Put(ctx, "a.html", "text/html", strings.NewReader("a")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("a.html"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete("a.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	loc, err := store.Put(ctx, "old/b.mp4", "video/mp4", strings.NewReader("b"))
	if err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(loc, old, old); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put(ctx, "new.mp4", "video/mp4", strings.NewReader("c")); err != nil {
		t.Fatal(err)
	}

	if err := store.Cleanup(time.Hour); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := store.Get("old/b.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired object still present: %v", err)
	}
	obj, err := store.Get("new.mp4")
	if err != nil {
		t.Fatalf("fresh object removed: %v", err)
	}
	obj.Close()
}

func TestDiskStore_CancelledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "x.vgv", "", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Put() error = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3Store(fake, "renders", WithPrefix("vgv/"))
	store.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	loc, err := store.Put(context.Background(), "demo/out.mp4", "video/mp4", strings.NewReader("frames"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if loc != "s3://renders/vgv/demo/out.mp4" {
		t.Errorf("location = %q", loc)
	}

	in := fake.input
	if aws.ToString(in.Bucket) != "renders" || aws.ToString(in.Key) != "vgv/demo/out.mp4" {
		t.Errorf("put %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "video/mp4" || aws.ToInt64(in.ContentLength) != 6 {
		t.Errorf("content = %s, %d bytes", aws.ToString(in.ContentType), aws.ToInt64(in.ContentLength))
	}
	if in.Metadata["upload-time"] != "2024-01-02T03:04:05Z" {
		t.Errorf("metadata = %v", in.Metadata)
	}
	if string(fake.body) != "frames" {
		t.Errorf("body = %q", fake.body)
	}
}

func TestS3Store_Errors(t *testing.T) {
	boom := errors.New("access denied")
	store := NewS3Store(&fakeS3{err: boom}, "b")
	if _, err := store.Put(context.Background(), "k", "", strings.NewReader("x")); !errors.Is(err, boom) {
		t.Errorf("Put() error = %v, want wrapped client error", err)
	}

	limited := NewS3Store(&fakeS3{}, "b", WithMaxSize(2))
	if _, err := limited.Put(context.Background(), "k", "", strings.NewReader("xyz")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Put() error = %v, want ErrTooLarge", err)
	}

	if _, err := store.Put(context.Background(), "../k", "", strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Put() error = %v, want ErrInvalidKey", err)
	}
}

func TestFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "player.html")
	if err := os.WriteFile(src, []byte("<!DOCTYPE html>"), 0644); err != nil {
		t.Fatal(err)
	}
	fake := &fakeS3{}
	loc, err := File(context.Background(), NewS3Store(fake, "b"), src, "")
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if loc != "s3://b/player.html" || aws.ToString(fake.input.ContentType) != "text/html; charset=utf-8" {
		t.Errorf("File() = %q, %s", loc, aws.ToString(fake.input.ContentType))
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Config{
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "AKID",
		SecretAccessKey: "secret",
	})
	opts := c.Options()
	if opts.Region != "eu-west-1" || !opts.UsePathStyle || aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("options = %+v", opts)
	}
	creds, err := opts.Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "AKID" {
		t.Errorf("credentials = %+v, %v", creds, err)
	}
}
