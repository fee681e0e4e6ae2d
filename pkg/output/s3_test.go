package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// mockS3 records uploads instead of sending them
type mockS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (m *mockS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("upload without deadline")
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.inputs = append(m.inputs, input)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestS3Publisher_PublishFrame(t *testing.T) {
	mock := &mockS3{}
	logger := &recordingLogger{}
	publisher := NewS3PublisherWithClient(mock, "renders", "runs/cornell", logger)

	data := []byte("png bytes")
	if err := publisher.PublishFrame(context.Background(), 3, data); err != nil {
		t.Fatalf("PublishFrame() error: %v", err)
	}

	if len(mock.inputs) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(mock.inputs))
	}
	input := mock.inputs[0]
	if aws.StringValue(input.Bucket) != "renders" {
		t.Errorf("Bucket = %q", aws.StringValue(input.Bucket))
	}
	if aws.StringValue(input.Key) != "runs/cornell/frame_0003.png" {
		t.Errorf("Key = %q", aws.StringValue(input.Key))
	}
	if aws.StringValue(input.ContentType) != "image/png" {
		t.Errorf("ContentType = %q", aws.StringValue(input.ContentType))
	}
	if aws.Int64Value(input.ContentLength) != int64(len(data)) {
		t.Errorf("ContentLength = %d", aws.Int64Value(input.ContentLength))
	}
	if string(mock.bodies[0]) != "png bytes" {
		t.Errorf("Body = %q", mock.bodies[0])
	}
	if len(logger.lines) != 1 {
		t.Errorf("Expected one log line, got %v", logger.lines)
	}
}

func TestS3Publisher_FrameKeyWithoutPrefix(t *testing.T) {
	publisher := NewS3PublisherWithClient(&mockS3{}, "b", "", nil)
	if got := publisher.FrameKey(12); got != "frame_0012.png" {
		t.Errorf("FrameKey() = %q", got)
	}
}

func TestS3Publisher_UploadError(t *testing.T) {
	uploadErr := errors.New("access denied")
	publisher := NewS3PublisherWithClient(&mockS3{err: uploadErr}, "b", "", nil)

	err := publisher.PublishFrame(context.Background(), 1, []byte("x"))
	if !errors.Is(err, uploadErr) {
		t.Errorf("PublishFrame() error = %v, want wrapped upload error", err)
	}
}

func TestNewS3Publisher_RequiresBucket(t *testing.T) {
	if _, err := NewS3Publisher(S3Config{Region: "us-east-1"}, nil); err == nil {
		t.Error("Expected error without bucket")
	}
}

func TestNewS3Publisher(t *testing.T) {
	publisher, err := NewS3Publisher(S3Config{
		Bucket:    "renders",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "frames",
	}, nil)
	if err != nil {
		t.Fatalf("NewS3Publisher() error: %v", err)
	}
	if got := publisher.FrameKey(1); got != "frames/frame_0001.png" {
		t.Errorf("FrameKey() = %q", got)
	}
}
