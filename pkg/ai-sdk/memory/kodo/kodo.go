package kodo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
)

const (
	DefaultRegion = "cn-east-1"
	DefaultPrefix = "agent-threads/"
)

// Store keeps each thread as one JSON object in a Kodo bucket, addressed through Kodo's
// S3-compatible API.
type Store struct {
	client s3iface.S3API
	bucket string
	prefix string
}

type Opts struct {
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint defaults to https://s3.<region>.qiniucs.com.
	Endpoint string
	Prefix   string
}

// DefaultEndpoint is the S3-compatible endpoint of a Kodo region.
func DefaultEndpoint(region string) string {
	return fmt.Sprintf("https://s3.%s.qiniucs.com", region)
}

func New(opts Opts) (*Store, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint(region)
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kodo session: %w", err)
	}

	return NewWithClient(s3.New(sess), opts), nil
}

func NewWithClient(client s3iface.S3API, opts Opts) *Store {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Store{
		client: client,
		bucket: opts.Bucket,
		prefix: prefix,
	}
}

func (s *Store) objectKey(threadID string) string {
	return s.prefix + threadID + ".json"
}

func (s *Store) SaveConversation(ctx context.Context, conversation types.Conversation) error {
	if conversation.ID == "" {
		return types.ErrInvalidMessage
	}

	conversation.Touch(time.Now())

	payload, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(conversation.ID)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload conversation: %w", err)
	}

	return nil
}

func (s *Store) GetConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(threadID)),
	})
	if err != nil {
		if isNotFound(err) {
			return types.Conversation{ID: threadID}, nil
		}

		return types.Conversation{}, fmt.Errorf("failed to download conversation: %w", err)
	}
	defer result.Body.Close()

	payload, err := io.ReadAll(result.Body)
	if err != nil {
		return types.Conversation{}, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conversation types.Conversation
	if err := json.Unmarshal(payload, &conversation); err != nil {
		return types.Conversation{}, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return conversation, nil
}

func isNotFound(err error) bool {
	var awsErr awserr.Error
	if !errors.As(err, &awsErr) {
		return false
	}

	switch awsErr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}

	return strings.Contains(awsErr.Code(), "NoSuchKey")
}
