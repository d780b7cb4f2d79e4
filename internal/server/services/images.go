package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	sc "github.com/dmitrijs2005/carmodpicker/internal/server/config"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/ownership"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadURLValidity is how long a presigned image upload URL stays usable.
const UploadURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageUpload tells the client where to PUT the image and where it will be
// served from afterwards.
type ImageUpload struct {
	UploadURL string
	ImageURL  string
	Key       string
	ExpiresAt time.Time
}

// ImageService hands out presigned S3 uploads for car images.
type ImageService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	verifier    *ownership.Verifier
	config      *sc.Config
	log         logging.Logger
}

func NewImageService(runner dbx.Runner, rm repomanager.RepositoryManager, v *ownership.Verifier, cfg *sc.Config, log logging.Logger) *ImageService {
	return &ImageService{runner: runner, repomanager: rm, verifier: v, config: cfg, log: log.With("module", "images")}
}

func carImageKey(carID int64, contentType string) string {
	return fmt.Sprintf("cars/%d/%v%s", carID, uuid.New(), imageExtensions[contentType])
}

func (s *ImageService) getS3Client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.config.S3Region)}
	if s.config.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// publicURL is where an uploaded object is read from.
func (s *ImageService) publicURL(key string) string {
	switch {
	case s.config.S3PublicURL != "":
		return strings.TrimRight(s.config.S3PublicURL, "/") + "/" + key
	case s.config.S3BaseEndpoint != "":
		return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.S3Region, key)
	}
}

// PresignCarImage returns an upload URL for a new image of the actor's car.
// The car keeps its current image until ConfirmCarImage is called for the key.
func (s *ImageService) PresignCarImage(ctx context.Context, actor *models.User, carID int64, contentType string) (*ImageUpload, error) {
	if s.config.S3Bucket == "" {
		return nil, common.WithDetail(common.ErrorValidation, "Image uploads are not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, common.WithDetail(common.ErrorValidation, "Content type must be an image")
	}

	if _, err := s.verifier.Verify(ctx, s.runner.Conn(), ownership.KindCar, carID, actor.ID,
		ownership.WithNotFound(detailCarNotFound),
		ownership.WithForbidden(detailCarUpdateForbidden)); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := carImageKey(carID, contentType)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(UploadURLValidity))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	upload := &ImageUpload{
		UploadURL: req.URL,
		ImageURL:  s.publicURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(UploadURLValidity),
	}

	s.log.Info(ctx, "car image upload presigned", "car_id", carID, "key", upload.Key)
	return upload, nil
}

// ConfirmCarImage points the car's image_url at an uploaded object. key must
// be one handed out for this car and the object must exist in the bucket.
func (s *ImageService) ConfirmCarImage(ctx context.Context, actor *models.User, carID int64, key string) (*models.Car, error) {
	if s.config.S3Bucket == "" {
		return nil, common.WithDetail(common.ErrorValidation, "Image uploads are not configured")
	}
	prefix := fmt.Sprintf("cars/%d/", carID)
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) || strings.Contains(key[len(prefix):], "/") {
		return nil, common.WithDetail(common.ErrorValidation, "Invalid image key")
	}

	var updated *models.Car
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.Verify(ctx, tx, ownership.KindCar, carID, actor.ID,
			ownership.WithNotFound(detailCarNotFound),
			ownership.WithForbidden(detailCarUpdateForbidden))
		if err != nil {
			return err
		}

		client, err := s.getS3Client(ctx)
		if err != nil {
			return err
		}
		bucket := s.config.S3Bucket
		if _, err := headObject(client, ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key}); err != nil {
			s.log.Warn(ctx, "image object missing", "car_id", carID, "key", key, "error", err)
			return common.WithDetail(common.ErrorValidation, "Image has not been uploaded")
		}

		imageURL := s.publicURL(key)
		car := chain.Car()
		car.Apply(models.CarUpdate{ImageURL: &imageURL})
		updated, err = s.repomanager.Cars(tx).Update(ctx, car)
		if err != nil {
			return notFoundDetail(err, detailCarNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "car image confirmed", "car_id", carID, "key", key)
	return updated, nil
}
