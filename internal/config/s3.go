package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSProfile returns the shared config profile to use for bucket: Loader.Profile if set, else the bucket's
// aws-profile, else the empty string for the default chain.
func (l *Loader) AWSProfile(bucket string) string {
	if l.Profile != "" {
		return l.Profile
	}

	return l.ForBucket(bucket).AWSProfile
}

// NewS3ClientForBucket returns a client for bucket using the profile chosen by AWSProfile.
//
// The loaded aws.Config is cached per profile; optFns apply only to the returned client.
func (l *Loader) NewS3ClientForBucket(ctx context.Context, bucket string, optFns ...func(*s3.Options)) (*s3.Client, error) {
	cfg, err := l.awsConfig(ctx, l.AWSProfile(bucket))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, optFns...), nil
}

func (l *Loader) awsConfig(ctx context.Context, profile string) (aws.Config, error) {
	if v, ok := l.awsConfigs.Load(profile); ok {
		return v.(aws.Config), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return aws.Config{}, err
	}

	v, _ := l.awsConfigs.LoadOrStore(profile, cfg)
	return v.(aws.Config), nil
}

// NewS3ClientForBucket calls Loader.NewS3ClientForBucket on the DefaultLoader instance.
func NewS3ClientForBucket(ctx context.Context, bucket string, optFns ...func(*s3.Options)) (*s3.Client, error) {
	return DefaultLoader.NewS3ClientForBucket(ctx, bucket, optFns...)
}
