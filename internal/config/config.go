package config

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
	"github.com/go-ini/ini"
)

// ExtractConfig contains the defaults of the list and extract commands from the [extract] section.
//
// Command-line flags take precedence.
type ExtractConfig struct {
	Passphrase      string
	Encoding        string
	StripComponents int
	Recursive       bool
	Include         []string
	Exclude         []string
	// SizeLimit is parsed with humanize.ParseBytes so "256 MiB" and "1GB" both work. Zero if not set.
	SizeLimit   int64
	Overwrite   bool
	Concurrency int
}

// ForExtract returns the [extract] configuration.
func (l *Loader) ForExtract() (c ExtractConfig, err error) {
	sec := l.section("extract")
	if sec == nil {
		return c, nil
	}

	c.Passphrase = sec.Key("passphrase").String()
	c.Encoding = sec.Key("encoding").String()
	c.Include = stringsKey(sec, "include")
	c.Exclude = stringsKey(sec, "exclude")

	if c.StripComponents, err = intKey(sec, "strip-components"); err != nil {
		return c, err
	}
	if c.Concurrency, err = intKey(sec, "concurrency"); err != nil {
		return c, err
	}
	if c.Recursive, err = boolKey(sec, "recursive"); err != nil {
		return c, err
	}
	if c.Overwrite, err = boolKey(sec, "overwrite"); err != nil {
		return c, err
	}

	if v := sec.Key("size-limit").String(); v != "" {
		if v == "unlimited" {
			c.SizeLimit = -1
		} else {
			n, err := humanize.ParseBytes(v)
			if err != nil {
				return c, fmt.Errorf(`invalid size-limit "%s": %w`, v, err)
			}
			c.SizeLimit = int64(n)
		}
	}

	return c, nil
}

// ForExtract calls Loader.ForExtract on the DefaultLoader instance.
func ForExtract() (ExtractConfig, error) {
	return DefaultLoader.ForExtract()
}

// stringsKey returns the comma-separated values of the key, nil if there are none.
func stringsKey(sec *ini.Section, name string) []string {
	if v := sec.Key(name).Strings(","); len(v) != 0 {
		return v
	}

	return nil
}

func intKey(sec *ini.Section, name string) (int, error) {
	if !sec.HasKey(name) {
		return 0, nil
	}

	v, err := sec.Key(name).Int()
	if err != nil {
		return 0, fmt.Errorf(`invalid %s: %w`, name, err)
	}

	return v, nil
}

func boolKey(sec *ini.Section, name string) (bool, error) {
	if !sec.HasKey(name) {
		return false, nil
	}

	v, err := sec.Key(name).Bool()
	if err != nil {
		return false, fmt.Errorf(`invalid %s: %w`, name, err)
	}

	return v, nil
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration for a specific bucket from the [s3://bucket] section.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	sec := l.section("s3://" + bucket)
	if sec == nil {
		return c
	}

	c.Bucket = bucket
	c.AWSProfile = sec.Key("aws-profile").String()
	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").String())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) (c BucketConfig) {
	return DefaultLoader.ForBucket(bucket)
}
