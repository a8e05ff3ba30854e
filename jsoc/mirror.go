/*
Copyright © 2022 the stokes authors.
This file is part of stokes.

stokes is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

stokes is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with stokes.  If not, see <http://www.gnu.org/licenses/>.
*/

package jsoc

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// OpenMirror opens the blob storage location given by mirror, which must be
// in the format 'provider://bucket/prefix'. Exported files are looked up
// under prefix by file name. Accepted providers are "file" for a local
// directory (file:///path/to/dir), "gs" for Google Cloud Storage, and "s3"
// for AWS S3.
func OpenMirror(ctx context.Context, mirror string) (bucket *blob.Bucket, prefix string, err error) {
	u, err := url.Parse(mirror)
	if err != nil {
		return nil, "", fmt.Errorf("jsoc: mirror: %v", err)
	}
	prefix = strings.Trim(u.Path, "/")
	switch u.Scheme {
	case "file":
		bucket, err = fileblob.OpenBucket(u.Host+u.Path, nil)
		prefix = ""
	case "gs":
		bucket, err = gsBucket(ctx, u.Host)
	case "s3":
		bucket, err = s3Bucket(ctx, u.Host)
	default:
		return nil, "", fmt.Errorf("jsoc: invalid mirror provider %q", u.Scheme)
	}
	if err != nil {
		return nil, "", fmt.Errorf("jsoc: opening mirror %s: %v", mirror, err)
	}
	return bucket, prefix, nil
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket using the AWS_REGION,
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-west-2"
	}
	s, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}
