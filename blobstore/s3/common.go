package s3

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// listObjects pages through every key below rootPrefix/prefix and returns
// the names relative to rootPrefix.
func listObjects(ctx context.Context, client s3.ListObjectsV2APIClient, bucket, rootPrefix, prefix string) ([]string, error) {
	fullPrefix := prefix
	if rootPrefix != "" {
		fullPrefix = rootPrefix + "/" + prefix
	}

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(fullPrefix),
	})

	var keys []string

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			relPath := aws.ToString(obj.Key)
			if rootPrefix != "" {
				var ok bool
				if relPath, ok = strings.CutPrefix(relPath, rootPrefix+"/"); !ok {
					continue
				}
			}

			keys = append(keys, relPath)
		}
	}

	slices.Sort(keys)

	return keys, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}

	return false
}

// isConflict reports a failed If-None-Match precondition. S3 answers with
// PreconditionFailed, or ConditionalRequestConflict while a racing write is
// still in flight.
func isConflict(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "PreconditionFailed" || code == "ConditionalRequestConflict"
	}

	return false
}
