package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/arenatree/blobstore"
)

// DDBPointer records which snapshot blob is current, using DynamoDB as a
// commit log. Each commit is an item keyed by (name, version); a conditional
// write makes a version impossible to commit twice, which S3 alone cannot
// guarantee across writers.
//
// Table schema:
//   - Partition key: name (string) - the pointer name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name arenatree-snapshots \
//	  --attribute-definitions AttributeName=name,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=name,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBPointer struct {
	client DDBClient
	table  string
	name   string
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// NewDDBPointer creates a pointer stored under name in table.
func NewDDBPointer(client DDBClient, table, name string) *DDBPointer {
	return &DDBPointer{
		client: client,
		table:  table,
		name:   name,
	}
}

// Latest returns the highest committed version and its blob name.
// Version 0 means nothing was committed yet.
func (p *DDBPointer) Latest(ctx context.Context) (uint64, string, error) {
	resp, err := p.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(p.table),
		KeyConditionExpression: aws.String("#n = :name"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: p.name},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]

	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}

	blobAttr, ok := item["blob"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid blob attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, blobAttr.Value, nil
}

// Commit records blob as version. It returns blobstore.ErrConflict when
// another writer already committed that version.
func (p *DDBPointer) Commit(ctx context.Context, version uint64, blob string) error {
	_, err := p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.table),
		Item: map[string]types.AttributeValue{
			"name":    &types.AttributeValueMemberS{Value: p.name},
			"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"blob":    &types.AttributeValueMemberS{Value: blob},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return blobstore.ErrConflict
		}

		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return nil
}

// Forget deletes the record of version. Blobs are not touched.
func (p *DDBPointer) Forget(ctx context.Context, version uint64) error {
	_, err := p.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(p.table),
		Key: map[string]types.AttributeValue{
			"name":    &types.AttributeValueMemberS{Value: p.name},
			"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete version from DynamoDB: %w", err)
	}

	return nil
}
