package s3

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/arenatree/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // name:version -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemKey(item map[string]types.AttributeValue) string {
	name := item["name"].(*types.AttributeValueMemberS).Value
	version := item["version"].(*types.AttributeValueMemberN).Value

	return name + ":" + version
}

func itemVersion(item map[string]types.AttributeValue) uint64 {
	v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
	return v
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey(params.Item)

	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := params.ExpressionAttributeValues[":name"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue

	for _, item := range m.items {
		if item["name"].(*types.AttributeValueMemberS).Value == name {
			items = append(items, item)
		}
	}

	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		va, vb := itemVersion(a), itemVersion(b)
		if aws.ToBool(params.ScanIndexForward) {
			va, vb = vb, va
		}

		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		default:
			return 0
		}
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDDBClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, itemKey(params.Key))

	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDDBPointer_Empty(t *testing.T) {
	p := NewDDBPointer(newMockDDBClient(), "arenatree-snapshots", "tree")

	version, blob, err := p.Latest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.Empty(t, blob)
}

func TestDDBPointer_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	p := NewDDBPointer(newMockDDBClient(), "arenatree-snapshots", "tree")

	// Versions beyond 9 check numeric rather than lexical ordering.
	for v := uint64(1); v <= 12; v++ {
		require.NoError(t, p.Commit(ctx, v, fmt.Sprintf("snap-%d", v)))
	}

	version, blob, err := p.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), version)
	assert.Equal(t, "snap-12", blob)

	require.NoError(t, p.Forget(ctx, 12))

	version, blob, err = p.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), version)
	assert.Equal(t, "snap-11", blob)
}

func TestDDBPointer_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	p := NewDDBPointer(newMockDDBClient(), "arenatree-snapshots", "tree")

	const writers = 10

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		blocked int
	)

	for i := range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := p.Commit(ctx, 1, fmt.Sprintf("writer-%d", i))

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, blobstore.ErrConflict)
				blocked++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, writers-1, blocked)
}

func TestDDBPointer_IsolatedNames(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	a := NewDDBPointer(ddb, "arenatree-snapshots", "a")
	b := NewDDBPointer(ddb, "arenatree-snapshots", "b")

	require.NoError(t, a.Commit(ctx, 1, "a-1"))
	require.NoError(t, a.Commit(ctx, 2, "a-2"))
	require.NoError(t, b.Commit(ctx, 1, "b-1"))

	version, blob, err := b.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "b-1", blob)
}
