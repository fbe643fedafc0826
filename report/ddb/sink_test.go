package ddb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue // run_id:sk -> item

	// unprocessedOnce makes the first BatchWriteItem call leave its last request unprocessed.
	unprocessedOnce bool
	batchCalls      int
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) string {
	return item["run_id"].(*types.AttributeValueMemberS).Value + ":" + item["sk"].(*types.AttributeValueMemberS).Value
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey(params.Item)
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(run_id)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) BatchWriteItem(_ context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batchCalls++
	out := &dynamodb.BatchWriteItemOutput{}
	for table, reqs := range params.RequestItems {
		if len(reqs) > maxBatch {
			return nil, errors.New("too many requests in batch")
		}
		if m.unprocessedOnce && len(reqs) > 0 {
			m.unprocessedOnce = false
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs[len(reqs)-1:]}
			reqs = reqs[:len(reqs)-1]
		}
		for _, r := range reqs {
			m.items[itemKey(r.PutRequest.Item)] = r.PutRequest.Item
		}
	}
	return out, nil
}

func (m *mockDDBClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &dynamodb.GetItemOutput{Item: m.items[itemKey(params.Key)]}, nil
}

func runSink(t *testing.T, s *Sink, run report.Run, iterations int) *engine.Result {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx, run))
	for i := 0; i < iterations; i++ {
		s.OnIteration(ctx, engine.IterationReport{
			Iteration: i,
			Centroids: []point.Point{{X: float32(i), Y: 0.5}, {Z: -1}},
			Counts:    []int64{3, 0},
			Empty:     []int{1},
			Duration:  time.Millisecond,
		})
	}
	res := &engine.Result{
		Centroids:  []point.Point{{X: 1.25, Y: 0.5}, {Z: -1}},
		Counts:     []int64{3, 0},
		Iterations: iterations,
		Workers:    2,
		Elapsed:    1500 * time.Millisecond,
	}
	require.NoError(t, s.Complete(ctx, run, res))
	return res
}

func TestSink_StoreAndGet(t *testing.T) {
	client := newMockDDBClient()
	s := NewSink(client, "runs")
	run := report.Run{ID: "abc", Dataset: "s3://bucket/data.csv", Points: 3}

	res := runSink(t, s, run, 30)

	// 30 iterations and one result item.
	assert.Len(t, client.items, 31)
	assert.Equal(t, 2, client.batchCalls)
	assert.Contains(t, client.items, "abc:iter#0029")

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.RunID)
	assert.Equal(t, run.Dataset, got.Dataset)
	assert.Equal(t, res.Centroids, got.Centroids)
	assert.Equal(t, res.Counts, got.Counts)
	assert.Equal(t, 30, got.Iterations)
	assert.Equal(t, 2, got.Workers)
	assert.Equal(t, 1500*time.Millisecond, got.Elapsed)
}

func TestSink_RetriesUnprocessed(t *testing.T) {
	client := newMockDDBClient()
	client.unprocessedOnce = true
	s := NewSink(client, "runs")

	runSink(t, s, report.Run{ID: "r"}, 3)

	assert.Len(t, client.items, 4)
	assert.Equal(t, 2, client.batchCalls)
}

func TestSink_RunExists(t *testing.T) {
	client := newMockDDBClient()
	s := NewSink(client, "runs")
	run := report.Run{ID: "dup"}
	runSink(t, s, run, 1)

	stored := client.items["dup:iter#0000"]
	calls := client.batchCalls

	ctx := context.Background()
	require.NoError(t, s.Begin(ctx, run))
	s.OnIteration(ctx, engine.IterationReport{
		Iteration: 0,
		Centroids: []point.Point{{X: 99}},
		Counts:    []int64{7},
	})
	err := s.Complete(ctx, run, &engine.Result{})
	assert.ErrorIs(t, err, ErrRunExists)

	// The first run's iterations survive the rejected one.
	assert.Equal(t, calls, client.batchCalls)
	assert.Equal(t, stored, client.items["dup:iter#0000"])
	assert.Len(t, client.items, 2)
}

func TestSink_GetNotFound(t *testing.T) {
	s := NewSink(newMockDDBClient(), "runs")

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
