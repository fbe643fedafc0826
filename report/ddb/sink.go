// Package ddb persists run results to Amazon DynamoDB.
//
// Table schema:
//   - Partition key: run_id (string)
//   - Sort key: sk (string), "iter#0000".. for iterations and "result" for the final item
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name kmeans3d-runs \
//	  --attribute-definitions AttributeName=run_id,AttributeType=S AttributeName=sk,AttributeType=S \
//	  --key-schema AttributeName=run_id,KeyType=HASH AttributeName=sk,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package ddb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/kmeans3d/engine"
	"github.com/hupe1980/kmeans3d/point"
	"github.com/hupe1980/kmeans3d/report"
)

// Client is the subset of the DynamoDB API used by Sink.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

var (
	// ErrRunExists is returned when a result for the run ID was already stored.
	ErrRunExists = errors.New("run result already stored")

	// ErrNotFound is returned by Get when no result exists for the run ID.
	ErrNotFound = errors.New("run result not found")
)

const (
	resultKey = "result"

	// DynamoDB caps BatchWriteItem at 25 requests.
	maxBatch = 25

	maxUnprocessedRetries = 5
)

// Sink is a report.Reporter that stores every iteration and the final result
// of a run. Iterations are buffered in memory and written on Complete so the
// engine's serial worker never waits on the network.
type Sink struct {
	client Client
	table  string

	mu    sync.Mutex
	items []map[string]types.AttributeValue
}

var _ report.Reporter = (*Sink)(nil)

// NewSink creates a Sink writing to table.
func NewSink(client Client, table string) *Sink {
	return &Sink{client: client, table: table}
}

// Begin implements report.Reporter.
func (s *Sink) Begin(context.Context, report.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.items[:0]
	return nil
}

// OnIteration implements engine.Observer.
func (s *Sink) OnIteration(_ context.Context, rep engine.IterationReport) {
	item := map[string]types.AttributeValue{
		"sk":          &types.AttributeValueMemberS{Value: iterationKey(rep.Iteration)},
		"iteration":   numberAttr(int64(rep.Iteration)),
		"centroids":   centroidsAttr(rep.Centroids),
		"counts":      countsAttr(rep.Counts),
		"duration_us": numberAttr(rep.Duration.Microseconds()),
	}
	if len(rep.Empty) > 0 {
		empty := make([]string, len(rep.Empty))
		for i, j := range rep.Empty {
			empty[i] = strconv.Itoa(j)
		}
		item["empty"] = &types.AttributeValueMemberNS{Value: empty}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// Complete implements report.Reporter. The result item is written first,
// with a condition, so the items of an existing run ID are never overwritten.
func (s *Sink) Complete(ctx context.Context, run report.Run, res *engine.Result) error {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"run_id":     &types.AttributeValueMemberS{Value: run.ID},
			"sk":         &types.AttributeValueMemberS{Value: resultKey},
			"dataset":    &types.AttributeValueMemberS{Value: run.Dataset},
			"points":     numberAttr(int64(run.Points)),
			"skipped":    numberAttr(int64(run.Skipped)),
			"iterations": numberAttr(int64(res.Iterations)),
			"workers":    numberAttr(int64(res.Workers)),
			"merge":      &types.AttributeValueMemberS{Value: res.Merge.String()},
			"elapsed_ms": numberAttr(res.Elapsed.Milliseconds()),
			"centroids":  centroidsAttr(res.Centroids),
			"counts":     countsAttr(res.Counts),
			"created_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(run_id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s", ErrRunExists, run.ID)
		}
		return fmt.Errorf("failed to store run result in DynamoDB: %w", err)
	}

	for _, item := range items {
		item["run_id"] = &types.AttributeValueMemberS{Value: run.ID}
	}
	return s.batchWrite(ctx, items)
}

func (s *Sink) batchWrite(ctx context.Context, items []map[string]types.AttributeValue) error {
	for start := 0; start < len(items); start += maxBatch {
		end := min(start+maxBatch, len(items))

		reqs := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		pending := map[string][]types.WriteRequest{s.table: reqs}
		for attempt := 0; len(pending[s.table]) > 0; attempt++ {
			if attempt > maxUnprocessedRetries {
				return fmt.Errorf("failed to store %d iteration items in DynamoDB: retries exhausted", len(pending[s.table]))
			}
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("failed to store iterations in DynamoDB: %w", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

// Result is a stored run result.
type Result struct {
	RunID      string
	Dataset    string
	Iterations int
	Workers    int
	Elapsed    time.Duration
	Centroids  []point.Point
	Counts     []int64
}

// Get loads the stored result of a run.
func (s *Sink) Get(ctx context.Context, runID string) (*Result, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"run_id": &types.AttributeValueMemberS{Value: runID},
			"sk":     &types.AttributeValueMemberS{Value: resultKey},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read run result from DynamoDB: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return decodeResult(out.Item)
}

func decodeResult(item map[string]types.AttributeValue) (*Result, error) {
	r := &Result{}

	var err error
	if r.RunID, err = stringField(item, "run_id"); err != nil {
		return nil, err
	}
	if r.Dataset, err = stringField(item, "dataset"); err != nil {
		return nil, err
	}
	iterations, err := numberField(item, "iterations")
	if err != nil {
		return nil, err
	}
	workers, err := numberField(item, "workers")
	if err != nil {
		return nil, err
	}
	elapsed, err := numberField(item, "elapsed_ms")
	if err != nil {
		return nil, err
	}
	r.Iterations, r.Workers = int(iterations), int(workers)
	r.Elapsed = time.Duration(elapsed) * time.Millisecond

	if r.Centroids, err = decodeCentroids(item["centroids"]); err != nil {
		return nil, err
	}
	if r.Counts, err = decodeCounts(item["counts"]); err != nil {
		return nil, err
	}
	return r, nil
}

func iterationKey(it int) string {
	return fmt.Sprintf("iter#%04d", it)
}

func numberAttr(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func floatAttr(v float32) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(v), 'g', -1, 32)}
}

func centroidsAttr(cs []point.Point) types.AttributeValue {
	list := make([]types.AttributeValue, len(cs))
	for i, c := range cs {
		list[i] = &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"x": floatAttr(c.X),
			"y": floatAttr(c.Y),
			"z": floatAttr(c.Z),
		}}
	}
	return &types.AttributeValueMemberL{Value: list}
}

func countsAttr(counts []int64) types.AttributeValue {
	list := make([]types.AttributeValue, len(counts))
	for i, n := range counts {
		list[i] = numberAttr(n)
	}
	return &types.AttributeValueMemberL{Value: list}
}

func stringField(item map[string]types.AttributeValue, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("invalid %s attribute in DynamoDB", name)
	}
	return v.Value, nil
}

func numberField(item map[string]types.AttributeValue, name string) (int64, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid %s attribute in DynamoDB", name)
	}
	return strconv.ParseInt(v.Value, 10, 64)
}

func decodeFloat(av types.AttributeValue) (float32, error) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid coordinate attribute in DynamoDB")
	}
	f, err := strconv.ParseFloat(n.Value, 32)
	return float32(f), err
}

func decodeCentroids(av types.AttributeValue) ([]point.Point, error) {
	list, ok := av.(*types.AttributeValueMemberL)
	if !ok {
		return nil, errors.New("invalid centroids attribute in DynamoDB")
	}
	out := make([]point.Point, len(list.Value))
	for i, e := range list.Value {
		m, ok := e.(*types.AttributeValueMemberM)
		if !ok {
			return nil, errors.New("invalid centroid attribute in DynamoDB")
		}
		var err error
		if out[i].X, err = decodeFloat(m.Value["x"]); err != nil {
			return nil, err
		}
		if out[i].Y, err = decodeFloat(m.Value["y"]); err != nil {
			return nil, err
		}
		if out[i].Z, err = decodeFloat(m.Value["z"]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeCounts(av types.AttributeValue) ([]int64, error) {
	list, ok := av.(*types.AttributeValueMemberL)
	if !ok {
		return nil, errors.New("invalid counts attribute in DynamoDB")
	}
	out := make([]int64, len(list.Value))
	for i, e := range list.Value {
		n, ok := e.(*types.AttributeValueMemberN)
		if !ok {
			return nil, errors.New("invalid count attribute in DynamoDB")
		}
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
