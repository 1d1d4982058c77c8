// Package dynamo implements store.Store on a DynamoDB table keyed by user and
// date. Conditional-write conflicts surface as store.ErrExists; every other
// API error is returned classified by internal/awssdk/errors.
package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	awserrors "github.com/mikecbrant/glowcycle/internal/awssdk/errors"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

// DefaultTable is the table name of the deployed service.
const DefaultTable = "GlowCycleTable"

// Client is the subset of the DynamoDB API the store calls.
type Client interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// NewClient builds a DynamoDB client; a non-empty endpoint targets DynamoDB Local.
func NewClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// Store implements store.Store on a single DynamoDB table.
type Store struct {
	client Client
	table  string
	logger logging.Logger
}

// New returns a Store over table; an empty table selects DefaultTable.
func New(client Client, table string, logger logging.Logger) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{client: client, table: table, logger: logging.OrNop(logger)}
}

var _ store.Store = (*Store)(nil)

// Put writes item, replacing any item with the same key.
func (s *Store) Put(ctx context.Context, item store.Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      toItem(item),
	})
	if err != nil {
		s.logger.Warn("dynamo.put.error", logging.Fields{"sk": item.SK, "error": err.Error()})
		return awserrors.Classify(err)
	}
	s.logger.Debug("dynamo.put", logging.Fields{"sk": item.SK})
	return nil
}

// Create writes item with a not-exists condition on its key.
func (s *Store) Create(ctx context.Context, item store.Item) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                toItem(item),
		ConditionExpression: aws.String("attribute_not_exists(#pk) AND attribute_not_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": PartitionKeyAttr,
			"#sk": SortKeyAttr,
		},
	})
	if err != nil {
		err = awserrors.Classify(err)
		if awserrors.IsConflict(err) {
			s.logger.Info("dynamo.create.exists", logging.Fields{"sk": item.SK})
			return errors.Join(store.ErrExists, err)
		}
		s.logger.Warn("dynamo.create.error", logging.Fields{"sk": item.SK, "error": err.Error()})
		return err
	}
	s.logger.Debug("dynamo.create", logging.Fields{"sk": item.SK})
	return nil
}

// Get reads one item. Reads are eventually consistent.
func (s *Store) Get(ctx context.Context, pk, sk string) (store.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       Key(pk, sk),
	})
	if err != nil {
		return store.Item{}, awserrors.Classify(err)
	}
	if len(out.Item) == 0 {
		return store.Item{}, store.ErrNotFound
	}
	return fromItem(out.Item)
}

// Query reads one partition, following pagination until q.Limit items are
// collected or the partition is exhausted.
func (s *Store) Query(ctx context.Context, pk string, q store.Query) ([]store.Item, error) {
	in := queryInput(s.table, pk, q)
	var items []store.Item
	pages := 0
	for {
		if q.Limit > 0 {
			in.Limit = aws.Int32(int32(q.Limit - len(items)))
		}
		out, err := s.client.Query(ctx, in)
		if err != nil {
			s.logger.Warn("dynamo.query.error", logging.Fields{"pages": pages, "error": err.Error()})
			return nil, awserrors.Classify(err)
		}
		pages++
		for _, raw := range out.Items {
			it, err := fromItem(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
		if len(out.LastEvaluatedKey) == 0 || (q.Limit > 0 && len(items) >= q.Limit) {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	s.logger.Debug("dynamo.query", logging.Fields{"items": len(items), "pages": pages})
	return items, nil
}

func queryInput(table, pk string, q store.Query) *dynamodb.QueryInput {
	names := map[string]string{"#pk": PartitionKeyAttr}
	values := map[string]types.AttributeValue{":pk": StringAttribute(pk)}
	cond := "#pk = :pk"
	switch c := q.Condition; {
	case c.IsRange():
		names["#sk"] = SortKeyAttr
		values[":lo"] = StringAttribute(c.Lower)
		values[":hi"] = StringAttribute(c.Upper)
		cond += " AND #sk BETWEEN :lo AND :hi"
	case c.Prefix != "":
		names["#sk"] = SortKeyAttr
		values[":prefix"] = StringAttribute(c.Prefix)
		cond += " AND begins_with(#sk, :prefix)"
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		KeyConditionExpression:    aws.String(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
}

// Delete removes one item; deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, pk, sk string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       Key(pk, sk),
	})
	if err != nil {
		return awserrors.Classify(err)
	}
	s.logger.Debug("dynamo.delete", logging.Fields{"sk": sk})
	return nil
}
