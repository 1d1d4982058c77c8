package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	awserrors "github.com/mikecbrant/glowcycle/internal/awssdk/errors"
	"github.com/mikecbrant/glowcycle/internal/store"
	"github.com/mikecbrant/glowcycle/internal/testutil"
)

// smithy APIError minimal fake that satisfies smithy.APIError
type apiErr struct{ code string }

func (e apiErr) Error() string                 { return e.code }
func (e apiErr) ErrorCode() string             { return e.code }
func (e apiErr) ErrorMessage() string          { return e.code }
func (e apiErr) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func rawItem(pk, sk string) Item {
	it := Key(pk, sk)
	it["feeling"] = StringAttribute("happy")
	return it
}

func TestPut_WritesKeysAndAttributes(t *testing.T) {
	c := &testutil.FakeDynamoClient{}
	l := &testutil.BufferLogger{}
	s := New(c, "", l)
	err := s.Put(context.Background(), store.Item{PK: "sofia", SK: "2025-02-12#morning", Attrs: store.Attributes{"feeling": StringAttribute("happy")}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	in := c.PutIn[0]
	if aws.ToString(in.TableName) != DefaultTable {
		t.Fatalf("table = %q", aws.ToString(in.TableName))
	}
	if in.ConditionExpression != nil {
		t.Fatalf("put must overwrite, got condition %q", *in.ConditionExpression)
	}
	if got := in.Item[PartitionKeyAttr].(*types.AttributeValueMemberS).Value; got != "sofia" {
		t.Fatalf("pk = %q", got)
	}
	if got := in.Item[SortKeyAttr].(*types.AttributeValueMemberS).Value; got != "2025-02-12#morning" {
		t.Fatalf("sk = %q", got)
	}
	if _, ok := in.Item["feeling"]; !ok {
		t.Fatalf("missing attribute: %#v", in.Item)
	}
	if len(l.Calls) == 0 {
		t.Fatalf("expected logs to be emitted")
	}
}

func TestCreate_ConflictIsErrExists(t *testing.T) {
	c := &testutil.FakeDynamoClient{Err: apiErr{"ConditionalCheckFailedException"}}
	s := New(c, "T", nil)
	err := s.Create(context.Background(), store.Item{PK: "u", SK: "USER_PROFILE"})
	if !errors.Is(err, store.ErrExists) {
		t.Fatalf("want ErrExists, got %v", err)
	}
	if !awserrors.IsConflict(err) {
		t.Fatalf("classification lost: %v", err)
	}
	if cond := aws.ToString(c.PutIn[0].ConditionExpression); !testutil.Contains(cond, "attribute_not_exists(#pk)") {
		t.Fatalf("expected not-exists condition on put, got: %q", cond)
	}
}

func TestCreate_OtherErrorsClassified(t *testing.T) {
	c := &testutil.FakeDynamoClient{Err: apiErr{"ThrottlingException"}}
	err := New(c, "T", nil).Create(context.Background(), store.Item{PK: "u", SK: "USER_PROFILE"})
	if errors.Is(err, store.ErrExists) || awserrors.Category(err) != "retryable" {
		t.Fatalf("want retryable, got %v", err)
	}
}

func TestGet(t *testing.T) {
	c := &testutil.FakeDynamoClient{}
	s := New(c, "T", nil)
	if _, err := s.Get(context.Background(), "u", "USER_PROFILE"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	c.GetOut = &dynamodb.GetItemOutput{Item: rawItem("u", "USER_PROFILE")}
	it, err := s.Get(context.Background(), "u", "USER_PROFILE")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if it.PK != "u" || it.SK != "USER_PROFILE" || len(it.Attrs) != 1 {
		t.Fatalf("unexpected item %#v", it)
	}
}

func TestQuery_PrefixDescendingPaginates(t *testing.T) {
	c := &testutil.FakeDynamoClient{QueryPages: []*dynamodb.QueryOutput{
		{Items: []Item{rawItem("u", "PERIOD#2025-03-01")}, LastEvaluatedKey: Key("u", "PERIOD#2025-03-01")},
		{Items: []Item{rawItem("u", "PERIOD#2025-02-01")}},
	}}
	items, err := New(c, "T", nil).Query(context.Background(), "u", store.Query{Condition: store.BeginsWith("PERIOD#"), Descending: true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 || items[1].SK != "PERIOD#2025-02-01" {
		t.Fatalf("unexpected items %#v", items)
	}
	first := c.QueryIn[0]
	if got := aws.ToString(first.KeyConditionExpression); got != "#pk = :pk AND begins_with(#sk, :prefix)" {
		t.Fatalf("key condition = %q", got)
	}
	if aws.ToBool(first.ScanIndexForward) || first.Limit != nil {
		t.Fatalf("want descending without limit, got %v %v", first.ScanIndexForward, first.Limit)
	}
	if c.QueryIn[1].ExclusiveStartKey == nil {
		t.Fatalf("second page must continue from LastEvaluatedKey")
	}
}

func TestQuery_BetweenWithLimitStopsEarly(t *testing.T) {
	c := &testutil.FakeDynamoClient{QueryPages: []*dynamodb.QueryOutput{
		{Items: []Item{rawItem("u", "2025-03-02#evening"), rawItem("u", "2025-03-02#morning")}, LastEvaluatedKey: Key("u", "2025-03-02#morning")},
		{Items: []Item{rawItem("u", "2025-03-01#evening")}, LastEvaluatedKey: Key("u", "2025-03-01#evening")},
	}}
	items, err := New(c, "T", nil).Query(context.Background(), "u", store.Query{Condition: store.Between("0", ":"), Descending: true, Limit: 3})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 3 || len(c.QueryIn) != 2 {
		t.Fatalf("items=%d calls=%d", len(items), len(c.QueryIn))
	}
	if got := aws.ToString(c.QueryIn[0].KeyConditionExpression); got != "#pk = :pk AND #sk BETWEEN :lo AND :hi" {
		t.Fatalf("key condition = %q", got)
	}
	if aws.ToInt32(c.QueryIn[0].Limit) != 3 || aws.ToInt32(c.QueryIn[1].Limit) != 1 {
		t.Fatalf("limits %d/%d", aws.ToInt32(c.QueryIn[0].Limit), aws.ToInt32(c.QueryIn[1].Limit))
	}
}

func TestQuery_ErrorClassified(t *testing.T) {
	c := &testutil.FakeDynamoClient{Err: apiErr{"ProvisionedThroughputExceededException"}}
	l := &testutil.BufferLogger{}
	_, err := New(c, "T", l).Query(context.Background(), "u", store.Query{})
	if awserrors.Category(err) != "retryable" {
		t.Fatalf("want retryable, got %v", err)
	}
	if !l.Has("warn", "dynamo.query.error") {
		t.Fatalf("expected warn log, got %v", l.Entries)
	}
}

func TestQuery_MalformedKey(t *testing.T) {
	c := &testutil.FakeDynamoClient{QueryPages: []*dynamodb.QueryOutput{{Items: []Item{{"user": StringAttribute("u")}}}}}
	if _, err := New(c, "T", nil).Query(context.Background(), "u", store.Query{}); err == nil {
		t.Fatalf("expected error for item without sort key")
	}
}

func TestDelete(t *testing.T) {
	c := &testutil.FakeDynamoClient{}
	if err := New(c, "T", nil).Delete(context.Background(), "u", "PERIOD#2025-01-01"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := c.DeleteIn[0].Key[SortKeyAttr].(*types.AttributeValueMemberS).Value; got != "PERIOD#2025-01-01" {
		t.Fatalf("sk = %q", got)
	}
}
