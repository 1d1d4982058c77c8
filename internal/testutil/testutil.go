// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/mikecbrant/glowcycle/internal/utils/logging"
)

// FakeDynamoClient records DynamoDB inputs and replays canned outputs.
type FakeDynamoClient struct {
	PutIn    []*dynamodb.PutItemInput
	GetIn    []*dynamodb.GetItemInput
	QueryIn  []*dynamodb.QueryInput
	DeleteIn []*dynamodb.DeleteItemInput

	GetOut *dynamodb.GetItemOutput
	// QueryPages are returned in order, one per Query call.
	QueryPages []*dynamodb.QueryOutput
	Err        error
}

// PutItem records the input and returns the configured error.
func (f *FakeDynamoClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.PutIn = append(f.PutIn, in)
	return &dynamodb.PutItemOutput{}, f.Err
}

// GetItem records the input and returns GetOut.
func (f *FakeDynamoClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.GetIn = append(f.GetIn, in)
	if f.Err != nil {
		return nil, f.Err
	}
	if f.GetOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.GetOut, nil
}

// Query records the input and returns the next page.
func (f *FakeDynamoClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	cp := *in
	f.QueryIn = append(f.QueryIn, &cp)
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.QueryPages) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	page := f.QueryPages[0]
	f.QueryPages = f.QueryPages[1:]
	return page, nil
}

// DeleteItem records the input and returns the configured error.
func (f *FakeDynamoClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.DeleteIn = append(f.DeleteIn, in)
	return &dynamodb.DeleteItemOutput{}, f.Err
}

// BufferLogger is a buffer-backed logger that records calls for assertions.
type BufferLogger struct {
	mu      sync.Mutex
	Calls   []string
	Entries []string
}

// Debug records a debug-level log entry.
func (l *BufferLogger) Debug(msg string, ctx logging.Fields) { l.record("debug", msg, ctx) }

// Info records an info-level log entry.
func (l *BufferLogger) Info(msg string, ctx logging.Fields) { l.record("info", msg, ctx) }

// Warn records a warn-level log entry.
func (l *BufferLogger) Warn(msg string, ctx logging.Fields) { l.record("warn", msg, ctx) }

// Error records an error-level log entry.
func (l *BufferLogger) Error(msg string, ctx logging.Fields) { l.record("error", msg, ctx) }

func (l *BufferLogger) record(level, msg string, ctx logging.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, level)
	// simple human-readable capture for assertions; not a JSON serializer
	l.Entries = append(l.Entries, fmt.Sprintf("%s: %s ctx=%v", level, msg, ctx))
}

// Has reports whether any entry at level contains sub.
func (l *BufferLogger) Has(level, sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.Entries {
		if l.Calls[i] == level && Contains(e, sub) {
			return true
		}
	}
	return false
}

var _ logging.Logger = (*BufferLogger)(nil)

// Contains reports whether s contains sub; exported for reuse across tests.
func Contains(s, sub string) bool { return strings.Contains(s, sub) }
