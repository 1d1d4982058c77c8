package infra

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

type capturedResource struct {
	Type   string
	Name   string
	Inputs resource.PropertyMap
}

type testMocks struct {
	region    string
	resources []capturedResource
}

func (m *testMocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.resources = append(m.resources, capturedResource{Type: args.TypeToken, Name: args.Name, Inputs: args.Inputs})
	id := args.Name + "_id"
	out := args.Inputs
	switch args.TypeToken {
	case "aws:dynamodb/table:Table":
		out = out.Copy()
		out[resource.PropertyKey("arn")] = resource.NewStringProperty(
			fmt.Sprintf("arn:aws:dynamodb:%s:123456789012:table/%s", m.region, out["name"].StringValue()),
		)
	case "aws:iam/policy:Policy":
		out = out.Copy()
		out[resource.PropertyKey("arn")] = resource.NewStringProperty("arn:aws:iam::123456789012:policy/" + id)
	}
	return id, out, nil
}

func (m *testMocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	if strings.Contains(args.Token, "getRegion") {
		return resource.PropertyMap{
			resource.PropertyKey("name"): resource.NewStringProperty(m.region),
		}, nil
	}
	return resource.PropertyMap{}, nil
}

func (m *testMocks) find(typ string) resource.PropertyMap {
	for _, r := range m.resources {
		if r.Type == typ {
			return r.Inputs
		}
	}
	return nil
}

func TestStackConstructs_Defaults(t *testing.T) {
	t.Parallel()
	mocks := &testMocks{region: "us-east-1"}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewGlowCycleStack(ctx, "test", StackArgs{})
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	table := mocks.find("aws:dynamodb/table:Table")
	if table == nil {
		t.Fatalf("table not created")
	}
	if got := table["name"].StringValue(); got != "GlowCycleTable" {
		t.Fatalf("table name = %q", got)
	}
	if got := table["hashKey"].StringValue(); got != "user" {
		t.Fatalf("hashKey = %q, want user", got)
	}
	if got := table["rangeKey"].StringValue(); got != "date" {
		t.Fatalf("rangeKey = %q, want date", got)
	}
	if _, ok := table[resource.PropertyKey("deletionProtectionEnabled")]; ok {
		t.Fatalf("deletion protection should be unset by default")
	}
	if _, ok := table[resource.PropertyKey("streamEnabled")]; ok {
		t.Fatalf("stream should be unset by default")
	}
}

func TestStack_RetainAndStream(t *testing.T) {
	t.Parallel()
	mocks := &testMocks{region: "eu-west-1"}
	retain, stream := true, true
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewGlowCycleStack(ctx, "prod", StackArgs{TableName: pulumi.StringRef("GlowProd"), RetainOnDelete: &retain, EnableStream: &stream})
		return err
	}, pulumi.WithMocks("test", "prod", mocks))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	table := mocks.find("aws:dynamodb/table:Table")
	if !table["deletionProtectionEnabled"].BoolValue() {
		t.Fatalf("deletion protection not enabled")
	}
	if got := table["streamViewType"].StringValue(); got != "NEW_AND_OLD_IMAGES" {
		t.Fatalf("streamViewType = %q", got)
	}
	pitr := table["pointInTimeRecovery"].ObjectValue()
	if !pitr["enabled"].BoolValue() {
		t.Fatalf("point-in-time recovery not enabled")
	}
}

func TestStack_ServicePolicy(t *testing.T) {
	t.Parallel()
	mocks := &testMocks{region: "us-west-2"}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewGlowCycleStack(ctx, "test", StackArgs{BedrockModelIDs: []string{"anthropic.claude-3-sonnet"}})
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	pol := mocks.find("aws:iam/policy:Policy")
	if pol == nil {
		t.Fatalf("policy not created")
	}
	var doc struct {
		Statement []struct {
			Sid      string
			Action   []string
			Resource []string
		}
	}
	if err := json.Unmarshal([]byte(pol["policy"].StringValue()), &doc); err != nil {
		t.Fatalf("policy is not JSON: %v", err)
	}
	if len(doc.Statement) != 2 {
		t.Fatalf("want 2 statements, got %d", len(doc.Statement))
	}
	if got := doc.Statement[0].Resource[0]; got != "arn:aws:dynamodb:us-west-2:123456789012:table/GlowCycleTable" {
		t.Fatalf("table resource = %q", got)
	}
	if got := doc.Statement[1].Resource[0]; got != "arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-sonnet" {
		t.Fatalf("model resource = %q", got)
	}
}

func TestServicePolicyDocument_Partition(t *testing.T) {
	t.Parallel()
	s, err := servicePolicyDocument("arn:aws-cn:dynamodb:cn-north-1:1:table/t", "cn-north-1", []string{"m"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, "arn:aws-cn:bedrock:cn-north-1::foundation-model/m") {
		t.Fatalf("partition not applied: %s", s)
	}
	if !strings.Contains(s, `"dynamodb:Query"`) {
		t.Fatalf("query action missing: %s", s)
	}
}

func TestNewProvider(t *testing.T) {
	t.Parallel()
	if _, err := NewProvider(); err != nil {
		t.Fatalf("provider build failed: %v", err)
	}
}
