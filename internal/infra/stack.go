// Package infra provisions the GlowCycle table and the access policy the
// service runs under, packaged as a Pulumi component.
package infra

import (
	"encoding/json"
	"fmt"

	aws "github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	awsdynamodb "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/dynamodb"
	awsiam "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-go-provider/infer"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/mikecbrant/glowcycle/internal/awssdk"
	"github.com/mikecbrant/glowcycle/internal/awssdk/dynamo"
	"github.com/mikecbrant/glowcycle/internal/generator"
)

const componentType = "glowcycle:index:GlowCycleStack"

// StackArgs defines the inputs for the component resource.
type StackArgs struct {
	// Table name; defaults to GlowCycleTable.
	TableName *string `pulumi:"tableName,optional"`
	// When true, the table is retained on delete, protected from deletion and
	// has point-in-time recovery enabled.
	RetainOnDelete *bool `pulumi:"retainOnDelete,optional"`
	// If true, enable DynamoDB Streams on the table (NEW_AND_OLD_IMAGES).
	EnableStream *bool `pulumi:"enableStream,optional"`
	// Bedrock foundation models the service may invoke.
	BedrockModelIDs []string `pulumi:"bedrockModelIds,optional"`
}

// GlowCycleStack exposes the created resource identifiers as outputs.
type GlowCycleStack struct {
	pulumi.ResourceState

	TableName      pulumi.StringOutput `pulumi:"tableName"`
	TableArn       pulumi.StringOutput `pulumi:"tableArn"`
	TableStreamArn pulumi.StringOutput `pulumi:"tableStreamArn,optional"`
	PolicyArn      pulumi.StringOutput `pulumi:"policyArn"`
}

// Annotate attaches schema metadata used for provider docs and code generation.
func (c *GlowCycleStack) Annotate(a infer.Annotator) {
	a.Describe(&c, "Provision the GlowCycle DynamoDB table and the IAM policy for the wellness service.")
	a.SetToken(tokens.ModuleName("glowcycle"), tokens.TypeName("GlowCycleStack"))
}

// NewGlowCycleStack is the component constructor used by infer.Component.
func NewGlowCycleStack(ctx *pulumi.Context, name string, args StackArgs, opts ...pulumi.ResourceOption) (*GlowCycleStack, error) {
	comp := &GlowCycleStack{}
	if err := ctx.RegisterComponentResource(componentType, name, comp, opts...); err != nil {
		return nil, err
	}
	normalizeStackArgs(&args)
	childOpts, retOpts := buildChildOptions(comp, opts, *args.RetainOnDelete)

	table, err := createTable(ctx, name, args, retOpts)
	if err != nil {
		return nil, err
	}
	reg, err := aws.GetRegion(ctx, nil)
	if err != nil {
		return nil, err
	}
	policy, err := createServicePolicy(ctx, name, table, reg.Name, args.BedrockModelIDs, childOpts)
	if err != nil {
		return nil, err
	}

	comp.TableName = table.Name
	comp.TableArn = table.Arn
	comp.TableStreamArn = table.StreamArn
	comp.PolicyArn = policy.Arn
	if err := ctx.RegisterResourceOutputs(comp, pulumi.Map{
		"tableName": table.Name,
		"tableArn":  table.Arn,
		"policyArn": policy.Arn,
	}); err != nil {
		return nil, err
	}
	return comp, nil
}

func normalizeStackArgs(args *StackArgs) {
	if args.TableName == nil || *args.TableName == "" {
		n := dynamo.DefaultTable
		args.TableName = &n
	}
	if args.RetainOnDelete == nil {
		b := false
		args.RetainOnDelete = &b
	}
	if len(args.BedrockModelIDs) == 0 {
		args.BedrockModelIDs = []string{generator.DefaultBedrockModel}
	}
}

func buildChildOptions(comp pulumi.Resource, opts []pulumi.ResourceOption, retainOnDelete bool) (childOpts []pulumi.ResourceOption, retainOpts []pulumi.ResourceOption) {
	childOpts = append([]pulumi.ResourceOption{}, opts...)
	childOpts = append(childOpts, pulumi.Parent(comp))
	retainOpts = append([]pulumi.ResourceOption{}, childOpts...)
	if retainOnDelete {
		retainOpts = append(retainOpts, pulumi.RetainOnDelete(true))
	}
	return childOpts, retainOpts
}

func createTable(ctx *pulumi.Context, name string, args StackArgs, opts []pulumi.ResourceOption) (*awsdynamodb.Table, error) {
	targs := &awsdynamodb.TableArgs{
		Name:        pulumi.StringPtr(*args.TableName),
		BillingMode: pulumi.String("PAY_PER_REQUEST"),
		// Only key attributes may be declared here.
		Attributes: awsdynamodb.TableAttributeArray{
			awsdynamodb.TableAttributeArgs{Name: pulumi.String(dynamo.PartitionKeyAttr), Type: pulumi.String("S")},
			awsdynamodb.TableAttributeArgs{Name: pulumi.String(dynamo.SortKeyAttr), Type: pulumi.String("S")},
		},
		HashKey:  pulumi.String(dynamo.PartitionKeyAttr),
		RangeKey: pulumi.StringPtr(dynamo.SortKeyAttr),
	}
	if *args.RetainOnDelete {
		targs.DeletionProtectionEnabled = pulumi.BoolPtr(true)
		targs.PointInTimeRecovery = &awsdynamodb.TablePointInTimeRecoveryArgs{Enabled: pulumi.Bool(true)}
	}
	if args.EnableStream != nil && *args.EnableStream {
		targs.StreamEnabled = pulumi.BoolPtr(true)
		targs.StreamViewType = pulumi.StringPtr("NEW_AND_OLD_IMAGES")
	}
	return awsdynamodb.NewTable(ctx, fmt.Sprintf("%s-table", name), targs, opts...)
}

// tableActions are every DynamoDB call the store makes.
var tableActions = []string{
	"dynamodb:GetItem",
	"dynamodb:PutItem",
	"dynamodb:DeleteItem",
	"dynamodb:Query",
}

func createServicePolicy(ctx *pulumi.Context, name string, table *awsdynamodb.Table, region string, models []string, opts []pulumi.ResourceOption) (*awsiam.Policy, error) {
	doc := table.Arn.ApplyT(func(tableArn string) (string, error) {
		return servicePolicyDocument(tableArn, region, models)
	}).(pulumi.StringOutput)
	return awsiam.NewPolicy(ctx, fmt.Sprintf("%s-service", name), &awsiam.PolicyArgs{
		Description: pulumi.StringPtr("GlowCycle wellness service access"),
		Policy:      doc,
	}, opts...)
}

func servicePolicyDocument(tableArn, region string, models []string) (string, error) {
	modelArns := make([]string, 0, len(models))
	for _, m := range models {
		modelArns = append(modelArns, fmt.Sprintf("arn:%s:bedrock:%s::foundation-model/%s", awssdk.PartitionForRegion(region), region, m))
	}
	pol := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Sid":      "GlowCycleTable",
				"Effect":   "Allow",
				"Action":   tableActions,
				"Resource": []string{tableArn},
			},
			{
				"Sid":      "BedrockInvoke",
				"Effect":   "Allow",
				"Action":   []string{"bedrock:InvokeModel"},
				"Resource": modelArns,
			},
		},
	}
	b, err := json.Marshal(pol)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
