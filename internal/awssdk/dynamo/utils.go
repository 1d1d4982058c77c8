package dynamo

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mikecbrant/glowcycle/internal/store"
)

// Key attribute names of the GlowCycle table.
const (
	PartitionKeyAttr = "user"
	SortKeyAttr      = "date"
)

// Item is a shorthand for a DynamoDB item.
type Item = map[string]types.AttributeValue

// StringAttribute renders a string AttributeValue.
func StringAttribute(s string) types.AttributeValue { return &types.AttributeValueMemberS{Value: s} }

// Key renders the primary key of (pk, sk).
func Key(pk, sk string) Item {
	return Item{PartitionKeyAttr: StringAttribute(pk), SortKeyAttr: StringAttribute(sk)}
}

// toItem flattens a store item into a DynamoDB item.
func toItem(it store.Item) Item {
	out := make(Item, len(it.Attrs)+2)
	for k, v := range it.Attrs {
		out[k] = v
	}
	out[PartitionKeyAttr] = StringAttribute(it.PK)
	out[SortKeyAttr] = StringAttribute(it.SK)
	return out
}

// fromItem splits the key attributes out of a DynamoDB item.
func fromItem(raw Item) (store.Item, error) {
	pk, err := stringAttr(raw, PartitionKeyAttr)
	if err != nil {
		return store.Item{}, err
	}
	sk, err := stringAttr(raw, SortKeyAttr)
	if err != nil {
		return store.Item{}, err
	}
	attrs := make(store.Attributes, len(raw))
	for k, v := range raw {
		if k != PartitionKeyAttr && k != SortKeyAttr {
			attrs[k] = v
		}
	}
	return store.Item{PK: pk, SK: sk, Attrs: attrs}, nil
}

func stringAttr(raw Item, name string) (string, error) {
	s, ok := raw[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("dynamo: key attribute %q missing or not a string", name)
	}
	return s.Value, nil
}
