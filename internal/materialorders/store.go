package materialorders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/imrishuroy/go-material-orders/internal/aws"
)

// DynamoStore keeps material orders in a DynamoDB table keyed by id.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newID     func() string
}

// NewDynamoStore creates a store bound to tableName.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// Create assigns an id and timestamps to o and writes it.
func (s *DynamoStore) Create(ctx context.Context, o MaterialOrder) (*MaterialOrder, error) {
	now := s.nowFunc().UTC()
	o.ID = s.newID()
	o.CreatedAt = now
	o.UpdatedAt = now

	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return nil, fmt.Errorf("marshal material order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      awsString("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": "id"},
	})
	if err != nil {
		return nil, fmt.Errorf("put item: %w", err)
	}
	return &o, nil
}

// List scans the whole table. Order is unspecified.
func (s *DynamoStore) List(ctx context.Context) ([]MaterialOrder, error) {
	out := []MaterialOrder{}
	paginator := dyn.NewScanPaginator(s.client, &dyn.ScanInput{TableName: &s.tableName})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var batch []MaterialOrder
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal material orders: %w", err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Get fetches a material order by id.
func (s *DynamoStore) Get(ctx context.Context, id string) (*MaterialOrder, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var o MaterialOrder
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal material order: %w", err)
	}
	return &o, nil
}

// Update merges p into the stored document and returns the result.
func (s *DynamoStore) Update(ctx context.Context, id string, p Patch) (*MaterialOrder, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	if p.IsEmpty() {
		return s.Get(ctx, id)
	}

	expr, names, values, err := updateExpression(p, s.nowFunc().UTC())
	if err != nil {
		return nil, err
	}
	names["#pk"] = "id"

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       key(id),
		UpdateExpression:          &expr,
		ConditionExpression:       awsString("attribute_exists(#pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	var o MaterialOrder
	if err := attributevalue.UnmarshalMap(out.Attributes, &o); err != nil {
		return nil, fmt.Errorf("unmarshal material order: %w", err)
	}
	return &o, nil
}

// Delete removes a material order and returns what was stored.
func (s *DynamoStore) Delete(ctx context.Context, id string) (*MaterialOrder, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	out, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:                &s.tableName,
		Key:                      key(id),
		ConditionExpression:      awsString("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": "id"},
		ReturnValues:             types.ReturnValueAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}

	var o MaterialOrder
	if err := attributevalue.UnmarshalMap(out.Attributes, &o); err != nil {
		return nil, fmt.Errorf("unmarshal material order: %w", err)
	}
	return &o, nil
}

// updateExpression builds "SET #f0 = :v0, ..." for every field in p plus updated_at.
func updateExpression(p Patch, now time.Time) (string, map[string]string, map[string]types.AttributeValue, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var sets []string

	set := func(attr string, v interface{}) error {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", attr, err)
		}
		n := len(sets)
		nameKey, valueKey := fmt.Sprintf("#f%d", n), fmt.Sprintf(":v%d", n)
		names[nameKey] = attr
		values[valueKey] = av
		sets = append(sets, nameKey+" = "+valueKey)
		return nil
	}

	fields := []struct {
		attr  string
		value interface{}
		ok    bool
	}{
		{"material_id", p.MaterialID, p.MaterialID != nil},
		{"item_description", p.ItemDescription, p.ItemDescription != nil},
		{"supplier", p.Supplier, p.Supplier != nil},
		{"quantity", p.Quantity, p.Quantity != nil},
		{"unit_of_measurement", p.UnitOfMeasurement, p.UnitOfMeasurement != nil},
		{"unit_price", p.UnitPrice, p.UnitPrice != nil},
		{"total_price", p.TotalPrice, p.TotalPrice != nil},
		{"order_date", p.OrderDate, p.OrderDate != nil},
		{"items", p.Items, p.Items != nil},
		{"status", p.Status, p.Status != nil},
		{"updated_at", now, true},
	}
	for _, f := range fields {
		if !f.ok {
			continue
		}
		if err := set(f.attr, f.value); err != nil {
			return "", nil, nil, err
		}
	}

	return "SET " + strings.Join(sets, ", "), names, values, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// validID reports whether id could have been assigned by Create.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func awsString(s string) *string { return &s }
