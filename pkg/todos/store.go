package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	hashKey = "userId"
	sortKey = "todoId"

	// DefaultLimit and MaxLimit bound the page size for List; out-of-range
	// values are clamped silently.
	DefaultLimit = 20
	MaxLimit     = 100
)

// DynamoDBClient is the slice of the SDK client the store uses, kept as an
// interface so tests can substitute it.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store is the adapter contract the handlers depend on.
type Store interface {
	Create(ctx context.Context, userID, name, dueDate string) (*Item, error)
	List(ctx context.Context, userID string, limit int32, cursor string) ([]Item, string, error)
	Update(ctx context.Context, userID, todoID string, patch Patch) (*Item, error)
	Delete(ctx context.Context, userID, todoID string) error
	SetAttachmentURL(ctx context.Context, userID, todoID, url string) error
}

type dynamoStore struct {
	client DynamoDBClient
	table  string
	index  string
	valid  *validator.Validate
}

// New creates a store over the given table and its (userId, createdAt)
// listing index. The client is expected to be shared process-wide.
func New(client DynamoDBClient, table, index string) Store {
	return &dynamoStore{
		client: client,
		table:  table,
		index:  index,
		valid:  newValidator(),
	}
}

// Create writes a full record in one unconditional PutItem. The id and the
// createdAt stamp are generated here and never change afterwards.
func (s *dynamoStore) Create(ctx context.Context, userID, name, dueDate string) (*Item, error) {
	item := Item{
		UserID:    userID,
		TodoID:    uuid.NewString(),
		Name:      strings.TrimSpace(name),
		DueDate:   dueDate,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Done:      false,
	}

	if err := s.valid.StructCtx(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validationDetail(err))
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("todos: marshal failed: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return nil, fmt.Errorf("todos: put failed: %w", err)
	}
	return &item, nil
}

// List queries the GSI newest-created-first. The cursor is opaque to the
// caller; an empty one starts from the top and the returned token resumes
// the next page with no duplicates or gaps.
func (s *dynamoStore) List(ctx context.Context, userID string, limit int32, cursor string) ([]Item, string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	startKey, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	keyCond := expression.KeyEqual(expression.Key(hashKey), expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, "", fmt.Errorf("todos: build query: %w", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(s.index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(limit),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return nil, "", fmt.Errorf("todos: query failed: %w", err)
	}

	items := make([]Item, 0, len(out.Items))
	for _, raw := range out.Items {
		var item Item
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, "", fmt.Errorf("todos: unmarshal failed: %w", err)
		}
		items = append(items, item)
	}

	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return items, next, nil
}

// Update applies only the fields present in the patch. The
// attribute_exists condition is the existence check: there is no prior
// read, so a concurrent delete can never turn this into an insert.
func (s *dynamoStore) Update(ctx context.Context, userID, todoID string, patch Patch) (*Item, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}

	update := expression.UpdateBuilder{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		update = update.Set(expression.Name("name"), expression.Value(name))
	}
	if patch.DueDate != nil {
		if _, err := time.Parse(time.DateOnly, *patch.DueDate); err != nil {
			return nil, fmt.Errorf("%w: dueDate must be YYYY-MM-DD", ErrValidation)
		}
		update = update.Set(expression.Name("dueDate"), expression.Value(*patch.DueDate))
	}
	if patch.Done != nil {
		update = update.Set(expression.Name("done"), expression.Value(*patch.Done))
	}

	out, err := s.conditionalUpdate(ctx, userID, todoID, update)
	if err != nil {
		return nil, err
	}

	var item Item
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("todos: unmarshal failed: %w", err)
	}
	return &item, nil
}

// Delete removes the item by key. Deleting a missing key is not an error.
func (s *dynamoStore) Delete(ctx context.Context, userID, todoID string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(userID, todoID),
	}); err != nil {
		return fmt.Errorf("todos: delete failed: %w", err)
	}
	return nil
}

// SetAttachmentURL records the expected public location of the item's
// attachment. It shares the existence precondition with Update, so it
// doubles as the "item exists" check for the upload-url flow.
func (s *dynamoStore) SetAttachmentURL(ctx context.Context, userID, todoID, url string) error {
	update := expression.UpdateBuilder{}.
		Set(expression.Name("attachmentUrl"), expression.Value(url))

	_, err := s.conditionalUpdate(ctx, userID, todoID, update)
	return err
}

// conditionalUpdate runs an UpdateItem guarded by attribute_exists on the
// sort key, translating a failed condition into ErrNotFound.
func (s *dynamoStore) conditionalUpdate(ctx context.Context, userID, todoID string, update expression.UpdateBuilder) (*dynamodb.UpdateItemOutput, error) {
	cond := expression.AttributeExists(expression.Name(sortKey))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("todos: build update: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       itemKey(userID, todoID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("todos: update failed: %w", err)
	}
	return out, nil
}

func itemKey(userID, todoID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		hashKey: &types.AttributeValueMemberS{Value: userID},
		sortKey: &types.AttributeValueMemberS{Value: todoID},
	}
}

// validationDetail flattens a validator error into a single client-safe
// sentence naming the first offending field.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "dateonly":
			return "dueDate must be YYYY-MM-DD"
		default:
			return fmt.Sprintf("%s is required", jsonField(fe.Field()))
		}
	}
	return "invalid item"
}

func jsonField(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "DueDate":
		return "dueDate"
	case "UserID":
		return "userId"
	default:
		return structField
	}
}
