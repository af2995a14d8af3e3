package todos

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// pageKey is the flattened shape of a LastEvaluatedKey from a query on the
// (userId, createdAt) GSI. DynamoDB returns the index keys plus the table
// keys, and all three are needed in ExclusiveStartKey to resume exactly
// where the previous page stopped.
type pageKey struct {
	UserID    string `json:"userId" dynamodbav:"userId"`
	TodoID    string `json:"todoId" dynamodbav:"todoId"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
}

// encodeCursor turns a LastEvaluatedKey into the opaque token handed to
// clients: base64 over the JSON of the key fields. Returns "" when there
// is no further page.
func encodeCursor(lastKey map[string]types.AttributeValue) (string, error) {
	if lastKey == nil {
		return "", nil
	}

	var pk pageKey
	if err := attributevalue.UnmarshalMap(lastKey, &pk); err != nil {
		return "", fmt.Errorf("todos: encode cursor: %w", err)
	}

	b, err := json.Marshal(pk)
	if err != nil {
		return "", fmt.Errorf("todos: encode cursor: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// decodeCursor reverses encodeCursor. An empty token means "start from the
// beginning"; anything undecodable is ErrBadCursor.
func decodeCursor(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrBadCursor
	}

	var pk pageKey
	if err := json.Unmarshal(data, &pk); err != nil {
		return nil, ErrBadCursor
	}
	if pk.UserID == "" || pk.TodoID == "" || pk.CreatedAt == "" {
		return nil, ErrBadCursor
	}

	key, err := attributevalue.MarshalMap(pk)
	if err != nil {
		return nil, ErrBadCursor
	}
	return key, nil
}
