package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/platform/dynamodb/client"
)

const (
	documentSK   = "STATE"
	documentType = "Document"
)

// documentItem is the single-table layout of the stored document. The body
// keeps the JSON encoding so decimal amounts survive unchanged.
type documentItem struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	Type      string    `dynamodbav:"Type"`
	Body      string    `dynamodbav:"Body"`
	UpdatedAt time.Time `dynamodbav:"UpdatedAt"`
}

// DynamoDBDocumentStorage implements document.Storage with one DynamoDB item
type DynamoDBDocumentStorage struct {
	client client.Client
	table  string
	name   string
	logger *zap.Logger
}

// NewDynamoDBDocumentStorage creates a new DynamoDBDocumentStorage
func NewDynamoDBDocumentStorage(client client.Client, table, name string, logger *zap.Logger) *DynamoDBDocumentStorage {
	return &DynamoDBDocumentStorage{
		client: client,
		table:  table,
		name:   name,
		logger: logger,
	}
}

func (s *DynamoDBDocumentStorage) pk() string {
	return fmt.Sprintf("DOCUMENT#%s", s.name)
}

// Read implements document.Storage
func (s *DynamoDBDocumentStorage) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: s.pk()},
			"SK": &types.AttributeValueMemberS{Value: documentSK},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		s.logger.Error("failed to get document item", zap.String("table", s.table), zap.Error(err))
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, document.ErrNoDocument
	}

	var item documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document item: %w", err)
	}
	return []byte(item.Body), nil
}

// Write implements document.Storage
func (s *DynamoDBDocumentStorage) Write(ctx context.Context, body []byte) error {
	item, err := attributevalue.MarshalMap(documentItem{
		PK:        s.pk(),
		SK:        documentSK,
		Type:      documentType,
		Body:      string(body),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal document item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		s.logger.Error("failed to put document item", zap.String("table", s.table), zap.Error(err))
		return err
	}
	return nil
}
