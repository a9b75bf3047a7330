package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient defines the interface needed for scanning.
type DynamoDBClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBDataFetcher implements DataFetcher using AWS DynamoDB.
// It maps the source name to a DynamoDB table name.
type DynamoDBDataFetcher struct {
	Client DynamoDBClient
}

// NewDynamoDBDataFetcher creates a new fetcher with the given AWS config.
func NewDynamoDBDataFetcher(cfg aws.Config) *DynamoDBDataFetcher {
	return &DynamoDBDataFetcher{
		Client: dynamodb.NewFromConfig(cfg),
	}
}

// scanInput builds the scan with one string equality condition per filter.
func scanInput(table string, filters map[string]string) *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if len(filters) == 0 {
		return input
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, len(keys))
	input.ExpressionAttributeNames = make(map[string]string, len(keys))
	input.ExpressionAttributeValues = make(map[string]types.AttributeValue, len(keys))
	for i, k := range keys {
		// Placeholders avoid clashes with reserved words.
		kName := fmt.Sprintf("#k%d", i)
		vName := fmt.Sprintf(":v%d", i)
		conditions[i] = kName + " = " + vName
		input.ExpressionAttributeNames[kName] = k
		input.ExpressionAttributeValues[vName] = &types.AttributeValueMemberS{Value: filters[k]}
	}
	input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
	return input
}

// Fetch scans the table named by source, following pagination.
func (f *DynamoDBDataFetcher) Fetch(ctx context.Context, source string, filters map[string]string) ([]map[string]interface{}, error) {
	paginator := dynamodb.NewScanPaginator(f.Client, scanInput(source, filters))

	var items []map[string]interface{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table %s: %w", source, err)
		}

		var pageItems []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		items = append(items, pageItems...)
	}

	return items, nil
}
