package repository

import (
	"context"
	"time"

	"safarpay/internal/domain/entities"
	"safarpay/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultBookingsTableName = "bookings"

type bookingItem struct {
	ID        string  `dynamodbav:"id"`
	ListingID string  `dynamodbav:"listing_id,omitempty"`
	Reference string  `dynamodbav:"reference,omitempty"`
	Price     float64 `dynamodbav:"price"`

	CustomerEmail     string `dynamodbav:"customer_email,omitempty"`
	CustomerFirstName string `dynamodbav:"customer_first_name,omitempty"`
	CustomerLastName  string `dynamodbav:"customer_last_name,omitempty"`

	CreatedAt string `dynamodbav:"created_at,omitempty"`
}

// BookingDynamoRepository reads booking snapshots from the listings
// service's DynamoDB table.
//
// Table requirements:
//   - PK: id (string)

type BookingDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IBookingRepository = (*BookingDynamoRepository)(nil)

func NewBookingDynamoRepository(ddb *dynamodb.Client) *BookingDynamoRepository {
	return &BookingDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("BOOKINGS_TABLE", defaultBookingsTableName),
	}
}

func (r *BookingDynamoRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return entities.Booking{}, err
	}
	if len(out.Item) == 0 {
		return entities.Booking{}, nil
	}

	var it bookingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Booking{}, err
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	return entities.Booking{
		ID:                it.ID,
		ListingID:         it.ListingID,
		Reference:         it.Reference,
		Price:             it.Price,
		CustomerEmail:     it.CustomerEmail,
		CustomerFirstName: it.CustomerFirstName,
		CustomerLastName:  it.CustomerLastName,
		CreatedAt:         createdAt,
	}, nil
}
