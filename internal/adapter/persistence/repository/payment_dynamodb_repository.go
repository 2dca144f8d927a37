package repository

import (
	"context"
	"errors"
	"time"

	"safarpay/internal/domain/entities"
	"safarpay/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName = "payments"
	paymentsIDIndex          = "id-index"
)

type paymentItem struct {
	TxRef            string  `dynamodbav:"tx_ref"`
	ID               string  `dynamodbav:"id"`
	BookingID        string  `dynamodbav:"booking_id,omitempty"`
	BookingReference string  `dynamodbav:"booking_reference,omitempty"`
	Amount           float64 `dynamodbav:"amount"`
	Currency         string  `dynamodbav:"currency"`
	Status           string  `dynamodbav:"status"`
	GatewayRef       string  `dynamodbav:"gateway_ref,omitempty"`
	CheckoutURL      string  `dynamodbav:"checkout_url,omitempty"`

	CustomerEmail     string `dynamodbav:"customer_email,omitempty"`
	CustomerFirstName string `dynamodbav:"customer_first_name,omitempty"`
	CustomerLastName  string `dynamodbav:"customer_last_name,omitempty"`

	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at"`
	NotifiedAt string `dynamodbav:"notified_at,omitempty"`
}

// PaymentDynamoRepository persists the payment ledger in DynamoDB.
//
// Table requirements:
//   - PK: tx_ref (string)
//   - GSI: id-index (PK: id)
//
// The conditional put on tx_ref enforces the ledger's uniqueness
// invariant; the conditional updates below enforce the terminal-state
// and notify-once invariants without any application-side locking.

type PaymentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	it := toPaymentItem(p)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Payment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#ref)"),
		ExpressionAttributeNames: map[string]string{
			"#ref": "tx_ref",
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return entities.Payment{}, interfaces.ErrTxRefExists
		}
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByTxRef(ctx context.Context, txRef string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"tx_ref": &types.AttributeValueMemberS{Value: txRef},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentsIDIndex),
		KeyConditionExpression: aws.String("id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Items) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

// FinalizeStatus moves a pending payment to a terminal status. The
// condition keeps terminal states sticky and makes concurrent verifies
// race-free: only one caller ever observes transitioned=true.
func (r *PaymentDynamoRepository) FinalizeStatus(ctx context.Context, txRef string, status entities.PaymentStatus, gatewayRef string) (entities.Payment, bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	update := "SET #st = :st, updated_at = :now"
	values := map[string]types.AttributeValue{
		":st":      &types.AttributeValueMemberS{Value: string(status)},
		":now":     &types.AttributeValueMemberS{Value: now},
		":pending": &types.AttributeValueMemberS{Value: string(entities.PaymentStatusPending)},
	}
	if gatewayRef != "" {
		update += ", gateway_ref = :gref"
		values[":gref"] = &types.AttributeValueMemberS{Value: gatewayRef}
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"tx_ref": &types.AttributeValueMemberS{Value: txRef},
		},
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("#st = :pending"),
		ExpressionAttributeNames:  map[string]string{"#st": "status"},
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if !errors.As(err, &ccf) {
			return entities.Payment{}, false, err
		}
		// Already terminal: keep the stored status but still refresh
		// gateway_ref so diagnostics carry the provider's latest ref.
		p, err := r.refreshGatewayRef(ctx, txRef, gatewayRef, now)
		return p, false, err
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Payment{}, false, err
	}
	return fromPaymentItem(it), true, nil
}

func (r *PaymentDynamoRepository) refreshGatewayRef(ctx context.Context, txRef, gatewayRef, now string) (entities.Payment, error) {
	if gatewayRef == "" {
		return r.GetByTxRef(ctx, txRef)
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"tx_ref": &types.AttributeValueMemberS{Value: txRef},
		},
		UpdateExpression:    aws.String("SET gateway_ref = :gref, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(tx_ref)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gref": &types.AttributeValueMemberS{Value: gatewayRef},
			":now":  &types.AttributeValueMemberS{Value: now},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return entities.Payment{}, err
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

// MarkNotified sets notified_at at most once.
func (r *PaymentDynamoRepository) MarkNotified(ctx context.Context, txRef string, at time.Time) (bool, error) {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"tx_ref": &types.AttributeValueMemberS{Value: txRef},
		},
		UpdateExpression:    aws.String("SET notified_at = :at"),
		ConditionExpression: aws.String("attribute_exists(tx_ref) AND attribute_not_exists(notified_at)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":at": &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toPaymentItem(p entities.Payment) paymentItem {
	it := paymentItem{
		TxRef:             p.TxRef,
		ID:                p.ID,
		BookingID:         p.BookingID,
		BookingReference:  p.BookingReference,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            string(p.Status),
		GatewayRef:        p.GatewayRef,
		CheckoutURL:       p.CheckoutURL,
		CustomerEmail:     p.CustomerEmail,
		CustomerFirstName: p.CustomerFirstName,
		CustomerLastName:  p.CustomerLastName,
		CreatedAt:         p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:         p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if p.NotifiedAt != nil {
		it.NotifiedAt = p.NotifiedAt.UTC().Format(time.RFC3339Nano)
	}
	return it
}

func fromPaymentItem(it paymentItem) entities.Payment {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)

	p := entities.Payment{
		TxRef:             it.TxRef,
		ID:                it.ID,
		BookingID:         it.BookingID,
		BookingReference:  it.BookingReference,
		Amount:            it.Amount,
		Currency:          it.Currency,
		Status:            entities.PaymentStatus(it.Status),
		GatewayRef:        it.GatewayRef,
		CheckoutURL:       it.CheckoutURL,
		CustomerEmail:     it.CustomerEmail,
		CustomerFirstName: it.CustomerFirstName,
		CustomerLastName:  it.CustomerLastName,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	if it.NotifiedAt != "" {
		if notifiedAt, err := time.Parse(time.RFC3339Nano, it.NotifiedAt); err == nil {
			p.NotifiedAt = &notifiedAt
		}
	}
	return p
}
