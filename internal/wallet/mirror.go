package wallet

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mirror is the best-effort remote store. It may lag or fail; callers never
// wait on it and never surface its errors. Local state always commits first.
type Mirror interface {
	SaveTransaction(ctx context.Context, tx *Transaction) error
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	SavePendingPayment(ctx context.Context, p *PendingPayment) error
	UpdatePendingPayment(ctx context.Context, p *PendingPayment) error
}

// NopMirror is used when no remote backend is configured.
type NopMirror struct{}

func (NopMirror) SaveTransaction(context.Context, *Transaction) error      { return nil }
func (NopMirror) UpdateTransaction(context.Context, *Transaction) error    { return nil }
func (NopMirror) SavePendingPayment(context.Context, *PendingPayment) error { return nil }
func (NopMirror) UpdatePendingPayment(context.Context, *PendingPayment) error {
	return nil
}

// transactionRecord flattens a Transaction for relational storage; metadata
// is kept as a JSON blob.
type transactionRecord struct {
	ID          string `gorm:"primary_key"`
	UserID      string `gorm:"index;not null"`
	Type        string `gorm:"not null"`
	Status      string `gorm:"not null"`
	Amount      float64
	Currency    string
	Fee         float64
	Method      string
	Description string
	Metadata    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func (transactionRecord) TableName() string { return "wallet_transactions" }

type pendingPaymentRecord struct {
	ID              string `gorm:"primary_key"`
	UserID          string `gorm:"index;not null"`
	Type            string `gorm:"not null"`
	Amount          float64
	Currency        string
	Method          string
	TransactionID   string `gorm:"index"`
	PaymentProofUrl string
	Status          string `gorm:"not null"`
	Reason          string
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
	BankDetails     string
}

func (pendingPaymentRecord) TableName() string { return "wallet_pending_payments" }

// GormMirror mirrors the ledger into Postgres.
type GormMirror struct {
	db *gorm.DB
}

func NewGormMirror(db *gorm.DB) *GormMirror {
	db.AutoMigrate(&transactionRecord{}, &pendingPaymentRecord{})
	return &GormMirror{db: db}
}

func (m *GormMirror) SaveTransaction(ctx context.Context, tx *Transaction) error {
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(toTransactionRecord(tx)).Error
}

func (m *GormMirror) UpdateTransaction(ctx context.Context, tx *Transaction) error {
	return m.SaveTransaction(ctx, tx)
}

func (m *GormMirror) SavePendingPayment(ctx context.Context, p *PendingPayment) error {
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(toPendingPaymentRecord(p)).Error
}

func (m *GormMirror) UpdatePendingPayment(ctx context.Context, p *PendingPayment) error {
	return m.SavePendingPayment(ctx, p)
}

func toTransactionRecord(tx *Transaction) *transactionRecord {
	meta, _ := json.Marshal(tx.Metadata)
	return &transactionRecord{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Type:        string(tx.Type),
		Status:      string(tx.Status),
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Fee:         tx.Fee,
		Method:      tx.Method,
		Description: tx.Description,
		Metadata:    string(meta),
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
		CompletedAt: tx.CompletedAt,
	}
}

func toPendingPaymentRecord(p *PendingPayment) *pendingPaymentRecord {
	bank, _ := json.Marshal(p.BankDetails)
	return &pendingPaymentRecord{
		ID:              p.ID,
		UserID:          p.UserID,
		Type:            string(p.Type),
		Amount:          p.Amount,
		Currency:        p.Currency,
		Method:          p.Method,
		TransactionID:   p.TransactionID,
		PaymentProofUrl: p.PaymentProofUrl,
		Status:          string(p.Status),
		Reason:          p.Reason,
		SubmittedAt:     p.SubmittedAt,
		ReviewedAt:      p.ReviewedAt,
		BankDetails:     string(bank),
	}
}

// MongoMirror mirrors the ledger into MongoDB, upserting by id.
type MongoMirror struct {
	transactions *mongo.Collection
	payments     *mongo.Collection
}

func NewMongoMirror(client *mongo.Client, db string) *MongoMirror {
	return &MongoMirror{
		transactions: client.Database(db).Collection("transactions"),
		payments:     client.Database(db).Collection("pending_payments"),
	}
}

func (m *MongoMirror) SaveTransaction(ctx context.Context, tx *Transaction) error {
	_, err := m.transactions.UpdateOne(ctx,
		bson.M{"id": tx.ID},
		bson.M{"$set": tx},
		options.Update().SetUpsert(true))
	return err
}

func (m *MongoMirror) UpdateTransaction(ctx context.Context, tx *Transaction) error {
	return m.SaveTransaction(ctx, tx)
}

func (m *MongoMirror) SavePendingPayment(ctx context.Context, p *PendingPayment) error {
	_, err := m.payments.UpdateOne(ctx,
		bson.M{"id": p.ID},
		bson.M{"$set": p},
		options.Update().SetUpsert(true))
	return err
}

func (m *MongoMirror) UpdatePendingPayment(ctx context.Context, p *PendingPayment) error {
	return m.SavePendingPayment(ctx, p)
}
