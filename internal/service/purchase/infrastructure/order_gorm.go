// internal/service/purchase/infrastructure/order_gorm.go
package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"pulsequeue/internal/service/purchase/domain"
)

// PurchaseOrderModel is the gorm mapping for the purchase_orders ledger.
type PurchaseOrderModel struct {
	OrderID    string `gorm:"primaryKey;size:64"`
	CustomerID string `gorm:"size:64;index"`
	Items      string `gorm:"type:text"`
	State      string `gorm:"size:32;index"`
	PaymentID  string `gorm:"size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// NewMysqlDB opens the ledger database.
func NewMysqlDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// GormOrderRepository is the gorm implementation of domain.OrderRepository.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) (*GormOrderRepository, error) {
	if err := db.AutoMigrate(&PurchaseOrderModel{}); err != nil {
		return nil, err
	}
	return &GormOrderRepository{db: db}, nil
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.PurchaseOrder) error {
	model, err := toOrderModel(order)
	if err != nil {
		return err
	}
	// Save upserts by primary key, so repeated writes for the same order
	// just refresh the row.
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	var model PurchaseOrderModel
	err := r.db.WithContext(ctx).Where("order_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return fromOrderModel(&model)
}

func (r *GormOrderRepository) UpdateState(ctx context.Context, id string, state domain.State, paymentID string) error {
	updates := map[string]interface{}{"state": string(state)}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}
	return r.db.WithContext(ctx).
		Model(&PurchaseOrderModel{}).
		Where("order_id = ?", id).
		Updates(updates).Error
}

func toOrderModel(order *domain.PurchaseOrder) (*PurchaseOrderModel, error) {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderModel{
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		Items:      string(itemsJSON),
		State:      string(order.State),
		PaymentID:  order.PaymentID,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}, nil
}

func fromOrderModel(model *PurchaseOrderModel) (*domain.PurchaseOrder, error) {
	var items []domain.OrderItem
	if err := json.Unmarshal([]byte(model.Items), &items); err != nil {
		return nil, err
	}
	return &domain.PurchaseOrder{
		OrderID:    model.OrderID,
		CustomerID: model.CustomerID,
		Items:      items,
		State:      domain.State(model.State),
		PaymentID:  model.PaymentID,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}
