package model

const (
	PaymentSuccess = "success"
	PaymentPending = "pending"
	PaymentFailed  = "failed"
)

// Payment 支付记录由支付服务写入，这里只读
type Payment struct {
	BaseModel
	UserID         uint    `gorm:"not null;index:idx_payment_user_test" json:"userId"`
	TestID         *uint   `gorm:"index:idx_payment_user_test" json:"testId,omitempty"`
	Amount         float64 `json:"amount"`
	Status         string  `gorm:"size:20;not null;index" json:"status"`
	TransactionRef string  `gorm:"size:100" json:"transactionRef"`
}

func (Payment) TableName() string {
	return "payments"
}
