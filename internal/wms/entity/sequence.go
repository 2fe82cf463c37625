package entity

// NumberSequence 单号序列，按租户+业务域单调递增。
// 已发放的序号不回收：删除单据后其单号永久作废
type NumberSequence struct {
	CompanyID string `json:"company_id" gorm:"primaryKey;size:32"`
	Scope     string `json:"scope" gorm:"primaryKey;size:20"`
	Value     int64  `json:"value" gorm:"not null;default:0"`
}

func (NumberSequence) TableName() string {
	return "wms_number_sequences"
}

const (
	SequenceTransferOrder = "transfer_order"
	SequencePurchaseOrder = "purchase_order"
	SequenceReceiving     = "receiving"
)
