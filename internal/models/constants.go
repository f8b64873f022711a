package models

const (
	StatusPending          = "pending"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
	StatusCancelled        = "cancelled"
	StatusModifiedPending  = "modified_pending"
	StatusModifiedApproved = "modified_approved"
	StatusModifiedRejected = "modified_rejected"
	StatusCompleted        = "completed"
)

const (
	TxDeposit         = "deposit"
	TxWithdrawal      = "withdrawal"
	TxRentPayment     = "rent_payment"
	TxRefund          = "refund"
	TxCancellationFee = "cancellation_fee"
)

const (
	PaymentBalance = "balance"
	PaymentCash    = "cash"
)

const (
	ApartmentActive   = "active"
	ApartmentInactive = "inactive"
	ApartmentDeleted  = "deleted"
)

const (
	RoleTenant = "tenant"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

const (
	// CancellationWindowHours минимальный срок до заезда для отмены/изменения
	CancellationWindowHours = 24

	// NightlyRateCutoffNights граница посуточного тарифа
	NightlyRateCutoffNights = 30

	// NotifyQueueSize размер очереди воркера уведомлений
	NotifyQueueSize = 128

	// BookingRateLimitAttempts количество попыток бронирования в окне
	BookingRateLimitAttempts = 10

	// BookingRateLimitWindow окно ограничения попыток бронирования
	BookingRateLimitWindow = 60 // секунды
)

// BlockingStatuses учитываются при проверке занятости дат.
var BlockingStatuses = []string{StatusPending, StatusApproved, StatusModifiedApproved}

// TerminalStatuses не допускают дальнейших переходов.
var TerminalStatuses = []string{StatusRejected, StatusCancelled, StatusModifiedRejected}

func IsTerminalStatus(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsBlockingStatus(status string) bool {
	for _, s := range BlockingStatuses {
		if s == status {
			return true
		}
	}
	return false
}
