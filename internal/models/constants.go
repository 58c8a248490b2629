package models

// Roles пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TaskType константы типов задач
const (
	TaskTypeBlog   = "blog"
	TaskTypeSurvey = "survey"
)

// BidStatus константы статусов заявок
const (
	BidStatusPending  = "pending"
	BidStatusApproved = "approved"
	BidStatusRejected = "rejected"
	BidStatusExpired  = "expired"
)

// SubmissionStatus константы статусов работ
const (
	SubmissionStatusSubmitted   = "submitted"
	SubmissionStatusUnderReview = "under_review"
	SubmissionStatusApproved    = "approved"
	SubmissionStatusRejected    = "rejected"
)

// WithdrawalRequestStatus константы статусов заявки на вывод (слот на пользователе)
const (
	WithdrawalNone     = "none"
	WithdrawalPending  = "pending"
	WithdrawalPaid     = "paid"
	WithdrawalRejected = "rejected"
)

// ReviewAction константы решений админа
const (
	ReviewActionApprove = "approve"
	ReviewActionReject  = "reject"
)

// Выплаты за задачи по типу
var TaskPayouts = map[string]int64{
	TaskTypeBlog:   30,
	TaskTypeSurvey: 20,
}

// ValidTaskTypes список валидных типов задач
var ValidTaskTypes = map[string]struct{}{
	TaskTypeBlog:   {},
	TaskTypeSurvey: {},
}

// ReferralPayouts — выплаты по уровням цепочки, от прямого пригласившего вглубь.
var ReferralPayouts = [4]int64{200, 100, 50, 50}

// Пороговые значения бизнес-правил
const (
	MinWithdrawalBalance  = 400
	MinReferralsToBid     = 2
	MaxBidsPerWindow      = 5
	PremiumCostDiscounted = 150 // при оплаченном вступительном взносе
	PremiumCostFull       = 750
)
