package models

// PlatformProfits — сводка по деньгам платформы для админа.
type PlatformProfits struct {
	TotalWithdrawn           int64 `json:"total_withdrawn"`
	TotalBalanceInSystem     int64 `json:"total_balance_in_system"`
	TotalDistributed         int64 `json:"total_distributed"`
	TotalReferralEarnings    int64 `json:"total_referral_earnings"`
	TotalTaskEarnings        int64 `json:"total_task_earnings"`
	TotalPaidFromSubmissions int64 `json:"total_paid_from_submissions"`
	NetBalance               int64 `json:"net_balance"`
	ActiveUsers              int   `json:"active_users"`
	PremiumUsers             int   `json:"premium_users"`
	TotalUsers               int   `json:"total_users"`
	ApprovedSubmissions      int   `json:"approved_submissions"`
}

// UserStats — сводка по одному пользователю для дашборда.
type UserStats struct {
	TotalBids           int   `json:"total_bids"`
	ApprovedBids        int   `json:"approved_bids"`
	TotalSubmissions    int   `json:"total_submissions"`
	ApprovedSubmissions int   `json:"approved_submissions"`
	TaskEarnings        int64 `json:"task_earnings"`
	ReferralEarnings    int64 `json:"referral_earnings"`
}
