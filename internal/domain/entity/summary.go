package entity

// CategoryTotal is the summed amount of one category
type CategoryTotal struct {
	Category string  `json:"_id"`
	Total    float64 `json:"total"`
}

// Summary is the dashboard aggregate for one owner
type Summary struct {
	TotalExpense       float64         `json:"totalExpense"`
	CategoryBreakdown  []CategoryTotal `json:"categoryBreakdown"`
	RecentTransactions []*Transaction  `json:"recentTransactions"`
}
