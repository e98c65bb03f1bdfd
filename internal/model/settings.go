package model

// Well-known application setting keys.
const (
	// SettingMonthlyIncome is the informational monthly income target shown
	// on the dashboard. It does not participate in balance computation.
	SettingMonthlyIncome = "monthly_income"
)
