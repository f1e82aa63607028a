package entity

// StatsSummary is the aggregate counter block served by the stats endpoint.
type StatsSummary struct {
	WalletsAnalyzed int `json:"wallets_analyzed"`
	UsersProtected  int `json:"users_protected"`
	ScamsDetected   int `json:"scams_detected"`
}
