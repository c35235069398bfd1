package feedevent

// Event announces one successfully exported feed to downstream consumers.
type Event struct {
	FileName   string `json:"file_name"`
	OrderCount int    `json:"order_count"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}
