package request

// DateRangeRequest is the optional inclusive local date filter used by list endpoints
type DateRangeRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
