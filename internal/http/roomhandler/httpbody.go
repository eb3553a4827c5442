package roomhandler

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type HistoryQuery struct {
	Limit int `form:"limit,default=50" binding:"gte=0,lte=200"`
} // @name HistoryQuery

type HistoryURI struct {
	RoomID string `uri:"id" binding:"required,max=64"`
} // @name HistoryURI
