package request

// CreateBookingRequest names the artisan by id or by exact name; id wins when both are set.
type CreateBookingRequest struct {
	ArtisanID   string `json:"artisan_id" validate:"required_without=ArtisanName,omitempty,uuid"`
	ArtisanName string `json:"artisan_name" validate:"required_without=ArtisanID,omitempty,max=100"`
	ServiceDate string `json:"service_date" validate:"required,datetime=2006-01-02"`
	ServiceTime string `json:"service_time" validate:"required"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed canceled"`
}
