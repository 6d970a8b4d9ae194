package dto

// CreateRequestForm is posted by the customer dashboard. Status is parsed only so it can
// be ignored; new requests always start Pending.
type CreateRequestForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Status      string `form:"status"`
}

// StatusForm carries the admin's status selection.
type StatusForm struct {
	Status string `form:"status"`
}
