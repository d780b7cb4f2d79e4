package rest

import (
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}

type imageUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type imageConfirmRequest struct {
	Key string `json:"key" validate:"required"`
}

type imageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ImageURL  string    `json:"image_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type userCreateRequest struct {
	Username  string  `json:"username" validate:"required,max=50"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,max=72"`
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
}

type userUpdateRequest struct {
	Username        *string `json:"username" validate:"omitempty,min=1,max=50"`
	Email           *string `json:"email" validate:"omitempty,email"`
	FirstName       *string `json:"first_name" validate:"omitempty,max=50"`
	LastName        *string `json:"last_name" validate:"omitempty,max=50"`
	Password        *string `json:"password" validate:"omitempty,min=1,max=72"`
	CurrentPassword *string `json:"current_password"`
}

// userResponse hides the account fields from everyone but the account
// holder: those are nil in the public view.
type userResponse struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Email         *string `json:"email,omitempty"`
	Disabled      *bool   `json:"disabled,omitempty"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}

func newUserResponse(u *models.User, private bool) userResponse {
	r := userResponse{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
	if private {
		email, disabled, verified := u.Email, u.Disabled, u.EmailVerified
		r.Email, r.Disabled, r.EmailVerified = &email, &disabled, &verified
	}
	return r
}

type carCreateRequest struct {
	Make     string  `json:"make" validate:"required,max=50"`
	Model    string  `json:"model" validate:"required,max=50"`
	Year     int     `json:"year" validate:"required,gte=1886,lte=2100"`
	Trim     *string `json:"trim" validate:"omitempty,max=50"`
	VIN      *string `json:"vin" validate:"omitempty,max=17"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

func (r carCreateRequest) model() *models.Car {
	return &models.Car{Make: r.Make, Model: r.Model, Year: r.Year, Trim: r.Trim, VIN: r.VIN, ImageURL: r.ImageURL}
}

type carUpdateRequest struct {
	Make     *string `json:"make" validate:"omitempty,min=1,max=50"`
	Model    *string `json:"model" validate:"omitempty,min=1,max=50"`
	Year     *int    `json:"year" validate:"omitempty,gte=1886,lte=2100"`
	Trim     *string `json:"trim" validate:"omitempty,max=50"`
	VIN      *string `json:"vin" validate:"omitempty,max=17"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

func (r carUpdateRequest) update() models.CarUpdate {
	return models.CarUpdate{Make: r.Make, Model: r.Model, Year: r.Year, Trim: r.Trim, VIN: r.VIN, ImageURL: r.ImageURL}
}

type carResponse struct {
	ID       int64   `json:"id"`
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Trim     *string `json:"trim"`
	VIN      *string `json:"vin"`
	ImageURL *string `json:"image_url"`
	UserID   int64   `json:"user_id"`
}

func newCarResponse(c *models.Car) carResponse {
	return carResponse{ID: c.ID, Make: c.Make, Model: c.Model, Year: c.Year, Trim: c.Trim, VIN: c.VIN, ImageURL: c.ImageURL, UserID: c.UserID}
}

type buildListCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	CarID       int64   `json:"car_id" validate:"required,gt=0"`
}

func (r buildListCreateRequest) model() *models.BuildList {
	return &models.BuildList{Name: r.Name, Description: r.Description, CarID: r.CarID}
}

type buildListUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	CarID       *int64  `json:"car_id" validate:"omitempty,gt=0"`
}

func (r buildListUpdateRequest) update() models.BuildListUpdate {
	return models.BuildListUpdate{Name: r.Name, Description: r.Description, CarID: r.CarID}
}

type buildListResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CarID       int64   `json:"car_id"`
}

func newBuildListResponse(bl *models.BuildList) buildListResponse {
	return buildListResponse{ID: bl.ID, Name: bl.Name, Description: bl.Description, CarID: bl.CarID}
}

type partCreateRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	PartType     *string `json:"part_type" validate:"omitempty,max=50"`
	PartNumber   *string `json:"part_number" validate:"omitempty,max=50"`
	Manufacturer *string `json:"manufacturer" validate:"omitempty,max=50"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Price        *int    `json:"price" validate:"omitempty,gte=0"`
	BuildListID  int64   `json:"build_list_id" validate:"required,gt=0"`
}

func (r partCreateRequest) model() *models.Part {
	return &models.Part{
		Name: r.Name, PartType: r.PartType, PartNumber: r.PartNumber, Manufacturer: r.Manufacturer,
		Description: r.Description, Price: r.Price, BuildListID: r.BuildListID,
	}
}

type partUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	PartType     *string `json:"part_type" validate:"omitempty,max=50"`
	PartNumber   *string `json:"part_number" validate:"omitempty,max=50"`
	Manufacturer *string `json:"manufacturer" validate:"omitempty,max=50"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Price        *int    `json:"price" validate:"omitempty,gte=0"`
	BuildListID  *int64  `json:"build_list_id" validate:"omitempty,gt=0"`
}

func (r partUpdateRequest) update() models.PartUpdate {
	return models.PartUpdate{
		Name: r.Name, PartType: r.PartType, PartNumber: r.PartNumber, Manufacturer: r.Manufacturer,
		Description: r.Description, Price: r.Price, BuildListID: r.BuildListID,
	}
}

type partResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PartType     *string `json:"part_type"`
	PartNumber   *string `json:"part_number"`
	Manufacturer *string `json:"manufacturer"`
	Description  *string `json:"description"`
	Price        *int    `json:"price"`
	BuildListID  int64   `json:"build_list_id"`
}

func newPartResponse(p *models.Part) partResponse {
	return partResponse{
		ID: p.ID, Name: p.Name, PartType: p.PartType, PartNumber: p.PartNumber, Manufacturer: p.Manufacturer,
		Description: p.Description, Price: p.Price, BuildListID: p.BuildListID,
	}
}

func mapSlice[T, R any](in []*T, f func(*T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
