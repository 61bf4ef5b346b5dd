package models

import "time"

// PlaceholderImage is rendered whenever an entity has no usable image.
const PlaceholderImage = "/static/images/placeholder.svg"

type Clinic struct {
	ID          int64   `json:"id" form:"-"`
	Name        string  `json:"name" form:"name" validate:"required,max=120"`
	Address     string  `json:"address" form:"address"`
	Phone       string  `json:"phone" form:"phone"`
	Description string  `json:"description" form:"description"`
	ImageURL    string  `json:"imageUrl" form:"imageUrl"`
	Rating      float64 `json:"rating" form:"rating"`
}

type Doctor struct {
	ID         int64  `json:"id" form:"-"`
	ClinicID   int64  `json:"clinicId" form:"clinicId"`
	Name       string `json:"name" form:"name" validate:"required,max=120"`
	Specialty  string `json:"specialty" form:"specialty"`
	Expertise  string `json:"expertise" form:"expertise"`
	Experience int    `json:"experience" form:"experience"`
	ImageURL   string `json:"imageUrl" form:"imageUrl"`
}

type CareService struct {
	ID          int64   `json:"id" form:"-"`
	Name        string  `json:"name" form:"name" validate:"required,max=120"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price" validate:"gte=0"`
	Duration    int     `json:"duration" form:"duration"`
	ImageURL    string  `json:"imageUrl" form:"imageUrl"`
}

type CafeRoom struct {
	ID           int64   `json:"id" form:"-"`
	Name         string  `json:"name" form:"name" validate:"required,max=120"`
	Description  string  `json:"description" form:"description"`
	Capacity     int     `json:"capacity" form:"capacity"`
	PricePerHour float64 `json:"pricePerHour" form:"pricePerHour"`
	ImageURL     string  `json:"imageUrl" form:"imageUrl"`
}

type CafePet struct {
	ID          int64  `json:"id" form:"-"`
	Name        string `json:"name" form:"name" validate:"required,max=120"`
	Species     string `json:"species" form:"species"`
	Breed       string `json:"breed" form:"breed"`
	Age         int    `json:"age" form:"age"`
	Description string `json:"description" form:"description"`
	ImageURL    string `json:"imageUrl" form:"imageUrl"`
}

type PetSitter struct {
	ID         int64   `json:"id" form:"-"`
	Name       string  `json:"name" form:"name" validate:"required,max=120"`
	Expertise  string  `json:"expertise" form:"expertise"`
	Bio        string  `json:"bio" form:"bio"`
	HourlyRate float64 `json:"hourlyRate" form:"hourlyRate"`
	Rating     float64 `json:"rating" form:"rating"`
	ImageURL   string  `json:"imageUrl" form:"imageUrl"`
}

type User struct {
	ID        int64     `json:"id" form:"-"`
	Name      string    `json:"name" form:"name" validate:"required,max=120"`
	Email     string    `json:"email" form:"email" validate:"required,email"`
	Phone     string    `json:"phone" form:"phone"`
	Role      string    `json:"role" form:"role"`
	IsActive  bool      `json:"isActive" form:"isActive"`
	CreatedAt time.Time `json:"createdAt" form:"-"`
	UpdatedAt time.Time `json:"updatedAt" form:"-"`
}

type Admin struct {
	ID        int64     `json:"id" form:"-"`
	Name      string    `json:"name" form:"name" validate:"required,max=120"`
	Email     string    `json:"email" form:"email" validate:"required,email"`
	Role      string    `json:"role" form:"role"`
	IsActive  bool      `json:"isActive" form:"isActive"`
	CreatedAt time.Time `json:"createdAt" form:"-"`
	UpdatedAt time.Time `json:"updatedAt" form:"-"`
}

// AppointmentKind names what an appointment books.
type AppointmentKind string

const (
	AppointmentCafeRoom    AppointmentKind = "cafe_room"
	AppointmentCareService AppointmentKind = "care_service"
	AppointmentClinic      AppointmentKind = "clinic"
)

type Appointment struct {
	ID        int64           `json:"id" form:"-"`
	UserID    int64           `json:"userId" form:"userId"`
	Kind      AppointmentKind `json:"kind" form:"kind" validate:"oneof=cafe_room care_service clinic"`
	RoomID    int64           `json:"roomId,omitempty" form:"roomId"`
	ServiceID int64           `json:"serviceId,omitempty" form:"serviceId"`
	PackageID int64           `json:"packageId,omitempty" form:"packageId"`
	Date      string          `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	StartTime string          `json:"startTime" form:"startTime" validate:"required,datetime=15:04"`
	EndTime   string          `json:"endTime" form:"endTime" validate:"omitempty,datetime=15:04"`
	Guests    int             `json:"guests" form:"guests" validate:"gte=0,lte=20"`
	Status    string          `json:"status" form:"status"`
	Notes     string          `json:"notes" form:"notes"`
	CreatedAt time.Time       `json:"createdAt" form:"-"`
}

type Package struct {
	ID          int64    `json:"id" form:"-"`
	Name        string   `json:"name" form:"name" validate:"required,max=120"`
	Description string   `json:"description" form:"description"`
	Price       float64  `json:"price" form:"price" validate:"gte=0"`
	ServiceIDs  []int64  `json:"serviceIds" form:"serviceIds"`
	Highlights  []string `json:"highlights" form:"highlights"`
}
