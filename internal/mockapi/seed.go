package mockapi

import (
	"strconv"
	"strings"
	"time"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/secrets"
)

// Seeded credentials for local development.
const (
	SeedAdminEmail    = "admin@pawhub.test"
	SeedAdminPassword = "admin123"
	SeedUserEmail     = "mai@pawhub.test"
	SeedUserPassword  = "password123"
)

const imageBase = "https://images.unsplash.com/"

func containsFold(value, term string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}

func int64Filter(filters map[string]string, key string, value int64) bool {
	raw, ok := filters[key]
	if !ok {
		return true
	}
	want, err := strconv.ParseInt(raw, 10, 64)
	return err == nil && want == value
}

func nameFilter(filters map[string]string, name string) bool {
	term, ok := filters["name"]
	return !ok || containsFold(name, term)
}

func (s *Server) seed(createdAt time.Time) error {
	s.clinics.seed(
		models.Clinic{Name: "Happy Paws Clinic", Address: "12 Nguyen Hue, District 1", Phone: "028 3822 1111", Description: "General practice and vaccinations.", ImageURL: imageBase + "photo-1583337130417-3346a1be7dee", Rating: 4.8},
		models.Clinic{Name: "Riverside Animal Hospital", Address: "88 Ton Duc Thang, District 1", Phone: "028 3822 2222", Description: "24/7 emergency care and surgery.", ImageURL: imageBase + "photo-1628009368231-7bb7cfcb0def", Rating: 4.6},
		models.Clinic{Name: "Green Valley Vet", Address: "5 Tran Hung Dao, District 5", Phone: "028 3822 3333", Description: "Dental care and diagnostics.", Rating: 4.4},
		models.Clinic{Name: "Whiskers Cat Clinic", Address: "40 Le Loi, District 3", Phone: "028 3822 4444", Description: "Feline only practice.", ImageURL: "https://tracker.example.com/cat.png", Rating: 4.9},
	)
	s.doctors.seed(
		models.Doctor{ClinicID: 1, Name: "Dr. Linh Tran", Specialty: "Surgery", Expertise: "Orthopedics", Experience: 12, ImageURL: imageBase + "photo-1612349317150-e413f6a5b16d"},
		models.Doctor{ClinicID: 1, Name: "Dr. Minh Pham", Specialty: "Dermatology", Expertise: "Allergies", Experience: 7},
		models.Doctor{ClinicID: 2, Name: "Dr. Anna Vo", Specialty: "Emergency", Expertise: "Critical care", Experience: 15},
		models.Doctor{ClinicID: 3, Name: "Dr. Quang Le", Specialty: "Dentistry", Expertise: "Oral surgery", Experience: 9},
		models.Doctor{ClinicID: 4, Name: "Dr. Thu Nguyen", Specialty: "Internal medicine", Expertise: "Cats", Experience: 11},
	)
	s.services.seed(
		models.CareService{Name: "Full Grooming", Description: "Bath, haircut, nail trim and ear cleaning.", Price: 450000, Duration: 90, ImageURL: imageBase + "photo-1516734212186-a967f81ad0d7"},
		models.CareService{Name: "Bath & Dry", Description: "Gentle shampoo and blow dry.", Price: 200000, Duration: 45},
		models.CareService{Name: "Nail Trim", Description: "Quick nail clipping.", Price: 80000, Duration: 15},
		models.CareService{Name: "Day Boarding", Description: "Supervised play and rest for the day.", Price: 300000, Duration: 480},
	)
	s.rooms.seed(
		models.CafeRoom{Name: "Cozy Room", Description: "Soft cushions and sleepy cats.", Capacity: 4, PricePerHour: 120000, ImageURL: imageBase + "photo-1514888286974-6c03e2ca1dba"},
		models.CafeRoom{Name: "Sunny Room", Description: "Big windows and sunbathing spots.", Capacity: 6, PricePerHour: 150000, ImageURL: imageBase + "photo-1495360010541-f48722b34f7d"},
		models.CafeRoom{Name: "Cat Lounge", Description: "Climbing walls for active cats.", Capacity: 8, PricePerHour: 180000},
		models.CafeRoom{Name: "Garden Room", Description: "Open air seating with the dogs.", Capacity: 10, PricePerHour: 160000},
		models.CafeRoom{Name: "Cat Nap Corner", Description: "Quiet corner for two.", Capacity: 2, PricePerHour: 90000},
		models.CafeRoom{Name: "Reading Nook", Description: "Books, tea and a resident cat.", Capacity: 3, PricePerHour: 100000},
		models.CafeRoom{Name: "Puppy Playroom", Description: "Meet our puppies.", Capacity: 6, PricePerHour: 170000},
	)
	s.pets.seed(
		models.CafePet{Name: "Mochi", Species: "Cat", Breed: "Scottish Fold", Age: 3, Description: "Loves laps."},
		models.CafePet{Name: "Bap", Species: "Dog", Breed: "Corgi", Age: 2, Description: "Herds visitors."},
		models.CafePet{Name: "Miso", Species: "Cat", Breed: "British Shorthair", Age: 5, Description: "Supervises the Cozy Room."},
		models.CafePet{Name: "Tofu", Species: "Rabbit", Breed: "Holland Lop", Age: 1, Description: "Eats everything."},
	)
	s.sitters.seed(
		models.PetSitter{Name: "Hoa Dang", Expertise: "Senior dogs", Bio: "Ten years of pet sitting.", HourlyRate: 90000, Rating: 4.9},
		models.PetSitter{Name: "Khoa Bui", Expertise: "Cats and rabbits", Bio: "Vet student.", HourlyRate: 70000, Rating: 4.7},
		models.PetSitter{Name: "Lan Ho", Expertise: "Puppy training", Bio: "Certified trainer.", HourlyRate: 110000, Rating: 4.8},
	)
	s.packages.seed(
		models.Package{Name: "Spa Day", Description: "Grooming plus bath.", Price: 600000, ServiceIDs: []int64{1, 2}, Highlights: []string{"Full grooming", "Bath & dry"}},
		models.Package{Name: "Weekend Stay", Description: "Two days of boarding.", Price: 550000, ServiceIDs: []int64{4}, Highlights: []string{"Two days", "Daily photo updates"}},
	)

	admin := models.Admin{Name: "PawHub Admin", Email: SeedAdminEmail, Role: "superadmin", IsActive: true, CreatedAt: createdAt, UpdatedAt: createdAt}
	if err := s.addAccount(models.SessionAdmin, admin.Email, SeedAdminPassword, s.admins.create(admin).ID); err != nil {
		return err
	}
	user := models.User{Name: "Mai Nguyen", Email: SeedUserEmail, Phone: "0901 234 567", Role: "user", IsActive: true, CreatedAt: createdAt, UpdatedAt: createdAt}
	created := s.users.create(user)
	if err := s.addAccount(models.SessionUser, user.Email, SeedUserPassword, created.ID); err != nil {
		return err
	}
	s.appointments.seed(models.Appointment{
		UserID: created.ID, Kind: models.AppointmentCafeRoom, RoomID: 1,
		Date: "2026-01-10", StartTime: "10:00", EndTime: "12:00", Guests: 2,
		Status: "confirmed", CreatedAt: createdAt,
	})
	return nil
}

func (s *Server) addAccount(kind models.SessionKind, email, password string, profileID int64) error {
	hash, err := secrets.Hash(password, s.hashCost)
	if err != nil {
		return err
	}
	if !s.accounts.add(email, account{kind: kind, profileID: profileID, hash: hash}) {
		return dErrors.New(dErrors.CodeConflict, "An account with this email already exists")
	}
	return nil
}
