package search

import "pawhub/internal/models"

// Field sets used by the listing pages.
var (
	ClinicFields      = []Field[models.Clinic]{func(c models.Clinic) string { return c.Name }}
	CareServiceFields = []Field[models.CareService]{func(s models.CareService) string { return s.Name }}
	CafeRoomFields    = []Field[models.CafeRoom]{func(r models.CafeRoom) string { return r.Name }}
	PackageFields     = []Field[models.Package]{func(p models.Package) string { return p.Name }}

	DoctorFields = []Field[models.Doctor]{
		func(d models.Doctor) string { return d.Name },
		func(d models.Doctor) string { return d.Specialty },
		func(d models.Doctor) string { return d.Expertise },
	}
	CafePetFields = []Field[models.CafePet]{
		func(p models.CafePet) string { return p.Name },
		func(p models.CafePet) string { return p.Species },
		func(p models.CafePet) string { return p.Breed },
	}
	PetSitterFields = []Field[models.PetSitter]{
		func(s models.PetSitter) string { return s.Name },
		func(s models.PetSitter) string { return s.Expertise },
	}
	UserFields = []Field[models.User]{
		func(u models.User) string { return u.Name },
		func(u models.User) string { return u.Email },
	}
	AdminFields = []Field[models.Admin]{
		func(a models.Admin) string { return a.Name },
		func(a models.Admin) string { return a.Email },
	}
	AppointmentFields = []Field[models.Appointment]{
		func(a models.Appointment) string { return string(a.Kind) },
		func(a models.Appointment) string { return a.Status },
		func(a models.Appointment) string { return a.Date },
	}
)
