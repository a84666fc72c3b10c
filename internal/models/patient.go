package models

import (
	"time"
)

// Patient is the root entity of the clinic. Deleting a patient cascades to
// its appointments, payments and treatments through the change event bus;
// there is no referential-integrity enforcement at the database layer.
type Patient struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	FullName       string     `gorm:"not null;index" json:"full_name"`
	Gender         string     `json:"gender"`
	DateOfBirth    *time.Time `gorm:"type:date" json:"date_of_birth"`
	Phone          string     `gorm:"index" json:"phone"`
	Email          *string    `json:"email"`
	Address        *string    `json:"address"`
	MedicalHistory *string    `gorm:"type:text" json:"medical_history"`
	Allergies      *string    `gorm:"type:text" json:"allergies"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	Appointments []Appointment    `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
	Payments     []Payment        `gorm:"foreignKey:PatientID" json:"payments,omitempty"`
	Treatments   []ToothTreatment `gorm:"foreignKey:PatientID" json:"treatments,omitempty"`
}

// TableName specifies the table name for Patient
func (Patient) TableName() string {
	return "patients"
}

// Age returns the patient's age in years, or 0 when date of birth is unknown
func (p *Patient) Age() int {
	if p.DateOfBirth == nil {
		return 0
	}
	now := time.Now()
	years := now.Year() - p.DateOfBirth.Year()
	if now.YearDay() < p.DateOfBirth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// PatientResponse is the JSON response format for patients
type PatientResponse struct {
	ID             uint       `json:"id"`
	FullName       string     `json:"full_name"`
	Gender         string     `json:"gender"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Age            int        `json:"age"`
	Phone          string     `json:"phone"`
	Email          *string    `json:"email,omitempty"`
	Address        *string    `json:"address,omitempty"`
	MedicalHistory *string    `json:"medical_history,omitempty"`
	Allergies      *string    `json:"allergies,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToResponse converts Patient to PatientResponse
func (p *Patient) ToResponse() PatientResponse {
	return PatientResponse{
		ID:             p.ID,
		FullName:       p.FullName,
		Gender:         p.Gender,
		DateOfBirth:    p.DateOfBirth,
		Age:            p.Age(),
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		MedicalHistory: p.MedicalHistory,
		Allergies:      p.Allergies,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
	}
}
