package model

import "time"

type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
)

// Account is a patient or caregiver credential record. Usernames are unique
// per role and case-sensitive as stored.
type Account struct {
	ID        string
	Username  string
	Salt      []byte
	Hash      []byte
	Role      Role
	CreatedAt time.Time
}

// Vaccine tracks the dose inventory for one vaccine name. Doses never goes
// negative; a decrement that would cross zero is rejected at write time.
type Vaccine struct {
	Name  string
	Doses int
}

// Slot marks a caregiver as bookable on a day. A caregiver has at most one
// open slot per day; booking consumes it, cancellation restores it.
type Slot struct {
	Day       time.Time
	Caregiver string
}

type Appointment struct {
	ID        int
	Caregiver string
	Patient   string
	Vaccine   string
	Day       time.Time
	CreatedAt time.Time
}
