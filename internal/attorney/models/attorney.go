package models

import (
	"time"
)

// Status is the soft-delete lifecycle flag of an attorney record.
type Status string

const (
	StatusActive   Status = "Activo"
	StatusInactive Status = "Inactivo"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// RoleAttorney is the role assigned to every self-registered attorney, both on
// the record and as a custom claim on the identity account.
const RoleAttorney = "APODERADO"

// Attorney is the aggregate root for a legal guardian record.
//
// Invariants:
//   - UID references exactly one identity-provider account, assigned at creation
//   - Role is RoleAttorney and never changes after creation
//   - Status is Active or Inactive; Inactive ⇔ identity account disabled
//   - ID and CreatedAt are immutable after the first save
//   - UpdatedAt moves on every mutation
type Attorney struct {
	ID             string    `json:"id" bson:"_id"`
	UID            string    `json:"uid" bson:"uid"`
	DocumentType   string    `json:"documentType" bson:"documentType"`
	DocumentNumber string    `json:"documentNumber" bson:"documentNumber"`
	Names          string    `json:"names" bson:"names"`
	Surnames       string    `json:"surnames" bson:"surnames"`
	Sex            string    `json:"sex" bson:"sex"`
	BirthDate      Date      `json:"birth_date" bson:"birth_date"`
	Baptism        *Date     `json:"baptism" bson:"baptism,omitempty"`
	FirstCommunion *Date     `json:"first_Communion" bson:"first_Communion,omitempty"`
	Confirmation   *Date     `json:"confirmation" bson:"confirmation,omitempty"`
	Marriage       *Date     `json:"marriage" bson:"marriage,omitempty"`
	Relationship   string    `json:"relationship" bson:"relationship"`
	Email          string    `json:"email" bson:"email"`
	Password       string    `json:"-" bson:"password,omitempty"` // mirror of the identity password; never serialized to clients
	Cellphone      string    `json:"cellphone" bson:"cellphone"`
	Address        string    `json:"address" bson:"address"`
	Role           string    `json:"role" bson:"role"`
	Status         Status    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewAttorney builds an active record from validated profile fields. Caller
// supplied identity, role and status values never reach this constructor.
func NewAttorney(profile Profile, uid string, now time.Time) *Attorney {
	a := &Attorney{
		UID:       uid,
		Role:      RoleAttorney,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.ApplyProfile(profile, now)
	a.UpdatedAt = now
	return a
}

func (a *Attorney) IsActive() bool {
	return a.Status == StatusActive
}

// DisplayName is the name mirrored to the identity account.
func (a *Attorney) DisplayName() string {
	return DisplayName(a.Names, a.Surnames)
}

// ApplyProfile overwrites the mutable profile fields. ID, UID, Role, Status,
// Password and CreatedAt are untouched.
func (a *Attorney) ApplyProfile(p Profile, now time.Time) {
	a.DocumentType = p.DocumentType
	a.DocumentNumber = p.DocumentNumber
	a.Names = p.Names
	a.Surnames = p.Surnames
	a.Sex = p.Sex
	a.BirthDate = p.BirthDate
	a.Baptism = p.Baptism
	a.FirstCommunion = p.FirstCommunion
	a.Confirmation = p.Confirmation
	a.Marriage = p.Marriage
	a.Relationship = p.Relationship
	a.Email = p.Email
	a.Cellphone = p.Cellphone
	a.Address = p.Address
	a.UpdatedAt = now
}

// ApplyDeactivation soft-deletes the record.
func (a *Attorney) ApplyDeactivation(now time.Time) {
	a.Status = StatusInactive
	a.UpdatedAt = now
}

// ApplyReactivation restores a soft-deleted record.
func (a *Attorney) ApplyReactivation(now time.Time) {
	a.Status = StatusActive
	a.UpdatedAt = now
}

// ApplyPassword stores the password mirror (already encoded by the caller).
func (a *Attorney) ApplyPassword(encoded string, now time.Time) {
	a.Password = encoded
	a.UpdatedAt = now
}

// Clone returns a deep copy so stores never share pointers with callers.
func (a *Attorney) Clone() *Attorney {
	if a == nil {
		return nil
	}
	c := *a
	c.Baptism = a.Baptism.clone()
	c.FirstCommunion = a.FirstCommunion.clone()
	c.Confirmation = a.Confirmation.clone()
	c.Marriage = a.Marriage.clone()
	return &c
}

func DisplayName(names, surnames string) string {
	switch {
	case names == "":
		return surnames
	case surnames == "":
		return names
	default:
		return names + " " + surnames
	}
}
