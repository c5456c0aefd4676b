package domain

import "time"

type OldPassportInformation struct {
	ID             int64  `json:"id"`
	PassportNumber string `json:"passport_number"`
	IssueDate      Date   `json:"issue_date"`
	ExpiryDate     Date   `json:"expiry_date"`
	IssuePlace     string `json:"issue_place"`
}

type PassportInformation struct {
	ID             int64                  `json:"id"`
	PassportNumber string                 `json:"passport_number"`
	IssueDate      Date                   `json:"issue_date"`
	ExpiryDate     Date                   `json:"expiry_date"`
	IssuePlace     string                 `json:"issue_place"`
	OldPassport    OldPassportInformation `json:"old_passport"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type OldPassportInput struct {
	PassportNumber string `json:"passport_number" validate:"required,alphanum,max=50"`
	IssueDate      string `json:"issue_date" validate:"required,iso_date"`
	ExpiryDate     string `json:"expiry_date" validate:"required,iso_date"`
	IssuePlace     string `json:"issue_place" validate:"notblank,max=200"`
}

type PassportInput struct {
	PassportNumber string           `json:"passport_number" validate:"required,alphanum,max=50"`
	IssueDate      string           `json:"issue_date" validate:"required,iso_date"`
	ExpiryDate     string           `json:"expiry_date" validate:"required,iso_date"`
	IssuePlace     string           `json:"issue_place" validate:"notblank,max=200"`
	OldPassport    OldPassportInput `json:"old_passport"`
}

// ToEntity checks issue_date < expiry_date on both passports
func (in PassportInput) ToEntity() (*PassportInformation, map[string]string) {
	fields := map[string]string{}

	issue, expiry := parseDateSpan(fields, "", in.IssueDate, in.ExpiryDate)
	oldIssue, oldExpiry := parseDateSpan(fields, "old_passport.", in.OldPassport.IssueDate, in.OldPassport.ExpiryDate)

	if len(fields) > 0 {
		return nil, fields
	}

	return &PassportInformation{
		PassportNumber: in.PassportNumber,
		IssueDate:      issue,
		ExpiryDate:     expiry,
		IssuePlace:     in.IssuePlace,
		OldPassport: OldPassportInformation{
			PassportNumber: in.OldPassport.PassportNumber,
			IssueDate:      oldIssue,
			ExpiryDate:     oldExpiry,
			IssuePlace:     in.OldPassport.IssuePlace,
		},
	}, nil
}

func parseDateSpan(fields map[string]string, prefix, issueRaw, expiryRaw string) (Date, Date) {
	issue, err := ParseDate(issueRaw)
	if err != nil {
		fields[prefix+"issue_date"] = "Issue date must be a date in YYYY-MM-DD format"
	}
	expiry, err2 := ParseDate(expiryRaw)
	if err2 != nil {
		fields[prefix+"expiry_date"] = "Expiry date must be a date in YYYY-MM-DD format"
	}
	if err == nil && err2 == nil && !issue.Before(expiry.Time) {
		fields[prefix+"expiry_date"] = "Expiry date must be after issue date"
	}
	return issue, expiry
}
