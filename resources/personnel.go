package resources

import "github.com/jrsteele09/go-waterres-client/apiclient"

const PersonnelPath = "/management-info/personnel"

type Personnel struct {
	ID                   int64     `json:"id"`
	FullName             string    `json:"fullName"`
	EmployeeNo           string    `json:"employeeNo,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Email                string    `json:"email,omitempty"`
	PositionID           int64     `json:"positionId,omitempty"`
	PositionName         string    `json:"positionName,omitempty"`
	DepartmentID         int64     `json:"departmentId,omitempty"`
	DepartmentName       string    `json:"departmentName,omitempty"`
	UserID               int64     `json:"userId,omitempty"`
	Username             string    `json:"username,omitempty"`
	HireDate             Date      `json:"hireDate"`
	WorkResponsibilities string    `json:"workResponsibilities,omitempty"`
	CreatedAt            Timestamp `json:"createdAt"`
	UpdatedAt            Timestamp `json:"updatedAt"`
}

type PersonnelInput struct {
	FullName             string `json:"fullName" validate:"required,max=50"`
	PositionID           int64  `json:"positionId" validate:"required,gt=0"`
	DepartmentID         int64  `json:"departmentId" validate:"required,gt=0"`
	Phone                string `json:"phone" validate:"required,e164|numeric"`
	Email                string `json:"email,omitempty" validate:"omitempty,email"`
	EmployeeNo           string `json:"employeeNo,omitempty" validate:"max=50"`
	HireDate             *Date  `json:"hireDate,omitempty"`
	WorkResponsibilities string `json:"workResponsibilities,omitempty" validate:"max=1000"`
}

// PersonnelDirectory manages the staff records shown under management info.
type PersonnelDirectory struct {
	Collection[Personnel, PersonnelInput]
}

func newPersonnelDirectory(client *apiclient.Client) *PersonnelDirectory {
	return &PersonnelDirectory{Collection: newCollection[Personnel, PersonnelInput](client, PersonnelPath)}
}
