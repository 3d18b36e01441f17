package documents

import "time"

type Document struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	DocType     string    `json:"docType"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	StoragePath string    `json:"-"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

var DocTypes = []string{"id-card", "passport", "visa", "contract", "certificate", "other"}
