package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const (
	InspectionTasksPath   = "/inspection/tasks"
	InspectionRecordsPath = "/inspection/records"
)

type InspectionTask struct {
	ID            int64     `json:"id,omitempty"`
	Title         string    `json:"title" validate:"required,max=100"`
	FacilityType  string    `json:"facilityType" validate:"required"`
	FacilityID    int64     `json:"facilityId" validate:"required,gt=0"`
	Frequency     string    `json:"frequency" validate:"required"`
	Content       string    `json:"content,omitempty"`
	AssigneeID    int64     `json:"assigneeId" validate:"required,gt=0"`
	Status        string    `json:"status,omitempty"`
	ScheduledDate *Date     `json:"scheduledDate,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

type InspectionRecord struct {
	ID               int64     `json:"id"`
	TaskID           int64     `json:"taskId,omitempty"`
	InspectorID      int64     `json:"inspectorId"`
	InspectorName    string    `json:"inspectorName,omitempty"`
	FacilityType     string    `json:"facilityType"`
	FacilityID       int64     `json:"facilityId"`
	RecordTime       Timestamp `json:"recordTime"`
	DeviceStatus     string    `json:"deviceStatus"`
	IssueFlag        int       `json:"issueFlag"`
	IssueDescription string    `json:"issueDescription,omitempty"`
	Resolution       string    `json:"resolution,omitempty"`
	ResolvedAt       Timestamp `json:"resolvedAt"`
	CoverImage       string    `json:"coverImage,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
	UpdatedAt        Timestamp `json:"updatedAt"`
}

// InspectionRecordInput is the "data" part of a record upload.
type InspectionRecordInput struct {
	TaskID           int64      `json:"taskId,omitempty"`
	FacilityType     string     `json:"facilityType" validate:"required"`
	FacilityID       int64      `json:"facilityId" validate:"required,gt=0"`
	RecordTime       *Timestamp `json:"recordTime,omitempty"`
	InspectorID      int64      `json:"inspectorId" validate:"required,gt=0"`
	DeviceStatus     string     `json:"deviceStatus" validate:"required"`
	IssueFlag        int        `json:"issueFlag" validate:"oneof=0 1"`
	IssueDescription string     `json:"issueDescription,omitempty" validate:"required_if=IssueFlag 1"`
	Resolution       string     `json:"resolution,omitempty"`
}

type Attachment struct {
	ID          int64     `json:"id"`
	RecordID    int64     `json:"recordId"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	ContentType string    `json:"contentType"`
	FileSize    int64     `json:"fileSize"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Upload is a file attached to an inspection record.
type Upload struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Inspections struct {
	client *apiclient.Client

	Tasks Collection[InspectionTask, InspectionTask]
}

func newInspections(client *apiclient.Client) *Inspections {
	return &Inspections{
		client: client,
		Tasks:  newCollection[InspectionTask, InspectionTask](client, InspectionTasksPath),
	}
}

func (i *Inspections) SetTaskStatus(ctx context.Context, id int64, status string) error {
	req := apiclient.Patch(itemPath(InspectionTasksPath, id)+"/status", nil)
	req.Query = url.Values{"status": {status}}
	return exec(ctx, i.client, req)
}

func (i *Inspections) Records(ctx context.Context, q ListQuery) (*Page[InspectionRecord], error) {
	return sub[*Page[InspectionRecord]](ctx, i.client, apiclient.Get(InspectionRecordsPath, q.Values()))
}

func (i *Inspections) Record(ctx context.Context, id int64) (*InspectionRecord, error) {
	return sub[*InspectionRecord](ctx, i.client, apiclient.Get(itemPath(InspectionRecordsPath, id), nil))
}

func (i *Inspections) Attachments(ctx context.Context, recordID int64) ([]Attachment, error) {
	return sub[[]Attachment](ctx, i.client, apiclient.Get(itemPath(InspectionRecordsPath, recordID)+"/attachments", nil))
}

// CreateRecord uploads a record as multipart form data: the record as a JSON
// "data" part and each upload as a "files" part.
func (i *Inspections) CreateRecord(ctx context.Context, in InspectionRecordInput, files ...Upload) (*InspectionRecord, error) {
	if err := validatePayload(in); err != nil {
		return nil, err
	}

	data, err := apiclient.JSONPart("data", in)
	if err != nil {
		return nil, err
	}
	body := &apiclient.Multipart{Parts: []apiclient.Part{data}}
	for _, f := range files {
		body.Parts = append(body.Parts, apiclient.Part{Name: "files", FileName: f.FileName, ContentType: f.ContentType, Content: f.Content})
	}
	return sub[*InspectionRecord](ctx, i.client, apiclient.Post(InspectionRecordsPath, body))
}

// ResolveRecord records how an issue found during inspection was handled.
func (i *Inspections) ResolveRecord(ctx context.Context, id int64, resolution string) error {
	req := apiclient.Patch(itemPath(InspectionRecordsPath, id)+"/resolve", nil)
	req.Query = url.Values{"resolution": {resolution}}
	return exec(ctx, i.client, req)
}
