package resources

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const (
	WarningThresholdsPath = "/warning/thresholds"
	WarningRecordsPath    = "/warning/records"
)

type Threshold struct {
	ID                 int64     `json:"id,omitempty"`
	StationName        string    `json:"stationName" validate:"required,max=100"`
	MonitoringItem     string    `json:"monitoringItem" validate:"required,max=50"`
	MonitoringItemName string    `json:"monitoringItemName,omitempty"`
	UpperUpperLimit    *float64  `json:"upperUpperLimit,omitempty"`
	UpperLimit         *float64  `json:"upperLimit,omitempty"`
	LowerLimit         *float64  `json:"lowerLimit,omitempty"`
	LowerLowerLimit    *float64  `json:"lowerLowerLimit,omitempty"`
	Unit               string    `json:"unit,omitempty" validate:"max=20"`
	IsActive           *bool     `json:"isActive,omitempty"`
	CreatedAt          Timestamp `json:"createdAt"`
	UpdatedAt          Timestamp `json:"updatedAt"`
}

// Breached reports whether value is outside the upper or lower limit. Unset
// limits never trip.
func (t Threshold) Breached(value float64) bool {
	if t.UpperLimit != nil && value > *t.UpperLimit {
		return true
	}
	if t.LowerLimit != nil && value < *t.LowerLimit {
		return true
	}
	return false
}

type WarningRecord struct {
	ID                int64     `json:"id"`
	WarningLocation   string    `json:"warningLocation"`
	WarningType       string    `json:"warningType"`
	WarningTypeName   string    `json:"warningTypeName,omitempty"`
	WarningLevel      string    `json:"warningLevel"`
	WarningLevelName  string    `json:"warningLevelName,omitempty"`
	WarningContent    string    `json:"warningContent"`
	WarningStatus     string    `json:"warningStatus"`
	WarningStatusName string    `json:"warningStatusName,omitempty"`
	ProjectName       string    `json:"projectName,omitempty"`
	OccurredAt        Timestamp `json:"occurredAt"`
	ResolvedAt        Timestamp `json:"resolvedAt"`
	ThresholdID       int64     `json:"thresholdId,omitempty"`
	Duration          string    `json:"duration,omitempty"`
	CreatedAt         Timestamp `json:"createdAt"`
	UpdatedAt         Timestamp `json:"updatedAt"`
}

type WarningRecordInput struct {
	WarningLocation string     `json:"warningLocation" validate:"required,max=100"`
	WarningType     string     `json:"warningType" validate:"required"`
	WarningLevel    string     `json:"warningLevel" validate:"required"`
	WarningContent  string     `json:"warningContent" validate:"required,max=500"`
	ProjectName     string     `json:"projectName,omitempty" validate:"max=100"`
	OccurredAt      *Timestamp `json:"occurredAt,omitempty"`
	ThresholdID     int64      `json:"thresholdId,omitempty" validate:"gte=0"`
}

type resolveWarning struct {
	ResolveRemark string `json:"resolveRemark,omitempty" validate:"max=500"`
}

// TrendPoint is one bucket of the warning trend.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Warnings struct {
	client *apiclient.Client

	Thresholds Collection[Threshold, Threshold]
	Records    Collection[WarningRecord, WarningRecordInput]
}

func newWarnings(client *apiclient.Client) *Warnings {
	return &Warnings{
		client:     client,
		Thresholds: newCollection[Threshold, Threshold](client, WarningThresholdsPath),
		Records:    newCollection[WarningRecord, WarningRecordInput](client, WarningRecordsPath),
	}
}

// ThresholdExists reports whether a threshold for the station and monitoring
// item is already configured, ignoring excludeID.
func (w *Warnings) ThresholdExists(ctx context.Context, stationName, monitoringItem string, excludeID int64) (bool, error) {
	q := url.Values{"stationName": {stationName}, "monitoringItem": {monitoringItem}}
	optionalID(q, "excludeId", excludeID)
	res, err := sub[existence](ctx, w.client, apiclient.Get(WarningThresholdsPath+"/check-duplicate", q))
	return res.Exists, err
}

func (w *Warnings) ActiveThresholds(ctx context.Context) ([]Threshold, error) {
	return sub[[]Threshold](ctx, w.client, apiclient.Get(WarningThresholdsPath+"/active", nil))
}

func (w *Warnings) ThresholdStatistics(ctx context.Context) (map[string]any, error) {
	return sub[map[string]any](ctx, w.client, apiclient.Get(WarningThresholdsPath+"/statistics", nil))
}

func (w *Warnings) Resolve(ctx context.Context, id int64, remark string) error {
	body := resolveWarning{ResolveRemark: remark}
	if err := validatePayload(body); err != nil {
		return err
	}
	return exec(ctx, w.client, apiclient.Put(itemPath(WarningRecordsPath, id)+"/resolve", body))
}

func (w *Warnings) Statistics(ctx context.Context, q ListQuery) (map[string]any, error) {
	return sub[map[string]any](ctx, w.client, apiclient.Get(WarningRecordsPath+"/statistics", q.Values()))
}

func (w *Warnings) LevelStatistics(ctx context.Context) ([]map[string]any, error) {
	return sub[[]map[string]any](ctx, w.client, apiclient.Get(WarningRecordsPath+"/level-statistics", nil))
}

// Trend counts warnings per period ("day", "week" or "month") over the last
// days. Empty or zero arguments use the server defaults.
func (w *Warnings) Trend(ctx context.Context, period string, days int) ([]TrendPoint, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	return sub[[]TrendPoint](ctx, w.client, apiclient.Get(WarningRecordsPath+"/trend", q))
}

// Locations lists the distinct warning locations seen so far.
func (w *Warnings) Locations(ctx context.Context) ([]string, error) {
	return sub[[]string](ctx, w.client, apiclient.Get(WarningRecordsPath+"/locations", nil))
}
