package resources

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const MapPath = "/map"

type FacilityLocation struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	TypeName       string  `json:"typeName,omitempty"`
	Code           string  `json:"code,omitempty"`
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Status         string  `json:"status,omitempty"`
	StatusName     string  `json:"statusName,omitempty"`
	DepartmentID   int64   `json:"departmentId,omitempty"`
	DepartmentName string  `json:"departmentName,omitempty"`
	Remarks        string  `json:"remarks,omitempty"`
}

type ManagementUnit struct {
	DepartmentID         int64  `json:"departmentId"`
	DepartmentName       string `json:"departmentName"`
	DepartmentCode       string `json:"departmentCode,omitempty"`
	DepartmentType       string `json:"departmentType,omitempty"`
	DepartmentLevel      int    `json:"departmentLevel,omitempty"`
	ParentDepartmentID   int64  `json:"parentDepartmentId,omitempty"`
	ParentDepartmentName string `json:"parentDepartmentName,omitempty"`
	PersonnelID          int64  `json:"personnelId,omitempty"`
	PersonnelName        string `json:"personnelName,omitempty"`
	PersonnelPosition    string `json:"personnelPosition,omitempty"`
	ContactPhone         string `json:"contactPhone,omitempty"`
	Email                string `json:"email,omitempty"`
	RegionName           string `json:"regionName,omitempty"`
	RegionBoundary       string `json:"regionBoundary,omitempty"`
}

// StationSnapshot is a monitoring station with its latest reading. The
// reading's shape depends on the monitoring item and is left raw.
type StationSnapshot struct {
	StationID          int64           `json:"stationId"`
	StationName        string          `json:"stationName"`
	StationCode        string          `json:"stationCode,omitempty"`
	Longitude          float64         `json:"longitude"`
	Latitude           float64         `json:"latitude"`
	MonitoringItem     string          `json:"monitoringItem,omitempty"`
	MonitoringItemName string          `json:"monitoringItemName,omitempty"`
	StationStatus      string          `json:"stationStatus,omitempty"`
	StationStatusName  string          `json:"stationStatusName,omitempty"`
	LatestData         json.RawMessage `json:"latestData,omitempty"`
	LastMonitoringTime Timestamp       `json:"lastMonitoringTime"`
	DataQuality        int             `json:"dataQuality"`
	DataQualityText    string          `json:"dataQualityText,omitempty"`
	DepartmentName     string          `json:"departmentName,omitempty"`
}

type MapStats struct {
	FacilityCount       int `json:"facilityCount"`
	PumpingStationCount int `json:"pumpingStationCount"`
	WaterPlantCount     int `json:"waterPlantCount"`
	ReservoirCount      int `json:"reservoirCount"`
	StationCount        int `json:"stationCount"`
	OnlineStationCount  int `json:"onlineStationCount"`
	OfflineStationCount int `json:"offlineStationCount"`
	TotalWarnings       int `json:"totalWarnings"`
	OngoingWarnings     int `json:"ongoingWarnings"`
	ResolvedWarnings    int `json:"resolvedWarnings"`
	Level1Warnings      int `json:"level1Warnings"`
	Level2Warnings      int `json:"level2Warnings"`
	Level3Warnings      int `json:"level3Warnings"`
	Level4Warnings      int `json:"level4Warnings"`
	TodayNewWarnings    int `json:"todayNewWarnings"`
	DepartmentCount     int `json:"departmentCount"`
	PersonnelCount      int `json:"personnelCount"`
}

type MapOverview struct {
	Facilities         []FacilityLocation `json:"facilities"`
	ManagementSystems  []ManagementUnit   `json:"managementSystems"`
	MonitoringStations []StationSnapshot  `json:"monitoringStations"`
	Warnings           []WarningRecord    `json:"warnings"`
	Stats              *MapStats          `json:"stats"`
}

// MapView reads the aggregated data behind the overview map.
type MapView struct {
	client *apiclient.Client
}

func (m *MapView) Overview(ctx context.Context) (*MapOverview, error) {
	return sub[*MapOverview](ctx, m.client, apiclient.Get(MapPath+"/overview", nil))
}

func (m *MapView) Facilities(ctx context.Context) ([]FacilityLocation, error) {
	return sub[[]FacilityLocation](ctx, m.client, apiclient.Get(MapPath+"/facilities", nil))
}

func (m *MapView) ManagementSystem(ctx context.Context) ([]ManagementUnit, error) {
	return sub[[]ManagementUnit](ctx, m.client, apiclient.Get(MapPath+"/management-system", nil))
}

func (m *MapView) MonitoringStations(ctx context.Context) ([]StationSnapshot, error) {
	return sub[[]StationSnapshot](ctx, m.client, apiclient.Get(MapPath+"/monitoring-stations", nil))
}

// ActiveWarnings lists the warnings still in progress.
func (m *MapView) ActiveWarnings(ctx context.Context) ([]WarningRecord, error) {
	return sub[[]WarningRecord](ctx, m.client, apiclient.Get(MapPath+"/warnings", nil))
}

func (m *MapView) Stats(ctx context.Context) (*MapStats, error) {
	return sub[*MapStats](ctx, m.client, apiclient.Get(MapPath+"/stats", nil))
}
